package quirks

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"omibyte.io/picconf/edc"
	"omibyte.io/picconf/types"
)

//go:embed quirks.yaml
var rawQuirks []byte

var ErrInvalidQuirk = errors.New("invalid quirk")

// Table is an ordered list of quirks. Quirks are applied in table order.
type Table []Quirk

type Quirk struct {
	Name            string           `yaml:"name"`
	Devices         []string         `yaml:"devices"`
	SetDefault      *SetDefault      `yaml:"set-default,omitempty"`
	RemoveSemantics *RemoveSemantics `yaml:"remove-semantics,omitempty"`
}

// SetDefault replaces the default literal of a register.
type SetDefault struct {
	Register string `yaml:"register"`
	Value    string `yaml:"value"`
}

// RemoveSemantics drops named values whose name ends with Suffix from the
// listed fields, in every mode of every register.
type RemoveSemantics struct {
	Fields []string `yaml:"fields"`
	Suffix string   `yaml:"suffix"`
}

// Builtin returns the quirks shipped with picconf.
func Builtin() (Table, error) {
	return parse(rawQuirks)
}

// Load reads a quirk table in the same YAML format as the built-in one.
func Load(r io.Reader) (Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return parse(b)
}

func parse(b []byte) (Table, error) {
	var t struct {
		Elements Table `yaml:"quirks"`
	}
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuirk, err)
	}

	for _, q := range t.Elements {
		if err := q.validate(); err != nil {
			return nil, err
		}
	}
	return t.Elements, nil
}

func (q Quirk) validate() error {
	if len(q.Name) == 0 {
		return fmt.Errorf("%w: quirk without a name", ErrInvalidQuirk)
	}
	if len(q.Devices) == 0 {
		return fmt.Errorf("%w: %s matches no devices", ErrInvalidQuirk, q.Name)
	}

	switch {
	case q.SetDefault != nil && q.RemoveSemantics != nil:
		return fmt.Errorf("%w: %s has more than one action", ErrInvalidQuirk, q.Name)
	case q.SetDefault != nil:
		if len(q.SetDefault.Register) == 0 {
			return fmt.Errorf("%w: %s names no register", ErrInvalidQuirk, q.Name)
		}
		if _, err := strconv.ParseUint(q.SetDefault.Value, 0, 32); err != nil {
			return fmt.Errorf("%w: %s: default %q: %v", ErrInvalidQuirk, q.Name, q.SetDefault.Value, err)
		}
	case q.RemoveSemantics != nil:
		if len(q.RemoveSemantics.Fields) == 0 || len(q.RemoveSemantics.Suffix) == 0 {
			return fmt.Errorf("%w: %s needs fields and a suffix", ErrInvalidQuirk, q.Name)
		}
	default:
		return fmt.Errorf("%w: %s has no action", ErrInvalidQuirk, q.Name)
	}
	return nil
}

// Matches reports whether the quirk applies to the named device.
func (q Quirk) Matches(device string) bool {
	return slices.IndexFunc(q.Devices, func(prefix string) bool {
		return strings.HasPrefix(device, prefix)
	}) >= 0
}

// Merge returns t with the quirks of other appended. A quirk in other
// replaces the quirk of the same name in t.
func (t Table) Merge(other Table) Table {
	result := slices.Clone(t)
	for _, q := range other {
		i := slices.IndexFunc(result, func(existing Quirk) bool {
			return existing.Name == q.Name
		})
		if i >= 0 {
			result[i] = q
		} else {
			result = append(result, q)
		}
	}
	return result
}

// Apply patches pic in place and returns the names of the quirks that
// matched the device.
func (t Table) Apply(pic *edc.PIC) []string {
	var applied []string
	for _, q := range t {
		if !q.Matches(pic.Name) {
			continue
		}

		if q.SetDefault != nil {
			q.SetDefault.apply(&pic.Sector)
		}
		if q.RemoveSemantics != nil {
			q.RemoveSemantics.apply(&pic.Sector)
		}
		applied = append(applied, q.Name)
	}
	return applied
}

func (s *SetDefault) apply(sector *edc.ConfigFuseSector) {
	value, _ := strconv.ParseUint(s.Value, 0, 32)
	for i := range sector.Registers {
		if sector.Registers[i].Name == s.Register {
			sector.Registers[i].Default = types.UInteger{Value: value, Literal: s.Value}
		}
	}
}

func (s *RemoveSemantics) apply(sector *edc.ConfigFuseSector) {
	for i := range sector.Registers {
		for j := range sector.Registers[i].Modes {
			for _, node := range sector.Registers[i].Modes[j].Nodes {
				field, ok := node.(*edc.DCRFieldDef)
				if !ok || !slices.Contains(s.Fields, field.Name) {
					continue
				}

				kept := field.Semantics[:0]
				for _, sem := range field.Semantics {
					if !strings.HasSuffix(sem.Name, s.Suffix) {
						kept = append(kept, sem)
					}
				}
				field.Semantics = kept
			}
		}
	}
}
