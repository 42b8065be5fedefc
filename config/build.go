package config

import (
	"encoding/xml"
	"fmt"
	"log"

	"omibyte.io/picconf/edc"
)

type Options struct {
	// Mode selects the DCRMode whose field list describes the word layout.
	// Defaults to edc.DefaultMode.
	Mode string

	// Logger receives progress messages. Nil disables logging.
	Logger *log.Logger
}

// Build extracts the configuration sector model from a patched document.
func Build(pic *edc.PIC, opts Options) (*ConfigSector, error) {
	if len(opts.Mode) == 0 {
		opts.Mode = edc.DefaultMode
	}

	begin := pic.Sector.BeginAddr.Value
	end := pic.Sector.EndAddr.Value
	if end <= begin {
		return nil, fmt.Errorf("%w: %s..%s", ErrEmptySector, pic.Sector.BeginAddr, pic.Sector.EndAddr)
	}
	if (end-begin)%4 != 0 {
		return nil, fmt.Errorf("%w: %s..%s is not a whole number of words", ErrWordCountMismatch, pic.Sector.BeginAddr, pic.Sector.EndAddr)
	}

	sector := &ConfigSector{
		Device:    pic.Name,
		WordCount: int((end - begin) / 4),
	}

	if sector.WordCount != len(pic.Sector.Registers) {
		return nil, fmt.Errorf("%w: %d words, %d registers", ErrWordCountMismatch, sector.WordCount, len(pic.Sector.Registers))
	}

	for i := range pic.Sector.Registers {
		reg, err := buildRegister(&pic.Sector.Registers[i], begin+uint64(i)*4, opts)
		if err != nil {
			return nil, err
		}
		sector.Registers = append(sector.Registers, reg)
	}

	return sector, nil
}

func buildRegister(def *edc.DCRDef, addr uint64, opts Options) (ConfigSFR, error) {
	reg := ConfigSFR{
		Name:    def.Name,
		Address: def.Addr.Value,
		Default: def.Default.Literal,
	}

	if def.Addr.Value != addr {
		return reg, fmt.Errorf("%w: %s is at %s, expected %#x", ErrRegisterAddress, def.Name, def.Addr, addr)
	}

	if def.Default.Value > 0xffffffff {
		return reg, fmt.Errorf("%w: %s default %s is wider than %d bits", ErrInvalidDefault, def.Name, def.Default, RegisterWidth)
	}
	reg.DefaultValue = uint32(def.Default.Value)

	mode := def.Mode(opts.Mode)
	if mode == nil {
		if opts.Logger != nil {
			opts.Logger.Printf("%s has no %s mode, no fields extracted", def.Name, opts.Mode)
		}
		return reg, nil
	}

	fields, err := layout(def.Name, mode.Nodes)
	if err != nil {
		return reg, err
	}
	reg.Fields = fields
	return reg, nil
}

// layout walks a field list in document order. Hidden fields are not part
// of the result but still occupy their bits.
func layout(register string, nodes []edc.Node) ([]Field, error) {
	var fields []Field
	pos := uint64(0)

	for _, node := range nodes {
		switch n := node.(type) {
		case *edc.DCRFieldDef:
			width := n.Width.Value
			if width == 0 {
				return nil, fmt.Errorf("%w: %s.%s", ErrZeroWidth, register, n.Name)
			}
			if width > RegisterWidth || pos+width > RegisterWidth {
				return nil, fmt.Errorf("%w: %s.%s ends at bit %d", ErrFieldOverflow, register, n.Name, pos+width)
			}

			if !n.Hidden {
				field := Field{
					Name:        n.Name,
					Position:    int(pos),
					Length:      int(width),
					Description: n.Desc,
				}

				values, err := namedValues(register, n, width)
				if err != nil {
					return nil, err
				}
				field.Values = values
				fields = append(fields, field)
			}
			pos += width
		case *edc.AdjustPoint:
			offset := n.Offset.Value
			if offset > RegisterWidth || pos+offset > RegisterWidth {
				return nil, fmt.Errorf("%w: %s adjustment to bit %d", ErrFieldOverflow, register, pos+offset)
			}
			pos += offset
		default:
			return nil, &UnrecognizedNodeError{Register: register, Tag: tagName(node.Tag())}
		}
	}

	return fields, nil
}

func namedValues(register string, def *edc.DCRFieldDef, width uint64) ([]NamedValue, error) {
	var values []NamedValue
	for _, sem := range def.Semantics {
		literal, value, err := ParseCondition(sem.When)
		if err != nil {
			return nil, fmt.Errorf("%s.%s.%s: %w", register, def.Name, sem.Name, err)
		}
		if value>>width != 0 {
			return nil, fmt.Errorf("%w: %s.%s.%s = %s, field is %d bits", ErrValueOutOfRange, register, def.Name, sem.Name, literal, width)
		}

		values = append(values, NamedValue{
			Name:        sem.Name,
			Description: sem.Desc,
			Literal:     literal,
			Value:       value,
		})
	}
	return values, nil
}

func tagName(name xml.Name) string {
	if name.Space == edc.Namespace {
		return "edc:" + name.Local
	}
	if len(name.Space) > 0 {
		return "{" + name.Space + "}" + name.Local
	}
	return name.Local
}
