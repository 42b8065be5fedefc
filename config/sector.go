package config

import (
	"fmt"
	"strings"
)

// RegisterWidth is the width of a configuration word in bits.
const RegisterWidth = 32

// Field is a named bit range within a configuration word.
type Field struct {
	Name        string
	Position    int
	Length      int
	Description string
	Values      []NamedValue
}

// NamedValue is one named bit pattern of a field.
type NamedValue struct {
	Name        string
	Description string
	// Literal is the operand text exactly as it appears in the condition.
	Literal string
	Value   uint64
}

// ConfigSFR is a single configuration word.
type ConfigSFR struct {
	Name         string
	Address      uint64
	Default      string
	DefaultValue uint32
	Fields       []Field
}

// ConfigSector is the ordered list of configuration words of a device.
type ConfigSector struct {
	Device    string
	WordCount int
	Registers []ConfigSFR
}

// Semantic reports whether the field has named values.
func (f *Field) Semantic() bool {
	return len(f.Values) > 0
}

// Mask returns the bits of the owning word covered by f.
func (f *Field) Mask() uint32 {
	return uint32(((uint64(1) << f.Length) - 1) << f.Position)
}

// Apply returns word with the bits of f replaced by value. Bits outside the
// field are never changed, whatever value holds.
func (f *Field) Apply(word uint32, value uint32) uint32 {
	mask := f.Mask()
	return word&^mask | (value<<f.Position)&mask
}

// ScalarType is the Go type that holds a value of f.
func (f *Field) ScalarType() string {
	if f.Length <= 16 {
		return "uint16"
	}
	return "uint32"
}

func (f Field) String() string {
	return fmt.Sprintf("Field(%s, %d, %d, %s)", f.Name, f.Position, f.Length, f.Description)
}

func (r ConfigSFR) String() string {
	var w strings.Builder
	fmt.Fprintf(&w, "ConfigSFR %s at %#x\n", r.Name, r.Address)
	for _, f := range r.Fields {
		fmt.Fprintf(&w, "    %s\n", f)
	}
	return w.String()
}

func (s ConfigSector) String() string {
	var w strings.Builder
	fmt.Fprintf(&w, "ConfigSector %s (%d words)\n", s.Device, s.WordCount)
	for _, r := range s.Registers {
		w.WriteString(r.String())
	}
	return w.String()
}

// Defaults returns the reset value of every word in register order.
func (s *ConfigSector) Defaults() []uint32 {
	words := make([]uint32, len(s.Registers))
	for i, r := range s.Registers {
		words[i] = r.DefaultValue
	}
	return words
}

// Fields returns every field of every register in register order.
func (s *ConfigSector) Fields() []FieldRef {
	var refs []FieldRef
	for i := range s.Registers {
		for j := range s.Registers[i].Fields {
			refs = append(refs, FieldRef{
				Register: &s.Registers[i],
				Index:    i,
				Field:    &s.Registers[i].Fields[j],
			})
		}
	}
	return refs
}

// FieldRef ties a field to the register that owns it.
type FieldRef struct {
	Register *ConfigSFR
	// Index is the register's position in the sector.
	Index int
	Field *Field
}
