package generator

import (
	"fmt"
	"io"
	"strings"

	"omibyte.io/picconf/config"
)

// Kind identifies a declaration of the generated file. Declarations are
// emitted in ascending Kind order.
type Kind int

const (
	KindLength Kind = iota
	KindEnum
	KindAlias
	KindSector
	KindDefault
	KindArray
	KindBuilder
	KindSetter
	KindBuild
)

func (k Kind) String() string {
	switch k {
	case KindLength:
		return "length"
	case KindEnum:
		return "enum"
	case KindAlias:
		return "alias"
	case KindSector:
		return "sector"
	case KindDefault:
		return "default"
	case KindArray:
		return "array"
	case KindBuilder:
		return "builder"
	case KindSetter:
		return "setter"
	case KindBuild:
		return "build"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Decl is a single top-level declaration of the generated file.
type Decl struct {
	Kind Kind
	// Name is the declared identifier. Setters are named after their field.
	Name string

	sector *config.ConfigSector
	ref    config.FieldRef
}

// Render writes the declaration's source text.
func (d *Decl) Render(w io.Writer) {
	switch d.Kind {
	case KindLength:
		fmt.Fprintf(w, "// %s is the number of words in the configuration sector.\n", d.Name)
		fmt.Fprintf(w, "const %s = %d\n\n", d.Name, d.sector.WordCount)
	case KindEnum:
		f := d.ref.Field
		writeDoc(w, f.Description)
		fmt.Fprintf(w, "type %s %s\n\n", f.Name, f.ScalarType())
		fmt.Fprintf(w, "const (\n")
		for _, v := range f.Values {
			fmt.Fprintf(w, "%s %s = %s", enumerantName(f, v), f.Name, v.Literal)
			if desc := comment(v.Description); len(desc) > 0 {
				fmt.Fprintf(w, " // %s", desc)
			}
			fmt.Fprintf(w, "\n")
		}
		fmt.Fprintf(w, ")\n\n")
	case KindAlias:
		f := d.ref.Field
		writeDoc(w, f.Description)
		fmt.Fprintf(w, "type %s = %s\n\n", f.Name, f.ScalarType())
	case KindSector:
		fmt.Fprintf(w, "// %s holds the raw configuration words of %s in memory order.\n", d.Name, d.sector.Device)
		fmt.Fprintf(w, "type %s struct {\n", d.Name)
		for _, r := range d.sector.Registers {
			fmt.Fprintf(w, "%s uint32 // %#x\n", r.Name, r.Address)
		}
		fmt.Fprintf(w, "}\n\n")
	case KindDefault:
		fmt.Fprintf(w, "// %s returns a builder holding the reset value of every word.\n", d.Name)
		fmt.Fprintf(w, "func %s() %s {\n", d.Name, builderType)
		fmt.Fprintf(w, "return %s{\n", builderType)
		for _, r := range d.sector.Registers {
			fmt.Fprintf(w, "%s: %s,\n", memberName(r.Name), defaultLiteral(&r))
		}
		fmt.Fprintf(w, "}\n")
		fmt.Fprintf(w, "}\n\n")
	case KindArray:
		fmt.Fprintf(w, "// %s returns the configuration words in memory order.\n", d.Name)
		fmt.Fprintf(w, "func (s %s) %s() [%s]uint32 {\n", sectorType, d.Name, lengthConst)
		fmt.Fprintf(w, "return [%s]uint32{\n", lengthConst)
		for _, r := range d.sector.Registers {
			fmt.Fprintf(w, "s.%s,\n", r.Name)
		}
		fmt.Fprintf(w, "}\n")
		fmt.Fprintf(w, "}\n\n")
	case KindBuilder:
		fmt.Fprintf(w, "// %s stages field updates of a %s.\n", d.Name, sectorType)
		fmt.Fprintf(w, "type %s struct {\n", d.Name)
		for _, r := range d.sector.Registers {
			fmt.Fprintf(w, "%s uint32\n", memberName(r.Name))
		}
		fmt.Fprintf(w, "}\n\n")
	case KindSetter:
		f := d.ref.Field
		member := memberName(d.ref.Register.Name)
		fmt.Fprintf(w, "// %s sets %s[%d:%d].\n", f.Name, d.ref.Register.Name, f.Position+f.Length-1, f.Position)
		fmt.Fprintf(w, "func (b %s) %s(v %s) %s {\n", builderType, f.Name, f.Name, builderType)
		fmt.Fprintf(w, "b.%s &^= 0x%08x\n", member, f.Mask())
		if f.Position == 0 {
			fmt.Fprintf(w, "b.%s |= uint32(v) & 0x%08x\n", member, f.Mask())
		} else {
			fmt.Fprintf(w, "b.%s |= (uint32(v) << %d) & 0x%08x\n", member, f.Position, f.Mask())
		}
		fmt.Fprintf(w, "return b\n")
		fmt.Fprintf(w, "}\n\n")
	case KindBuild:
		fmt.Fprintf(w, "// %s returns the staged configuration words.\n", d.Name)
		fmt.Fprintf(w, "func (b %s) %s() %s {\n", builderType, d.Name, sectorType)
		fmt.Fprintf(w, "return %s{\n", sectorType)
		for _, r := range d.sector.Registers {
			fmt.Fprintf(w, "%s: b.%s,\n", r.Name, memberName(r.Name))
		}
		fmt.Fprintf(w, "}\n")
		fmt.Fprintf(w, "}\n\n")
	}
}

func writeDoc(w io.Writer, desc string) {
	if desc = comment(desc); len(desc) > 0 {
		fmt.Fprintf(w, "// %s\n", desc)
	}
}

// comment flattens text onto a single comment line.
func comment(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func enumerantName(f *config.Field, v config.NamedValue) string {
	return f.Name + "_" + v.Name
}

func defaultLiteral(r *config.ConfigSFR) string {
	if lit := strings.TrimSpace(r.Default); len(lit) > 0 {
		return lit
	}
	return fmt.Sprintf("0x%08x", r.DefaultValue)
}
