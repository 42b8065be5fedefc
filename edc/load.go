package edc

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/ianaindex"
)

// Load decodes the first ConfigFuseSector of an EDC document. The sector
// may sit at any depth below the root element.
func Load(r io.Reader) (*PIC, error) {
	d := xml.NewDecoder(r)
	d.CharsetReader = charsetReader

	pic := &PIC{}
	root := true
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return nil, ErrNoConfigFuseSector
		} else if err != nil {
			return nil, fmt.Errorf("xml decode error: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if root {
			if start.Name.Space != Namespace || start.Name.Local != "PIC" {
				return nil, fmt.Errorf("%w: root element is %s", ErrNotEDC, formatName(start.Name))
			}
			pic.Name = attr(start, "name")
			root = false
			continue
		}

		if start.Name.Space == Namespace && start.Name.Local == "ConfigFuseSector" {
			if err = d.DecodeElement(&pic.Sector, &start); err != nil {
				return nil, fmt.Errorf("xml decode error: %w", err)
			}
			if err = pic.Sector.validate(); err != nil {
				return nil, err
			}
			return pic, nil
		}
	}
}

// LoadFile opens and loads the EDC document at path.
func LoadFile(path string) (*PIC, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pic, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pic, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCharset, label)
	}
	if enc == nil {
		// Registered with IANA but not implemented by x/text.
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCharset, label)
	}
	return enc.NewDecoder().Reader(input), nil
}

func attr(start xml.StartElement, local string) string {
	for _, a := range start.Attr {
		if a.Name.Space == Namespace && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func formatName(name xml.Name) string {
	if len(name.Space) > 0 {
		return "{" + name.Space + "}" + name.Local
	}
	return name.Local
}

func (s *ConfigFuseSector) validate() (err error) {
	if len(s.BeginAddr.Literal) == 0 {
		err = errors.Join(err, missing("ConfigFuseSector", "", "beginaddr"))
	}
	if len(s.EndAddr.Literal) == 0 {
		err = errors.Join(err, missing("ConfigFuseSector", "", "endaddr"))
	}

	for _, reg := range s.Registers {
		if len(reg.Name) == 0 {
			err = errors.Join(err, missing("DCRDef", reg.Addr.String(), "cname"))
		}
		if len(reg.Addr.Literal) == 0 {
			err = errors.Join(err, missing("DCRDef", reg.Name, "_addr"))
		}
		if len(reg.Default.Literal) == 0 {
			err = errors.Join(err, missing("DCRDef", reg.Name, "default"))
		}

		for _, mode := range reg.Modes {
			for _, node := range mode.Nodes {
				switch n := node.(type) {
				case *DCRFieldDef:
					if len(n.Name) == 0 {
						err = errors.Join(err, missing("DCRFieldDef", reg.Name, "cname"))
					}
					if len(n.Width.Literal) == 0 {
						err = errors.Join(err, missing("DCRFieldDef", n.Name, "nzwidth"))
					}
					for _, sem := range n.Semantics {
						if len(sem.Name) == 0 {
							err = errors.Join(err, missing("DCRFieldSemantic", n.Name, "cname"))
						}
						if len(sem.When) == 0 {
							err = errors.Join(err, missing("DCRFieldSemantic", n.Name+"."+sem.Name, "when"))
						}
					}
				case *AdjustPoint:
					if len(n.Offset.Literal) == 0 {
						err = errors.Join(err, missing("AdjustPoint", reg.Name, "offset"))
					}
				}
			}
		}
	}
	return err
}

func missing(element, owner, attribute string) error {
	if len(owner) > 0 {
		return fmt.Errorf("%w: %s %s has no %s", ErrMissingAttribute, element, owner, attribute)
	}
	return fmt.Errorf("%w: %s has no %s", ErrMissingAttribute, element, attribute)
}
