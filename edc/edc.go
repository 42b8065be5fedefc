package edc

import (
	"encoding/xml"

	"omibyte.io/picconf/types"
)

// Namespace is the XML namespace every EDC element and attribute lives in.
const Namespace = "http://crownking/edc"

// DefaultMode is the id of the DCRMode whose field list describes the
// physical layout of a configuration word.
const DefaultMode = "DS.0"

// PIC is the subset of an EDC document the configuration compiler consumes.
type PIC struct {
	Name   string
	Sector ConfigFuseSector
}

type ConfigFuseSector struct {
	BeginAddr types.UInteger `xml:"http://crownking/edc beginaddr,attr"`
	EndAddr   types.UInteger `xml:"http://crownking/edc endaddr,attr"`
	Registers []DCRDef       `xml:"http://crownking/edc DCRDef"`
}

// DCRDef describes one configuration word.
type DCRDef struct {
	Name    string         `xml:"http://crownking/edc cname,attr"`
	Addr    types.UInteger `xml:"http://crownking/edc _addr,attr"`
	Default types.UInteger `xml:"http://crownking/edc default,attr"`
	Modes   []DCRMode      `xml:"http://crownking/edc DCRModeList>DCRMode"`
}

// Mode returns the mode with the given id, or nil.
func (r *DCRDef) Mode(id string) *DCRMode {
	for i := range r.Modes {
		if r.Modes[i].ID == id {
			return &r.Modes[i]
		}
	}
	return nil
}

// DCRMode is an ordered field list. The order of Nodes is the document
// order, which is what bit positions are derived from.
type DCRMode struct {
	ID    string
	Nodes []Node
}

// Node is one child of a DCRMode: *DCRFieldDef, *AdjustPoint or
// *UnknownNode.
type Node interface {
	Tag() xml.Name
}

type DCRFieldDef struct {
	Name      string             `xml:"http://crownking/edc cname,attr"`
	Desc      string             `xml:"http://crownking/edc desc,attr"`
	Width     types.UInteger     `xml:"http://crownking/edc nzwidth,attr"`
	Hidden    types.Bool         `xml:"http://crownking/edc ishidden,attr"`
	Semantics []DCRFieldSemantic `xml:"http://crownking/edc DCRFieldSemantic"`
}

func (*DCRFieldDef) Tag() xml.Name {
	return xml.Name{Space: Namespace, Local: "DCRFieldDef"}
}

type DCRFieldSemantic struct {
	Name string `xml:"http://crownking/edc cname,attr"`
	Desc string `xml:"http://crownking/edc desc,attr"`
	When string `xml:"http://crownking/edc when,attr"`
}

// AdjustPoint skips Offset bits of the word without naming them.
type AdjustPoint struct {
	Offset types.UInteger `xml:"http://crownking/edc offset,attr"`
}

func (*AdjustPoint) Tag() xml.Name {
	return xml.Name{Space: Namespace, Local: "AdjustPoint"}
}

// UnknownNode records a field list child the loader has no type for.
type UnknownNode struct {
	Name xml.Name
}

func (n *UnknownNode) Tag() xml.Name {
	return n.Name
}

func (m *DCRMode) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		if attr.Name.Space == Namespace && attr.Name.Local == "id" {
			m.ID = attr.Value
		}
	}

	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			var node Node
			switch t.Name {
			case (*DCRFieldDef)(nil).Tag():
				field := &DCRFieldDef{}
				if err = d.DecodeElement(field, &t); err != nil {
					return err
				}
				node = field
			case (*AdjustPoint)(nil).Tag():
				adjust := &AdjustPoint{}
				if err = d.DecodeElement(adjust, &t); err != nil {
					return err
				}
				node = adjust
			default:
				if err = d.Skip(); err != nil {
					return err
				}
				node = &UnknownNode{Name: t.Name}
			}
			m.Nodes = append(m.Nodes, node)
		case xml.EndElement:
			return nil
		}
	}
}
