package types

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// UInteger is an unsigned integer attribute. EDC files mix hexadecimal
// ("0x1fc00bf0", "0X10") and decimal notation freely; the literal is kept
// so code emitted from it can reproduce the vendor's spelling.
type UInteger struct {
	Value   uint64
	Literal string
}

func (i *UInteger) UnmarshalXMLAttr(attr xml.Attr) (err error) {
	lit := normalize(attr.Value)
	value, err := strconv.ParseUint(lit, 0, 64)
	if err != nil {
		return fmt.Errorf("attribute %s: %w", attr.Name.Local, err)
	}
	*i = UInteger{Value: value, Literal: lit}
	return nil
}

func (i UInteger) String() string {
	if len(i.Literal) > 0 {
		return i.Literal
	}
	return fmt.Sprintf("%#x", i.Value)
}

// Bool is a boolean attribute. An absent attribute leaves it false; a
// present one must be something strconv.ParseBool accepts.
type Bool bool

func (b *Bool) UnmarshalXMLAttr(attr xml.Attr) (err error) {
	s := strings.TrimSpace(attr.Value)
	if len(s) == 0 {
		*b = false
		return nil
	}
	value, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("attribute %s: %w", attr.Name.Local, err)
	}
	*b = Bool(value)
	return nil
}

func normalize(s string) string {
	// strconv handles the 0x/0X, 0b/0B and 0o/0O prefixes itself.
	return strings.TrimSpace(s)
}
