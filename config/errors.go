package config

import (
	"errors"
	"fmt"
)

var (
	ErrUnrecognizedNode   = errors.New("unrecognized field list element")
	ErrMalformedCondition = errors.New("malformed semantic condition")
	ErrValueOutOfRange    = errors.New("semantic value does not fit its field")
	ErrFieldOverflow      = errors.New("field list exceeds the register width")
	ErrZeroWidth          = errors.New("field has zero width")
	ErrInvalidDefault     = errors.New("invalid register default")
	ErrWordCountMismatch  = errors.New("sector word count does not match its registers")
	ErrRegisterAddress    = errors.New("register is not at its word address")
	ErrEmptySector        = errors.New("sector address range is empty")
)

// UnrecognizedNodeError is returned when a field list contains an element
// that is neither a field definition nor an adjustment point.
type UnrecognizedNodeError struct {
	Register string
	Tag      string
}

func (e *UnrecognizedNodeError) Error() string {
	return fmt.Sprintf("%s: %s %s", e.Register, ErrUnrecognizedNode, e.Tag)
}

func (e *UnrecognizedNodeError) Is(target error) bool {
	return target == ErrUnrecognizedNode
}
