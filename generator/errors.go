package generator

import "errors"

var (
	ErrDuplicateName     = errors.New("duplicate name in generated code")
	ErrInvalidIdentifier = errors.New("name is not a valid Go identifier")
	ErrInvalidPackage    = errors.New("invalid package name")
	ErrFormat            = errors.New("error formatting generated code")
)
