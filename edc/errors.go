package edc

import "errors"

var (
	ErrNotEDC             = errors.New("document is not an EDC PIC description")
	ErrNoConfigFuseSector = errors.New("no configuration fuse sector found")
	ErrMissingAttribute   = errors.New("missing required attribute")
	ErrUnsupportedCharset = errors.New("unsupported document charset")
)
