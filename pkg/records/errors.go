package records

import (
	"errors"
	"fmt"
)

// Error kinds. Every stage failure wraps exactly one of these so callers can
// branch with errors.Is without parsing messages.
var (
	ErrIO    = errors.New("io error")
	ErrParse = errors.New("parse error")
	ErrType  = errors.New("type error")
	ErrKey   = errors.New("key error")
)

// ParseError reports malformed tabular input.
type ParseError struct {
	File string
	Line int // 0 when the failure is not tied to a line (e.g. empty input)
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// TypeError reports a value that cannot be coerced to a column's target kind.
type TypeError struct {
	Column string
	Row    int
	Value  any
	Want   string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("column %q row %d: cannot convert %#v to %s", e.Column, e.Row, e.Value, e.Want)
}

func (e *TypeError) Unwrap() error { return ErrType }

// KeyError reports a column that a stage requires but the table lacks.
type KeyError struct {
	Column string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}

func (e *KeyError) Unwrap() error { return ErrKey }

// IOError reports a source that cannot be opened or read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }
