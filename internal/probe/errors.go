package probe

import (
	"errors"
	"fmt"
)

// Sentinel errors, in the teacher's internal/graph/errors.go idiom: callers
// use errors.Is against these, and errors.As against the typed wrappers
// below for the unit name and field detail.
var (
	ErrExec   = errors.New("info probe failed")
	ErrParse  = errors.New("malformed info probe output")
	ErrSchema = errors.New("invalid info probe schema")
)

// ExecError wraps a failure to run "<file> swd_info" itself (nonzero exit,
// missing executable bit, etc).
type ExecError struct {
	Unit string
	Err  error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Unit, ErrExec.Error(), e.Err)
}
func (e *ExecError) Unwrap() error { return ErrExec }

// ParseError wraps malformed JSON from a probe's stdout.
type ParseError struct {
	Unit string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Unit, ErrParse.Error(), e.Msg)
}
func (e *ParseError) Unwrap() error { return ErrParse }

// SchemaError wraps a specific schema violation, naming the offending field
// (spec §6: "each failure produces a specific message prefixed by the unit
// name").
type SchemaError struct {
	Unit  string
	Field string
	Msg   string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s: %s: %s", e.Unit, ErrSchema.Error(), e.Field, e.Msg)
}
func (e *SchemaError) Unwrap() error { return ErrSchema }
