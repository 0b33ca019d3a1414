package generator

import (
	"errors"
	"fmt"
)

// ErrStaleOutput is returned in check mode when an output file differs from
// what would be generated.
var ErrStaleOutput = errors.New("generated output is out of date")

// ParseError reports a module that could not be turned into a usable tree,
// including markers with too few type arguments.
type ParseError struct {
	Path string
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", loc, e.Msg, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", loc, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnresolvedEventReferenceError reports an operation naming an event that
// the module does not define.
type UnresolvedEventReferenceError struct {
	Operation string
	Event     string
}

func (e *UnresolvedEventReferenceError) Error() string {
	return fmt.Sprintf("operation %q references undefined event %q", e.Operation, e.Event)
}

// UnknownTypeAnnotationError reports an annotation missing from the
// vocabulary table.
type UnknownTypeAnnotationError struct {
	Kind string
	Name string
	Line int
}

func (e *UnknownTypeAnnotationError) Error() string {
	return fmt.Sprintf("line %d: no documentation label for %s %q", e.Line, e.Kind, e.Name)
}

// FileIOError wraps a failure reading a source/template or writing output.
type FileIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileIOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileIOError) Unwrap() error { return e.Err }
