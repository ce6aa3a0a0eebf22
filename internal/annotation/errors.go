package annotation

import (
	"errors"
	"fmt"
)

var (
	ErrNoSources  = errors.New("no source files matched")
	ErrNotMapping = errors.New("annotation must be a YAML mapping")
)

// Error reports a source file that could not be turned into a document fragment.
type Error struct {
	File string
	Line int
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	case e.File != "":
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
