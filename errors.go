package cloner

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the engine and its stores.
var (
	ErrParse       = errors.New("cloner: parse error")
	ErrWrite       = errors.New("cloner: write error")
	ErrDelete      = errors.New("cloner: delete error")
	ErrConfig      = errors.New("cloner: provider cannot be resolved")
	ErrStorageRoot = errors.New("cloner: storage root unreadable")
	ErrChained     = errors.New("cloner: source is itself a clone")
	ErrExists      = errors.New("cloner: target entry already exists")
	ErrNotFound    = errors.New("cloner: entry not found")
)

// RecordError reports a failure tied to a single record or action.
// Kind is one of ErrParse, ErrWrite or ErrDelete.
type RecordError struct {
	Kind error
	Path string
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *RecordError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// NewParseError wraps err as a ParseError for path.
func NewParseError(path string, err error) *RecordError {
	return &RecordError{Kind: ErrParse, Path: path, Err: err}
}
