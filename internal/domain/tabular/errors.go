package tabular

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for tabular validation errors.
var (
	ErrSchemaMismatch = errors.New("table schema mismatch")
	ErrUnknownField   = errors.New("unknown layout field")
	ErrBadNumber      = errors.New("malformed numeric cell")
)

// SchemaMismatchError reports the first assertion a layout failed, with
// enough detail for an operator to update the layout configuration
// without reading code.
type SchemaMismatchError struct {
	Layout string
	Row    int
	Col    int
	Expect string
	Got    string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("layout %q: cell (%d,%d): expected %s, got %q",
		e.Layout, e.Row, e.Col, e.Expect, e.Got)
}

func (e *SchemaMismatchError) Unwrap() error { return ErrSchemaMismatch }

// NoLayoutError aggregates the failures of every variant tried when none
// of them validated a table.
type NoLayoutError struct {
	Failures []*SchemaMismatchError
}

func (e *NoLayoutError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	return "no layout variant matched: " + strings.Join(parts, "; ")
}

func (e *NoLayoutError) Unwrap() error { return ErrSchemaMismatch }
