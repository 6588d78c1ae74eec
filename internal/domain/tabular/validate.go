package tabular

import (
	"fmt"
	"strings"
)

// View is a validated, read-only window onto a RawTable. Field access is
// by the logical names the matched layout declares.
type View struct {
	layout *Layout
	table  RawTable
}

// Validate checks the table against each layout in order (callers list
// the newest variant first) and returns a view over the first one that
// fully validates. When none does, the returned error carries every
// variant's failing assertion so operators can diagnose upstream drift.
func Validate(table RawTable, layouts ...*Layout) (*View, error) {
	failures := make([]*SchemaMismatchError, 0, len(layouts))
	for _, layout := range layouts {
		if err := check(table, layout); err != nil {
			failures = append(failures, err)
			continue
		}
		return &View{layout: layout, table: table}, nil
	}
	if len(failures) == 1 {
		return nil, failures[0]
	}
	return nil, &NoLayoutError{Failures: failures}
}

// check runs every structural assertion of one layout and reports the
// first failure. Dimension checks run first: positional assertions are
// meaningless on a grid of the wrong shape.
func check(table RawTable, layout *Layout) *SchemaMismatchError {
	if layout.Rows > 0 && table.Rows() != layout.Rows {
		return &SchemaMismatchError{
			Layout: layout.Name,
			Expect: fmt.Sprintf("%d rows", layout.Rows),
			Got:    fmt.Sprintf("%d rows", table.Rows()),
		}
	}
	if layout.MinRows > 0 && table.Rows() < layout.MinRows {
		return &SchemaMismatchError{
			Layout: layout.Name,
			Expect: fmt.Sprintf("at least %d rows", layout.MinRows),
			Got:    fmt.Sprintf("%d rows", table.Rows()),
		}
	}
	for i, row := range table {
		if len(row) != layout.Cols {
			return &SchemaMismatchError{
				Layout: layout.Name,
				Row:    i,
				Expect: fmt.Sprintf("%d columns", layout.Cols),
				Got:    fmt.Sprintf("%d columns", len(row)),
			}
		}
	}
	for _, a := range layout.Assertions {
		cell := table.Cell(a.Row, a.Col)
		if !a.Check(cell) {
			return &SchemaMismatchError{
				Layout: layout.Name,
				Row:    a.Row,
				Col:    a.Col,
				Expect: a.Expect,
				Got:    cell,
			}
		}
	}
	return nil
}

// Layout returns the name of the layout variant that validated.
func (v *View) Layout() string { return v.layout.Name }

// Rows returns the row count of the underlying table.
func (v *View) Rows() int { return v.table.Rows() }

// Cell returns a raw cell by position. Positions inside the validated
// dimensions are always in bounds.
func (v *View) Cell(row, col int) string { return v.table.Cell(row, col) }

// Field returns the raw text of a named logical field.
func (v *View) Field(name string) (string, error) {
	ref, ok := v.layout.Fields[name]
	if !ok {
		return "", fmt.Errorf("%w: %q in layout %q", ErrUnknownField, name, v.layout.Name)
	}
	return v.table.Cell(ref.Row, ref.Col), nil
}

// Count parses a named field as a locale-formatted count.
func (v *View) Count(name string) (int64, error) {
	raw, err := v.Field(name)
	if err != nil {
		return 0, err
	}
	n, err := ParseCount(raw)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", name, err)
	}
	return n, nil
}

// Lines returns a named field split on embedded line breaks.
func (v *View) Lines(name string) ([]string, error) {
	raw, err := v.Field(name)
	if err != nil {
		return nil, err
	}
	return strings.Split(raw, "\n"), nil
}
