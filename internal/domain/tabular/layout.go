// Package tabular validates raw cell grids extracted from upstream
// tabular documents against declaratively described layouts, and exposes
// validated views with named logical fields. Upstream reformats these
// documents without notice; a layout mismatch must surface as a precise,
// operator-diagnosable failure, never as a misparse.
package tabular

import "fmt"

// RawTable is an ephemeral grid of text cells addressed by zero-based
// row and column. It is consumed during validation and parsing and never
// persisted.
type RawTable [][]string

// Rows returns the number of rows in the grid.
func (t RawTable) Rows() int { return len(t) }

// Cols returns the column count of the first row, or zero for an empty
// grid. Ragged grids fail the per-row width assertion during validation.
func (t RawTable) Cols() int {
	if len(t) == 0 {
		return 0
	}
	return len(t[0])
}

// Cell returns the cell at (row, col), or an empty string when the
// address is out of bounds.
func (t RawTable) Cell(row, col int) string {
	if row < 0 || row >= len(t) || col < 0 || col >= len(t[row]) {
		return ""
	}
	return t[row][col]
}

// CellRef addresses one cell of a layout.
type CellRef struct {
	Row int
	Col int
}

// Assertion is one positional structural expectation on a table.
type Assertion struct {
	Row    int
	Col    int
	Expect string // human-readable expectation, quoted in failures
	Check  func(cell string) bool
}

// Layout declares the full structural shape of one known table variant:
// its dimensions, per-cell assertions, and the named logical fields a
// validated view exposes. Rows may be left at zero together with a
// positive MinRows for layouts whose data section grows, such as
// sentinel-terminated district tables.
type Layout struct {
	Name    string
	Rows    int
	MinRows int
	Cols    int

	Assertions []Assertion
	Fields     map[string]CellRef
}

// Literal asserts that a cell equals the given label exactly.
func Literal(row, col int, label string) Assertion {
	return Assertion{
		Row:    row,
		Col:    col,
		Expect: fmt.Sprintf("literal %q", label),
		Check:  func(cell string) bool { return cell == label },
	}
}

// LineBreaks asserts the exact count of embedded line breaks in a cell.
// Extraction merges stacked sub-cells into one cell separated by "\n",
// so the count is a cheap fingerprint of the sub-cell structure.
func LineBreaks(row, col, n int) Assertion {
	return Assertion{
		Row:    row,
		Col:    col,
		Expect: fmt.Sprintf("%d embedded line break(s)", n),
		Check:  func(cell string) bool { return countLineBreaks(cell) == n },
	}
}

// MustBeEmpty asserts that a cell holds an empty string.
func MustBeEmpty(row, col int) Assertion {
	return Assertion{
		Row:    row,
		Col:    col,
		Expect: "empty cell",
		Check:  func(cell string) bool { return cell == "" },
	}
}

// NotEmpty asserts that a cell holds a non-empty string.
func NotEmpty(row, col int) Assertion {
	return Assertion{
		Row:    row,
		Col:    col,
		Expect: "non-empty cell",
		Check:  func(cell string) bool { return cell != "" },
	}
}

// Numeric asserts that a cell parses as a locale-formatted count.
func Numeric(row, col int) Assertion {
	return Assertion{
		Row:    row,
		Col:    col,
		Expect: "numeric cell",
		Check: func(cell string) bool {
			_, err := ParseCount(cell)
			return err == nil
		},
	}
}

func countLineBreaks(s string) int {
	n := 0
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
