package tabular

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// parenDelta matches an embedded parenthetical signed delta such as
// "(+4,05,894)" inside a cell.
var parenDelta = regexp.MustCompile(`\(([+-]?[0-9][0-9,]*)\)`)

// dashes are the characters upstream uses for "no figure".
const dashes = "-–—"

// ParseCount parses a locale-formatted integer cell. Thousands separators
// (including Indian 2-2-3 grouping) are stripped, and an empty or
// dash-only cell reads as zero.
func ParseCount(cell string) (int64, error) {
	s := strings.TrimSpace(cell)
	if s == "" || strings.Trim(s, dashes) == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadNumber, cell)
	}
	return n, nil
}

// ParseRate parses a percentage/rate cell. Same blank and separator
// handling as ParseCount, with a fractional part allowed.
func ParseRate(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" || strings.Trim(s, dashes) == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadNumber, cell)
	}
	return f, nil
}

// ExtractDelta pulls the parenthetical signed delta out of a cell like
// "12,34,567 (+8,910) in last 24 hours". The delta is a logical field of
// its own, not discarded decoration; ok reports whether one was present.
func ExtractDelta(cell string) (delta int64, ok bool, err error) {
	m := parenDelta.FindStringSubmatch(cell)
	if m == nil {
		return 0, false, nil
	}
	s := strings.ReplaceAll(m[1], ",", "")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q", ErrBadNumber, cell)
	}
	return n, true, nil
}
