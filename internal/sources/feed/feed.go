// Package feed holds the small pieces shared by both upstream source
// packages: source names, center-count rows, and a count type tolerant
// of the feeds' loose typing (the same field arrives as a JSON number or
// a quoted number depending on the day).
package feed

import (
	"bytes"
	"fmt"
	"strconv"
)

// Upstream source names as recorded in snapshot provenance.
const (
	Primary   = "mygov"
	Secondary = "mohfw"
)

// Count is an integer decoded leniently: bare numbers, quoted numbers,
// empty strings and nulls are all accepted, with blanks reading as zero.
type Count int64

// UnmarshalJSON implements the lenient decoding.
func (c *Count) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("loose count %q: %w", s, err)
	}
	*c = Count(n)
	return nil
}

// Int64 returns the count as a plain integer.
func (c Count) Int64() int64 { return int64(c) }

// CenterRow is one row of the vaccination center feeds; the district
// name is present only in the district-level feed.
type CenterRow struct {
	StateName    string `json:"state_name"`
	DistrictName string `json:"district_name,omitempty"`
	Centers      Count  `json:"centers"`
}
