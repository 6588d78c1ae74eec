// Package freshness decides which upstream source is authoritative for a
// reporting cycle and pins down the cycle's effective date. Cumulative
// counts never decrease, so a primary feed reporting less than the
// secondary has simply not caught up yet; and a snapshot numerically
// identical to yesterday's is a repeat publication, not a new day.
package freshness

import (
	"errors"
	"time"

	"github.com/covid-saarani/lipik/internal/domain/model"
)

// Sentinel kinds for freshness decisions.
var (
	ErrMissingBaseline = errors.New("previous snapshot unavailable")
	ErrAlreadyFetched  = errors.New("current cycle already fetched from primary source")
)

// DefaultCutoverHour is the local hour before which upstream has not yet
// published the day's figures, so a fetch still describes the previous
// publication.
const DefaultCutoverHour = 8

// Arbiter makes the per-cycle freshness decisions. The location anchors
// all date arithmetic to the upstream publisher's timezone.
type Arbiter struct {
	loc         *time.Location
	cutoverHour int
}

// Option applies a configuration option to the Arbiter.
type Option func(*Arbiter)

// WithCutoverHour overrides the publication cutover hour. Out-of-range
// values are ignored.
func WithCutoverHour(hour int) Option {
	return func(a *Arbiter) {
		if hour >= 0 && hour < 24 {
			a.cutoverHour = hour
		}
	}
}

// New constructs an Arbiter for the given publisher timezone.
func New(loc *time.Location, opts ...Option) *Arbiter {
	a := &Arbiter{
		loc:         loc,
		cutoverHour: DefaultCutoverHour,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Arbitrate decides the authoritative source for this cycle from both
// sources' headline national cumulative totals for the same nominal
// date. The primary source wins unless its total is strictly behind the
// secondary's, which marks it stale. The decision is binary and made
// once per cycle.
func (a *Arbiter) Arbitrate(primaryTotal, secondaryTotal int64) bool {
	return primaryTotal >= secondaryTotal
}

// NominalDate returns the effective reporting date for a fetch at the
// given instant: figures published on day D describe D-1, and a fetch
// before the cutover hour still sees the previous publication.
func (a *Arbiter) NominalDate(now time.Time) time.Time {
	local := now.In(a.loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, a.loc)
	if local.Hour() < a.cutoverHour {
		day = day.AddDate(0, 0, -1)
	}
	return day.AddDate(0, 0, -1)
}

// ShiftIfStale compares a freshly composed snapshot's nation-level
// headline metric against the previous snapshot's. Identical cumulative
// figures mean upstream has not published new numbers, and the effective
// date must move one day back before the snapshot is finalized. Without
// a previous snapshot the check cannot run; callers fall back to the
// NominalDate heuristic and tolerate ErrMissingBaseline.
func (a *Arbiter) ShiftIfStale(current, previous *model.Snapshot, effective time.Time) (time.Time, bool, error) {
	if previous == nil {
		return effective, false, ErrMissingBaseline
	}
	if current.Nation().Confirmed.Current == previous.Nation().Confirmed.Current {
		return effective.AddDate(0, 0, -1), true, nil
	}
	return effective, false, nil
}

// AlreadyFetched reports whether the latest stored snapshot already
// covers today's publication from the primary source, making a new cycle
// a no-op.
func (a *Arbiter) AlreadyFetched(latest *model.Snapshot, primarySource string, now time.Time) bool {
	if latest == nil || latest.Timestamps.Cases == nil {
		return false
	}
	stamp := latest.Timestamps.Cases
	if stamp.PrimarySource != primarySource {
		return false
	}
	fetched := time.Unix(stamp.LastFetchedUnix, 0).In(a.loc)
	nominalNow := a.NominalDate(now)
	nominalThen := a.NominalDate(fetched)
	return nominalNow.Equal(nominalThen)
}
