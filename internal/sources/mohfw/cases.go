// Package mohfw parses the Health Ministry feeds: a per-state JSON array
// for cases, and tabular documents (extracted to raw grids upstream) for
// vaccination and district testing figures. MoHFW is the secondary
// source for most families but is always authoritative for the death
// reconciliation figure.
package mohfw

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/covid-saarani/lipik/internal/domain/delta"
	"github.com/covid-saarani/lipik/internal/domain/model"
	"github.com/covid-saarani/lipik/internal/domain/resolve"
	"github.com/covid-saarani/lipik/internal/sources/feed"
)

// ErrBadFeed is the sentinel kind for malformed MoHFW payloads.
var ErrBadFeed = errors.New("malformed mohfw feed")

// nationalSNO marks the national roll-up row in the cases feed; it also
// has an empty state name.
const nationalSNO = "11111"

// CasesRow is one row of the MoHFW cases feed. The "new_" prefix marks
// the current day's cumulative figure; the bare name is the previous
// day's. Blank cells decode as zero.
type CasesRow struct {
	SNO       string `json:"sno"`
	StateName string `json:"state_name"`

	Confirmed     feed.Count `json:"new_positive"`
	PrevConfirmed feed.Count `json:"positive"`
	Active        feed.Count `json:"new_active"`
	PrevActive    feed.Count `json:"active"`
	Recovered     feed.Count `json:"new_cured"`
	PrevRecovered feed.Count `json:"cured"`
	Deaths        feed.Count `json:"new_death"`
	PrevDeaths    feed.Count `json:"death"`

	Reconciled feed.Count `json:"death_reconsille"`
}

// DecodeCases parses the raw cases payload.
func DecodeCases(data []byte) ([]CasesRow, error) {
	var rows []CasesRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: cases: %v", ErrBadFeed, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: cases: no rows", ErrBadFeed)
	}
	return rows, nil
}

// NationalConfirmed returns the national row's current confirmed count,
// the feed's headline total for freshness arbitration.
func NationalConfirmed(rows []CasesRow) (int64, error) {
	for i := range rows {
		if isNational(&rows[i]) {
			return rows[i].Confirmed.Int64(), nil
		}
	}
	return 0, fmt.Errorf("%w: cases: national row missing", ErrBadFeed)
}

func isNational(row *CasesRow) bool {
	return row.StateName == "" && row.SNO == nationalSNO
}

// Source fills snapshot records from MoHFW feeds and tables.
type Source struct {
	engine *delta.Engine
}

// New constructs a Source around the shared delta engine.
func New(engine *delta.Engine) *Source {
	return &Source{engine: engine}
}

// FillCases populates state case blocks from the feed. In
// reconciliation-only mode nothing but the death reconciliation figure
// is written, for cycles where MyGov is authoritative. Change figures
// are always derived; the feed's national row is left for the
// composer's post-fold cross-check.
func (s *Source) FillCases(snap *model.Snapshot, rows []CasesRow, resolver *resolve.Resolver, reconciliationOnly bool) error {
	for i := range rows {
		row := &rows[i]

		var region *model.Region
		if isNational(row) {
			region = snap.Nation()
		} else {
			name, err := resolver.Resolve(row.StateName)
			if err != nil {
				return fmt.Errorf("cases row %d: %w", i, err)
			}
			region = snap.Regions[name]
			if region == nil {
				return fmt.Errorf("%w: cases: unknown state %q", ErrBadFeed, name)
			}
		}

		if reconciled := row.Reconciled.Int64(); reconciled != 0 {
			region.Deaths.Reconciled = reconciled
		}
		if reconciliationOnly || isNational(row) {
			continue
		}

		s.engine.FillPair(&region.Confirmed, row.Confirmed.Int64(), row.PrevConfirmed.Int64())
		s.engine.FillPair(&region.Active, row.Active.Int64(), row.PrevActive.Int64())
		s.engine.FillPair(&region.Recovered, row.Recovered.Int64(), row.PrevRecovered.Int64())
		s.engine.FillPair(&region.Deaths, row.Deaths.Int64(), row.PrevDeaths.Int64())

		if err := s.engine.SetRatios(region); err != nil {
			return fmt.Errorf("cases row %d (%s): %w", i, row.StateName, err)
		}
	}
	return nil
}
