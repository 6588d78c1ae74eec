// Package mygov parses the MyGov JSON feeds and fills snapshot records
// from them. MyGov publishes column-major parallel maps keyed by
// stringified row index, with known recurring typos in state names.
package mygov

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/covid-saarani/lipik/internal/domain/delta"
	"github.com/covid-saarani/lipik/internal/domain/model"
	"github.com/covid-saarani/lipik/internal/sources/feed"
)

// ErrBadFeed is the sentinel kind for malformed MyGov payloads.
var ErrBadFeed = errors.New("malformed mygov feed")

// CasesFeed mirrors the MyGov state counts document: one map per column,
// each keyed by row index.
type CasesFeed struct {
	Names     map[string]string `json:"Name of State / UT"`
	Codes     map[string]string `json:"abbreviation_code"`
	Hindi     map[string]string `json:"states_name_hi"`
	Helplines map[string]string `json:"state_helpline"`
	Donations map[string]string `json:"state_donation_url"`

	Confirmed map[string]feed.Count `json:"Total Confirmed cases"`
	Active    map[string]feed.Count `json:"Active"`
	Recovered map[string]feed.Count `json:"Cured/Discharged/Migrated"`
	Deaths    map[string]feed.Count `json:"Death"`

	PrevConfirmed map[string]feed.Count `json:"last_confirmed_covid_cases"`
	PrevActive    map[string]feed.Count `json:"last_active_covid_cases"`
	PrevRecovered map[string]feed.Count `json:"last_cured_discharged"`
	PrevDeaths    map[string]feed.Count `json:"last_death"`

	DiffConfirmed map[string]feed.Count `json:"diff_confirmed_covid_cases"`
	DiffActive    map[string]feed.Count `json:"diff_active_covid_cases"`
	DiffRecovered map[string]feed.Count `json:"diff_cured_discharged"`
	DiffDeaths    map[string]feed.Count `json:"diff_death"`

	AsOn      string     `json:"as_on"`
	UpdatedOn feed.Count `json:"updated_on"`
}

// DecodeCases parses the raw cases payload.
func DecodeCases(data []byte) (*CasesFeed, error) {
	f := &CasesFeed{}
	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("%w: cases: %v", ErrBadFeed, err)
	}
	if len(f.Names) == 0 {
		return nil, fmt.Errorf("%w: cases: no state rows", ErrBadFeed)
	}
	return f, nil
}

// StateRow is one state's slice through the parallel column maps.
type StateRow struct {
	Index int
	Meta  model.RegionMeta
}

// States iterates the feed's rows in index order, applying the known
// upstream cleanups: "Andaman and Nicobar" missing its "Islands", and
// the recurring "Telengana" misspelling.
func (f *CasesFeed) States() ([]StateRow, error) {
	rows := make([]StateRow, 0, len(f.Names))
	for i := 0; ; i++ {
		key := strconv.Itoa(i)
		name, ok := f.Names[key]
		if !ok {
			break
		}
		hindi := f.Hindi[key]
		switch name {
		case "Andaman and Nicobar":
			name += " Islands"
			hindi += " द्वीपसमूह"
		case "Telengana":
			name = "Telangana"
		}
		rows = append(rows, StateRow{
			Index: i,
			Meta: model.RegionMeta{
				Name:     name,
				Code:     f.Codes[key],
				Hindi:    hindi,
				Helpline: f.Helplines[key],
				Donate:   f.Donations[key],
			},
		})
	}
	if len(rows) != len(f.Names) {
		return nil, fmt.Errorf("%w: cases: non-contiguous row indexes", ErrBadFeed)
	}
	return rows, nil
}

// NationalConfirmed sums the confirmed column; MyGov has no national
// row, so this is the feed's headline total for freshness arbitration.
func (f *CasesFeed) NationalConfirmed() int64 {
	var total int64
	for _, n := range f.Confirmed {
		total += n.Int64()
	}
	return total
}

// Source fills snapshot records from MyGov feeds.
type Source struct {
	engine *delta.Engine
}

// New constructs a Source around the shared delta engine.
func New(engine *delta.Engine) *Source {
	return &Source{engine: engine}
}

// SeedRegions creates or refreshes one region per feed row. Regions
// pre-seeded from the registry keep their district lists; the feed's
// metadata wins because MyGov is the only source carrying helplines and
// Hindi names, and it updates them between registry releases. Run
// regardless of which source wins the cycle.
func (s *Source) SeedRegions(snap *model.Snapshot, f *CasesFeed) error {
	rows, err := f.States()
	if err != nil {
		return err
	}
	for _, row := range rows {
		region, ok := snap.Regions[row.Meta.Name]
		if !ok {
			snap.Regions[row.Meta.Name] = model.NewRegion(row.Meta)
			continue
		}
		region.Code = row.Meta.Code
		region.Hindi = row.Meta.Hindi
		region.Helpline = row.Meta.Helpline
		region.Donate = row.Meta.Donate
	}
	return nil
}

// FillCases populates every state's case blocks from the feed. The
// feed's own diff figures are cross-checked against the derived change.
// National figures are folded later by the composer, per the aggregate
// invariant.
func (s *Source) FillCases(snap *model.Snapshot, f *CasesFeed) error {
	rows, err := f.States()
	if err != nil {
		return err
	}
	for _, row := range rows {
		region, ok := snap.Regions[row.Meta.Name]
		if !ok {
			return fmt.Errorf("%w: cases: unseeded state %q", ErrBadFeed, row.Meta.Name)
		}
		key := strconv.Itoa(row.Index)

		type column struct {
			metric                string
			block                 *model.MetricBlock
			current, previous, diff feed.Count
		}
		columns := []column{
			{"confirmed", &region.Confirmed, f.Confirmed[key], f.PrevConfirmed[key], f.DiffConfirmed[key]},
			{"active", &region.Active, f.Active[key], f.PrevActive[key], f.DiffActive[key]},
			{"recovered", &region.Recovered, f.Recovered[key], f.PrevRecovered[key], f.DiffRecovered[key]},
			{"deaths", &region.Deaths, f.Deaths[key], f.PrevDeaths[key], f.DiffDeaths[key]},
		}
		for _, c := range columns {
			err := s.engine.FillChecked(c.block, row.Meta.Name, c.metric,
				c.current.Int64(), c.previous.Int64(), c.diff.Int64())
			if err != nil {
				return err
			}
		}
		if err := s.engine.SetRatios(region); err != nil {
			return fmt.Errorf("state %q: %w", row.Meta.Name, err)
		}
	}
	return nil
}
