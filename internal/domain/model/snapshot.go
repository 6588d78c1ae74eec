package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Date layouts used across the snapshot and its file names.
const (
	DateFormat     = "02 Jan 2006"
	FileDateFormat = "2006_01_02"
)

// FamilyStamp records provenance for one metric family: which source won
// the cycle, the effective date the figures describe, the source's own
// "as on" text, and when we fetched it.
type FamilyStamp struct {
	PrimarySource   string `json:"primary_source"`
	Date            string `json:"date"`
	AsOn            string `json:"as_on,omitempty"`
	Week            string `json:"week,omitempty"`
	LastUpdatedUnix int64  `json:"last_updated_unix,omitempty"`
	LastFetchedUnix int64  `json:"last_fetched_unix"`
}

// Timestamps is the snapshot's provenance section, one stamp per metric
// family plus the cycle's run ID.
type Timestamps struct {
	RunID       string       `json:"run_id,omitempty"`
	Cases       *FamilyStamp `json:"cases,omitempty"`
	Vaccination *FamilyStamp `json:"vaccination,omitempty"`
	Districts   *FamilyStamp `json:"districts,omitempty"`
}

// ReportingCycle identifies the logical day a snapshot describes, which is
// distinct from the wall-clock fetch time: figures published on day D
// describe D-1, and a stale upstream can push that back another day.
type ReportingCycle struct {
	EffectiveDate time.Time
	RunID         string
	FetchedAt     time.Time
	UsePrimary    bool
}

// Snapshot is one composed day of per-region records. It is treated as
// immutable once sealed; the previous day's snapshot is read-only input to
// the next cycle.
type Snapshot struct {
	Timestamps Timestamps
	Regions    map[string]*Region

	sealed bool
}

// NewSnapshot creates an empty snapshot holding the nation and
// miscellaneous buckets.
func NewSnapshot(nation, misc RegionMeta) *Snapshot {
	return &Snapshot{
		Regions: map[string]*Region{
			NationKey: NewRegion(nation),
			MiscKey:   NewRegion(misc),
		},
	}
}

// Nation returns the national roll-up region.
func (s *Snapshot) Nation() *Region { return s.Regions[NationKey] }

// StateNames returns the canonical state names in sorted order, excluding
// the nation and miscellaneous buckets.
func (s *Snapshot) StateNames() []string {
	names := make([]string, 0, len(s.Regions))
	for name := range s.Regions {
		if name == NationKey || name == MiscKey {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// States returns the state regions keyed by canonical name, excluding the
// nation and miscellaneous buckets.
func (s *Snapshot) States() map[string]*Region {
	states := make(map[string]*Region, len(s.Regions))
	for name, region := range s.Regions {
		if name == NationKey || name == MiscKey {
			continue
		}
		states[name] = region
	}
	return states
}

// Seal freezes the snapshot: aggregation bookkeeping is cleared and any
// further mutation is a programming error. Sealing twice is rejected.
func (s *Snapshot) Seal() error {
	if s.sealed {
		return fmt.Errorf("snapshot already sealed")
	}
	for _, region := range s.Regions {
		for _, d := range region.Districts {
			d.Contributions = 0
		}
	}
	s.sealed = true
	return nil
}

// Sealed reports whether the snapshot has been frozen.
func (s *Snapshot) Sealed() bool { return s.sealed }

// MarshalJSON writes regions at the top level keyed by canonical name,
// alongside a "timestamp" section, matching the published document shape.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Regions)+1)
	out["timestamp"] = s.Timestamps
	for name, region := range s.Regions {
		out[name] = region
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON. Loaded snapshots come from
// the store and are considered sealed.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Regions = make(map[string]*Region, len(raw))
	for name, msg := range raw {
		if name == "timestamp" {
			if err := json.Unmarshal(msg, &s.Timestamps); err != nil {
				return fmt.Errorf("timestamp section: %w", err)
			}
			continue
		}
		region := &Region{}
		if err := json.Unmarshal(msg, region); err != nil {
			return fmt.Errorf("region %q: %w", name, err)
		}
		s.Regions[name] = region
	}
	s.sealed = true
	return nil
}

// DashboardRow is one denormalized line of the flattened dashboard
// listing, with headline figures only.
type DashboardRow struct {
	State           string  `json:"State"`
	ActiveTotal     int64   `json:"Active (Total)"`
	ActiveChange    int64   `json:"Active (Change)"`
	RecoveredTotal  int64   `json:"Recovered (Total)"`
	RecoveredChange int64   `json:"Recovered (Change)"`
	DeathsTotal     int64   `json:"Deaths (Total)"`
	DeathsChange    int64   `json:"Deaths (Change)"`
	OverallTotal    int64   `json:"Overall (Total)"`
	OverallChange   int64   `json:"Overall (Change)"`
	VaccinatedTotal int64   `json:"Vaccinations (Total)"`
	VaccinatedNew   int64   `json:"Vaccinations (New)"`
}

// Dashboard flattens the snapshot into one row per region: the nation
// first, then states in sorted order, then the miscellaneous bucket.
func (s *Snapshot) Dashboard() []DashboardRow {
	order := append([]string{NationKey}, s.StateNames()...)
	order = append(order, MiscKey)

	rows := make([]DashboardRow, 0, len(order))
	for _, name := range order {
		region, ok := s.Regions[name]
		if !ok {
			continue
		}
		label := name
		if name == NationKey {
			label = "All over India"
		}
		all := region.Vaccination.AllAges.AllDoses
		rows = append(rows, DashboardRow{
			State:           label,
			ActiveTotal:     region.Active.Current,
			ActiveChange:    region.Active.Delta,
			RecoveredTotal:  region.Recovered.Current,
			RecoveredChange: region.Recovered.Delta,
			DeathsTotal:     region.Deaths.Current,
			DeathsChange:    region.Deaths.Delta,
			OverallTotal:    region.Confirmed.Current,
			OverallChange:   region.Confirmed.Delta,
			VaccinatedTotal: all.Total,
			VaccinatedNew:   all.New,
		})
	}
	return rows
}
