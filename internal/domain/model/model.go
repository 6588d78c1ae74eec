// Package model contains the typed records passed between pipeline stages:
// regions, metric blocks, vaccination dose counters and composed snapshots.
package model

// Well-known region keys in a snapshot.
const (
	NationKey = "All"
	MiscKey   = "Miscellaneous"
)

// MetricBlock is one named statistic for a region. Current and Previous are
// cumulative counts one reporting cycle apart; Delta is always their
// difference. RatioPC is the percentage share of a related total, rounded
// to five decimals. NoBaseline marks a zero Previous that came from a
// missing prior snapshot rather than from an actual zero.
type MetricBlock struct {
	Current    int64   `json:"current"`
	Previous   int64   `json:"previous"`
	Delta      int64   `json:"delta"`
	RatioPC    float64 `json:"ratio_pc"`
	Reconciled int64   `json:"reconciled,omitempty"`
	NoBaseline bool    `json:"no_baseline,omitempty"`
}

// Add folds another block's counters into this one. Ratio fields are not
// additive and are recomputed by the caller after folding.
func (b *MetricBlock) Add(o MetricBlock) {
	b.Current += o.Current
	b.Previous += o.Previous
	b.Delta += o.Delta
}

// DoseStats counts vaccine doses: cumulative and over the last 24 hours.
type DoseStats struct {
	Total int64 `json:"total"`
	New   int64 `json:"new"`
}

// AgeBandDoses groups dose counters for one age band. The third dose is
// the precaution/booster dose.
type AgeBandDoses struct {
	AllDoses DoseStats `json:"all_doses"`
	First    DoseStats `json:"1st_dose"`
	Second   DoseStats `json:"2nd_dose"`
	Third    DoseStats `json:"3rd_dose"`
}

// Vaccination holds a region's vaccination center count and per-age-band
// dose counters.
type Vaccination struct {
	Centers  int64        `json:"centers"`
	AllAges  AgeBandDoses `json:"all_ages"`
	Adults   AgeBandDoses `json:"18+"`
	Teens    AgeBandDoses `json:"15-18"`
	Children AgeBandDoses `json:"12-14"`
}

// Bands returns the narrow age bands that roll up into AllAges, in a fixed
// order.
func (v *Vaccination) Bands() []*AgeBandDoses {
	return []*AgeBandDoses{&v.Adults, &v.Teens, &v.Children}
}

// DistrictStats carries per-district testing figures. Centers is a count
// and is summed across contributing rows; the percentage fields are rates
// and are averaged over Contributions instead.
type DistrictStats struct {
	Centers        int64   `json:"centers"`
	RATPercent     float64 `json:"rat_pc"`
	RTPCRPercent   float64 `json:"rtpcr_pc"`
	PositivityRate float64 `json:"positivity_rate"`

	// Contributions counts raw rows folded into this record. It drives the
	// sum-vs-average distinction during aggregation and is cleared when the
	// snapshot is sealed.
	Contributions int64 `json:"-"`
}

// Region is one node of the reporting hierarchy: the nation, a state, or
// the catch-all miscellaneous bucket. District-level figures hang off the
// Districts map keyed by canonical district name.
type Region struct {
	Code     string `json:"abbr"`
	Hindi    string `json:"hindi"`
	Helpline string `json:"helpline"`
	Donate   string `json:"donate"`

	Confirmed MetricBlock `json:"confirmed"`
	Active    MetricBlock `json:"active"`
	Recovered MetricBlock `json:"recovered"`
	Deaths    MetricBlock `json:"deaths"`

	Vaccination Vaccination `json:"vaccination"`

	Districts map[string]*DistrictStats `json:"districts"`
}

// RegionMeta is the static, per-region configuration part of a Region.
type RegionMeta struct {
	Name     string
	Code     string
	Hindi    string
	Helpline string
	Donate   string
}

// NewRegion builds an empty region record carrying the given metadata.
// All metric blocks start at the zero baseline.
func NewRegion(meta RegionMeta) *Region {
	return &Region{
		Code:      meta.Code,
		Hindi:     meta.Hindi,
		Helpline:  meta.Helpline,
		Donate:    meta.Donate,
		Districts: make(map[string]*DistrictStats),
	}
}

// Blocks returns the region's case metric blocks keyed by family name.
func (r *Region) Blocks() map[string]*MetricBlock {
	return map[string]*MetricBlock{
		"confirmed": &r.Confirmed,
		"active":    &r.Active,
		"recovered": &r.Recovered,
		"deaths":    &r.Deaths,
	}
}
