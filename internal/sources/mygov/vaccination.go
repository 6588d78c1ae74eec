package mygov

import (
	"encoding/json"
	"fmt"

	"github.com/covid-saarani/lipik/internal/domain/model"
	"github.com/covid-saarani/lipik/internal/domain/resolve"
	"github.com/covid-saarani/lipik/internal/sources/feed"
)

// VaccinationFeed mirrors the MyGov vaccine counts document. National
// figures sit at the top level under india_-prefixed keys (mostly); the
// per-state rows repeat the same shape without the prefix.
type VaccinationFeed struct {
	Day       string `json:"day"`
	UpdatedOn string `json:"updated_on"`

	TotalDoses     feed.Count `json:"india_total_doses"`
	PrevTotalDoses feed.Count `json:"india_last_total_doses"`

	AdultFirst      feed.Count `json:"india_dose1"`
	PrevAdultFirst  feed.Count `json:"india_last_dose1"`
	AdultSecond     feed.Count `json:"india_dose2"`
	PrevAdultSecond feed.Count `json:"india_last_dose2"`
	AdultThird      feed.Count `json:"india_dose3"`
	PrevAdultThird  feed.Count `json:"india_last_dose3"`

	// The 60+ precaution dose key never received the india_ prefix.
	Precaution     feed.Count `json:"precaution_dose"`
	PrevPrecaution feed.Count `json:"india_last_precaution_dose"`

	TeenFirst      feed.Count `json:"india_dose1_15_18"`
	PrevTeenFirst  feed.Count `json:"india_last_dose1_15_18"`
	TeenSecond     feed.Count `json:"india_dose2_15_18"`
	PrevTeenSecond feed.Count `json:"india_last_dose2_15_18"`

	ChildFirst      feed.Count `json:"india_dose1_12_14"`
	PrevChildFirst  feed.Count `json:"india_last_dose1_12_14"`
	ChildSecond     feed.Count `json:"india_dose2_12_14"`
	PrevChildSecond feed.Count `json:"india_last_dose2_12_14"`

	States []StateDoses `json:"vacc_st_data"`
}

// StateDoses is one state's vaccination row.
type StateDoses struct {
	Name string `json:"st_name"`

	TotalDoses     feed.Count `json:"total_doses"`
	PrevTotalDoses feed.Count `json:"last_total_doses"`

	AdultFirst      feed.Count `json:"dose1"`
	PrevAdultFirst  feed.Count `json:"last_dose1"`
	AdultSecond     feed.Count `json:"dose2"`
	PrevAdultSecond feed.Count `json:"last_dose2"`
	AdultThird      feed.Count `json:"dose3"`
	PrevAdultThird  feed.Count `json:"last_dose3"`

	Precaution     feed.Count `json:"precaution_dose"`
	PrevPrecaution feed.Count `json:"last_precaution_dose"`

	TeenFirst      feed.Count `json:"dose1_15_18"`
	PrevTeenFirst  feed.Count `json:"last_dose1_15_18"`
	TeenSecond     feed.Count `json:"dose2_15_18"`
	PrevTeenSecond feed.Count `json:"last_dose2_15_18"`

	ChildFirst      feed.Count `json:"dose1_12_14"`
	PrevChildFirst  feed.Count `json:"last_dose1_12_14"`
	ChildSecond     feed.Count `json:"dose2_12_14"`
	PrevChildSecond feed.Count `json:"last_dose2_12_14"`
}

// DecodeVaccination parses the raw vaccination payload.
func DecodeVaccination(data []byte) (*VaccinationFeed, error) {
	f := &VaccinationFeed{}
	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("%w: vaccination: %v", ErrBadFeed, err)
	}
	return f, nil
}

// doseCounters is the source-shape-independent set of leaf counters one
// scope (nation or state) reports.
type doseCounters struct {
	total, prevTotal           int64
	adult1, prevAdult1         int64
	adult2, prevAdult2         int64
	adult3, prevAdult3         int64
	precaution, prevPrecaution int64
	teen1, prevTeen1           int64
	teen2, prevTeen2           int64
	child1, prevChild1         int64
	child2, prevChild2         int64
}

func (f *VaccinationFeed) national() doseCounters {
	return doseCounters{
		total: f.TotalDoses.Int64(), prevTotal: f.PrevTotalDoses.Int64(),
		adult1: f.AdultFirst.Int64(), prevAdult1: f.PrevAdultFirst.Int64(),
		adult2: f.AdultSecond.Int64(), prevAdult2: f.PrevAdultSecond.Int64(),
		adult3: f.AdultThird.Int64(), prevAdult3: f.PrevAdultThird.Int64(),
		precaution: f.Precaution.Int64(), prevPrecaution: f.PrevPrecaution.Int64(),
		teen1: f.TeenFirst.Int64(), prevTeen1: f.PrevTeenFirst.Int64(),
		teen2: f.TeenSecond.Int64(), prevTeen2: f.PrevTeenSecond.Int64(),
		child1: f.ChildFirst.Int64(), prevChild1: f.PrevChildFirst.Int64(),
		child2: f.ChildSecond.Int64(), prevChild2: f.PrevChildSecond.Int64(),
	}
}

func (r *StateDoses) counters() doseCounters {
	return doseCounters{
		total: r.TotalDoses.Int64(), prevTotal: r.PrevTotalDoses.Int64(),
		adult1: r.AdultFirst.Int64(), prevAdult1: r.PrevAdultFirst.Int64(),
		adult2: r.AdultSecond.Int64(), prevAdult2: r.PrevAdultSecond.Int64(),
		adult3: r.AdultThird.Int64(), prevAdult3: r.PrevAdultThird.Int64(),
		precaution: r.Precaution.Int64(), prevPrecaution: r.PrevPrecaution.Int64(),
		teen1: r.TeenFirst.Int64(), prevTeen1: r.PrevTeenFirst.Int64(),
		teen2: r.TeenSecond.Int64(), prevTeen2: r.PrevTeenSecond.Int64(),
		child1: r.ChildFirst.Int64(), prevChild1: r.PrevChildFirst.Int64(),
		child2: r.ChildSecond.Int64(), prevChild2: r.PrevChildSecond.Int64(),
	}
}

// fillDoses writes one scope's leaf counters into a vaccination record,
// rolls up the derived lines and cross-checks the roll-up against the
// scope's own reported grand total. The 60+ precaution dose folds into
// the adult third dose.
func (s *Source) fillDoses(scope string, v *model.Vaccination, c doseCounters) error {
	v.Adults.First = model.DoseStats{Total: c.adult1, New: c.adult1 - c.prevAdult1}
	v.Adults.Second = model.DoseStats{Total: c.adult2, New: c.adult2 - c.prevAdult2}
	v.Adults.Third = model.DoseStats{
		Total: c.adult3 + c.precaution,
		New:   c.adult3 + c.precaution - c.prevAdult3 - c.prevPrecaution,
	}
	v.Teens.First = model.DoseStats{Total: c.teen1, New: c.teen1 - c.prevTeen1}
	v.Teens.Second = model.DoseStats{Total: c.teen2, New: c.teen2 - c.prevTeen2}
	v.Children.First = model.DoseStats{Total: c.child1, New: c.child1 - c.prevChild1}
	v.Children.Second = model.DoseStats{Total: c.child2, New: c.child2 - c.prevChild2}

	s.engine.RollUpDoses(v)
	return s.engine.CheckDoseTotal(scope, v, c.total, c.total-c.prevTotal)
}

// FillVaccination populates every state's vaccination record from the
// feed. State names occasionally drift from the canonical set, so each
// row goes through the resolver. The national record is folded from the
// states afterwards by the composer; the feed's own national figures are
// cross-checked there.
func (s *Source) FillVaccination(snap *model.Snapshot, f *VaccinationFeed, resolver *resolve.Resolver) error {
	for i := range f.States {
		row := &f.States[i]
		name, err := resolver.Resolve(row.Name)
		if err != nil {
			return fmt.Errorf("vaccination row %d: %w", i, err)
		}
		region, ok := snap.Regions[name]
		if !ok {
			return fmt.Errorf("%w: vaccination: unknown state %q", ErrBadFeed, name)
		}
		if err := s.fillDoses(name, &region.Vaccination, row.counters()); err != nil {
			return err
		}
	}
	return nil
}

// NationalDoseFigures exposes the feed's own national grand totals for
// the composer's post-fold cross-check.
func (f *VaccinationFeed) NationalDoseFigures() (total, fresh int64) {
	c := f.national()
	return c.total, c.total - c.prevTotal
}
