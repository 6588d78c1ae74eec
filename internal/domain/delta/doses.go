package delta

import "github.com/covid-saarani/lipik/internal/domain/model"

// RollUpDoses computes the derived dose counters of one region's
// vaccination record: each age band's all-doses line is the sum of its
// dose lines, and the all-ages band is the sum of the narrow bands.
// Source feeds only report the leaves.
func (e *Engine) RollUpDoses(v *model.Vaccination) {
	for _, band := range v.Bands() {
		rollUpBand(band)
	}

	v.AllAges = model.AgeBandDoses{}
	for _, band := range v.Bands() {
		addDoses(&v.AllAges.First, band.First)
		addDoses(&v.AllAges.Second, band.Second)
		addDoses(&v.AllAges.Third, band.Third)
	}
	rollUpBand(&v.AllAges)
}

// CheckDoseTotal cross-checks the rolled-up all-ages grand total against
// the source's own reported figures.
func (e *Engine) CheckDoseTotal(region string, v *model.Vaccination, reportedTotal, reportedNew int64) error {
	all := v.AllAges.AllDoses
	if diff := all.Total - reportedTotal; diff > e.tolerance || diff < -e.tolerance {
		return &InconsistentDeltaError{
			Region:   region,
			Metric:   "vaccination total doses",
			Reported: reportedTotal,
			Derived:  all.Total,
		}
	}
	if diff := all.New - reportedNew; diff > e.tolerance || diff < -e.tolerance {
		return &InconsistentDeltaError{
			Region:   region,
			Metric:   "vaccination new doses",
			Reported: reportedNew,
			Derived:  all.New,
		}
	}
	return nil
}

// CheckDoseCumulative cross-checks only the cumulative grand total,
// for sources that report no trustworthy 24-hour figure.
func (e *Engine) CheckDoseCumulative(region string, v *model.Vaccination, reportedTotal int64) error {
	all := v.AllAges.AllDoses
	if diff := all.Total - reportedTotal; diff > e.tolerance || diff < -e.tolerance {
		return &InconsistentDeltaError{
			Region:   region,
			Metric:   "vaccination total doses",
			Reported: reportedTotal,
			Derived:  all.Total,
		}
	}
	return nil
}

// FoldVaccination rebuilds the nation's vaccination record as the sum of
// all states', in sorted order. Center counts fold too.
func (e *Engine) FoldVaccination(snap *model.Snapshot) {
	nation := &snap.Nation().Vaccination
	*nation = model.Vaccination{}

	for _, name := range snap.StateNames() {
		v := &snap.Regions[name].Vaccination
		nation.Centers += v.Centers
		addBand(&nation.Adults, v.Adults)
		addBand(&nation.Teens, v.Teens)
		addBand(&nation.Children, v.Children)
	}
	e.RollUpDoses(nation)
}

func rollUpBand(band *model.AgeBandDoses) {
	band.AllDoses = model.DoseStats{}
	addDoses(&band.AllDoses, band.First)
	addDoses(&band.AllDoses, band.Second)
	addDoses(&band.AllDoses, band.Third)
}

func addDoses(dst *model.DoseStats, src model.DoseStats) {
	dst.Total += src.Total
	dst.New += src.New
}

func addBand(dst *model.AgeBandDoses, src model.AgeBandDoses) {
	addDoses(&dst.First, src.First)
	addDoses(&dst.Second, src.Second)
	addDoses(&dst.Third, src.Third)
}
