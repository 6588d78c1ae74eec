package delta

import (
	"sort"

	"github.com/covid-saarani/lipik/internal/domain/model"
)

// FoldStates rebuilds the nation-level case blocks as the sum of every
// state's blocks, iterating states in sorted name order. It must run
// strictly after all states are fully populated. National ratios are
// recomputed from the folded totals.
func (e *Engine) FoldStates(snap *model.Snapshot) error {
	nation := snap.Nation()
	states := snap.States()

	names := make([]string, 0, len(states))
	for name := range states {
		names = append(names, name)
	}
	sort.Strings(names)

	nation.Confirmed = model.MetricBlock{}
	nation.Active = model.MetricBlock{}
	nation.Recovered = model.MetricBlock{}
	nation.Deaths = model.MetricBlock{Reconciled: nation.Deaths.Reconciled}

	for _, name := range names {
		state := states[name]
		nation.Confirmed.Add(state.Confirmed)
		nation.Active.Add(state.Active)
		nation.Recovered.Add(state.Recovered)
		nation.Deaths.Add(state.Deaths)
	}
	return e.SetRatios(nation)
}

// CheckNationalTotal cross-checks a source's own national headline count
// against the folded nation-level figure for the same metric.
func (e *Engine) CheckNationalTotal(snap *model.Snapshot, metric string, reported int64) error {
	block, ok := snap.Nation().Blocks()[metric]
	if !ok || reported == 0 {
		return nil
	}
	if diff := block.Current - reported; diff > e.tolerance || diff < -e.tolerance {
		return &InconsistentDeltaError{
			Region:   model.NationKey,
			Metric:   metric,
			Reported: reported,
			Derived:  block.Current,
		}
	}
	return nil
}

// AddDistrictRow folds one raw table row into a district record. Counts
// sum; the rate fields accumulate and are averaged over the contribution
// count when the district is finalized, because rates are not additive.
func (e *Engine) AddDistrictRow(d *model.DistrictStats, rat, rtpcr, positivity float64) {
	d.RATPercent += rat
	d.RTPCRPercent += rtpcr
	d.PositivityRate += positivity
	d.Contributions++
}

// FinalizeDistricts averages multi-row districts in place. Districts with
// a single contributing row keep their figures as reported.
func (e *Engine) FinalizeDistricts(region *model.Region) {
	for _, d := range region.Districts {
		if n := d.Contributions; n > 1 {
			d.RATPercent = Round(d.RATPercent / float64(n))
			d.RTPCRPercent = Round(d.RTPCRPercent / float64(n))
			d.PositivityRate = Round(d.PositivityRate / float64(n))
			d.Contributions = 1
		}
	}
}

// AggregateKey names the synthetic roll-up entry stored beside real
// districts in each region's district map.
const AggregateKey = "Aggregate"

// FoldDistricts computes each state's district aggregate and folds the
// per-state sums into the national aggregate. States are visited in
// sorted order and each state's districts likewise, keeping the result
// deterministic. The miscellaneous bucket carries no districts but
// still gets the zeroed aggregate entry, so every published region has
// one. Must run after FinalizeDistricts on every state.
func (e *Engine) FoldDistricts(snap *model.Snapshot) {
	nation := snap.Nation()
	natAgg := &model.DistrictStats{}

	for _, name := range append(snap.StateNames(), model.MiscKey) {
		state := snap.Regions[name]
		stateAgg := &model.DistrictStats{}

		if len(state.Districts) == 0 {
			state.Districts[AggregateKey] = stateAgg
			continue
		}

		districts := make([]string, 0, len(state.Districts))
		for district := range state.Districts {
			districts = append(districts, district)
		}
		sort.Strings(districts)

		for _, district := range districts {
			d := state.Districts[district]
			stateAgg.Centers += d.Centers
			e.AddDistrictRow(stateAgg, d.RATPercent, d.RTPCRPercent, d.PositivityRate)
		}

		natAgg.Centers += stateAgg.Centers
		natAgg.RATPercent += stateAgg.RATPercent
		natAgg.RTPCRPercent += stateAgg.RTPCRPercent
		natAgg.PositivityRate += stateAgg.PositivityRate
		natAgg.Contributions += stateAgg.Contributions

		e.averageAggregate(stateAgg)
		state.Districts[AggregateKey] = stateAgg
	}

	e.averageAggregate(natAgg)
	nation.Districts[AggregateKey] = natAgg
}

// averageAggregate turns accumulated rate sums into averages over the
// number of contributing districts.
func (e *Engine) averageAggregate(agg *model.DistrictStats) {
	n := agg.Contributions
	if n == 0 {
		return
	}
	agg.RATPercent = Round(agg.RATPercent / float64(n))
	agg.RTPCRPercent = Round(agg.RTPCRPercent / float64(n))
	agg.PositivityRate = Round(agg.PositivityRate / float64(n))
}
