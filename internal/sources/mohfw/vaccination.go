package mohfw

import (
	"fmt"
	"strings"

	"github.com/covid-saarani/lipik/internal/domain/model"
	"github.com/covid-saarani/lipik/internal/domain/resolve"
	"github.com/covid-saarani/lipik/internal/domain/tabular"
)

// NationalDoseFigures are the summary table's own grand totals, kept for
// the composer's post-fold cross-check.
type NationalDoseFigures struct {
	AdultFirst  model.DoseStats
	AdultSecond model.DoseStats
	AdultThird  model.DoseStats
	TeenFirst   model.DoseStats
}

// Total sums the cumulative doses across all reported lines.
func (n NationalDoseFigures) Total() int64 {
	return n.AdultFirst.Total + n.AdultSecond.Total + n.AdultThird.Total + n.TeenFirst.Total
}

// parseNational reads the validated national summary. The v1 variant
// predates the teen band and precaution dose; those lines stay zero.
func parseNational(view *tabular.View) (NationalDoseFigures, error) {
	var figures NationalDoseFigures

	totals, err := view.Lines("adult_doses_total")
	if err != nil {
		return figures, err
	}
	news, err := view.Lines("adult_doses_new")
	if err != nil {
		return figures, err
	}
	if len(totals) < 2 || len(news) < 2 {
		return figures, fmt.Errorf("%w: national summary: stacked dose cells too short", ErrBadFeed)
	}

	if figures.AdultFirst.Total, err = tabular.ParseCount(totals[0]); err != nil {
		return figures, err
	}
	if figures.AdultSecond.Total, err = tabular.ParseCount(totals[1]); err != nil {
		return figures, err
	}
	if figures.AdultFirst.New, err = embeddedDelta(news[0]); err != nil {
		return figures, err
	}
	if figures.AdultSecond.New, err = embeddedDelta(news[1]); err != nil {
		return figures, err
	}

	if view.Layout() != nationalVaccinationV2.Name {
		return figures, nil
	}

	if figures.TeenFirst.Total, err = view.Count("teen_first_total"); err != nil {
		return figures, err
	}
	if figures.AdultThird.Total, err = view.Count("adult_third_total"); err != nil {
		return figures, err
	}
	teenNew, err := view.Field("teen_first_new")
	if err != nil {
		return figures, err
	}
	if figures.TeenFirst.New, err = embeddedDelta(teenNew); err != nil {
		return figures, err
	}
	thirdNew, err := view.Field("adult_third_new")
	if err != nil {
		return figures, err
	}
	figures.AdultThird.New, err = embeddedDelta(thirdNew)
	return figures, err
}

func embeddedDelta(cell string) (int64, error) {
	n, ok, err := tabular.ExtractDelta(cell)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: no embedded 24-hour delta in %q", ErrBadFeed, cell)
	}
	return n, nil
}

// FillVaccination validates both extracted tables and populates every
// state's vaccination totals. The 24-hour figures are not in the state
// table; they are derived against the previous snapshot when one is
// supplied, and left at the flagged zero baseline otherwise. Returns
// the summary table's own figures for the composer's cross-check.
func (s *Source) FillVaccination(snap *model.Snapshot, national, states tabular.RawTable, prev *model.Snapshot, resolver *resolve.Resolver) (NationalDoseFigures, error) {
	natView, err := tabular.Validate(national, NationalVaccinationLayouts()...)
	if err != nil {
		return NationalDoseFigures{}, err
	}
	figures, err := parseNational(natView)
	if err != nil {
		return NationalDoseFigures{}, err
	}

	stateView, err := tabular.Validate(states, StateVaccinationLayouts()...)
	if err != nil {
		return NationalDoseFigures{}, err
	}

	for i := stateRowFirst; i <= stateRowLast; i++ {
		// Merged cells sometimes split the name across two columns,
		// with a stray serial number glued on.
		raw := stateView.Cell(i, stateColName1) + stateView.Cell(i, stateColName2)
		raw = strings.Trim(raw, "0123456789. \n")
		name, err := resolver.Resolve(raw)
		if err != nil {
			return figures, fmt.Errorf("vaccination table row %d: %w", i, err)
		}
		region := snap.Regions[name]
		if region == nil {
			return figures, fmt.Errorf("%w: vaccination table: unknown state %q", ErrBadFeed, name)
		}

		v := &region.Vaccination
		if v.Adults.First.Total, err = tabular.ParseCount(stateView.Cell(i, stateColAdultFirst)); err != nil {
			return figures, fmt.Errorf("vaccination table row %d: %w", i, err)
		}
		if v.Adults.Second.Total, err = tabular.ParseCount(stateView.Cell(i, stateColAdultSec)); err != nil {
			return figures, fmt.Errorf("vaccination table row %d: %w", i, err)
		}
		if v.Adults.Third.Total, err = tabular.ParseCount(stateView.Cell(i, stateColAdultThird)); err != nil {
			return figures, fmt.Errorf("vaccination table row %d: %w", i, err)
		}
		if v.Teens.First.Total, err = tabular.ParseCount(stateView.Cell(i, stateColTeenFirst)); err != nil {
			return figures, fmt.Errorf("vaccination table row %d: %w", i, err)
		}

		s.deriveNewDoses(name, v, prev)
		s.engine.RollUpDoses(v)
	}
	return figures, nil
}

// deriveNewDoses computes 24-hour figures against the previous
// snapshot's totals for the same state.
func (s *Source) deriveNewDoses(name string, v *model.Vaccination, prev *model.Snapshot) {
	if prev == nil {
		return
	}
	prior, ok := prev.Regions[name]
	if !ok {
		return
	}
	pv := &prior.Vaccination
	v.Adults.First.New = v.Adults.First.Total - pv.Adults.First.Total
	v.Adults.Second.New = v.Adults.Second.Total - pv.Adults.Second.Total
	v.Adults.Third.New = v.Adults.Third.Total - pv.Adults.Third.Total
	v.Teens.First.New = v.Teens.First.Total - pv.Teens.First.Total
}
