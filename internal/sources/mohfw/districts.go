package mohfw

import (
	"fmt"
	"strings"

	"github.com/covid-saarani/lipik/internal/domain/model"
	"github.com/covid-saarani/lipik/internal/domain/resolve"
	"github.com/covid-saarani/lipik/internal/domain/tabular"
)

// Sentinels ending each section's data run: a closing roll-up row, or
// "NA" padding filling out the remainder. Both appear title-cased after
// cell cleanup.
const (
	grandTotal = "Grand Total"
	naPadding  = "Na"
)

// FillDistricts validates the district positivity table and folds every
// data row into its district's record. A district reported under more
// than one section accumulates contributions and is averaged later by
// the delta engine. Districts absent from the seeded region lists are
// created as reported. Returns the table's reporting week label.
func (s *Source) FillDistricts(snap *model.Snapshot, table tabular.RawTable, states *resolve.Resolver) (string, error) {
	view, err := tabular.Validate(table, DistrictLayouts()...)
	if err != nil {
		return "", err
	}
	week, err := view.Field("week")
	if err != nil {
		return "", err
	}
	week = strings.Join(strings.Fields(week), " ")

	walker := districtWalker{
		snap:      snap,
		states:    states,
		engine:    s,
		resolvers: make(map[string]*resolve.Resolver),
	}
	for _, col := range districtSectionCols {
		if err := walker.section(view, col); err != nil {
			return week, err
		}
	}
	return week, nil
}

// districtWalker carries the per-run state of one table walk: the
// current region of a section (the state cell is merged across its
// district rows and only present on the first) and lazily built
// per-state district resolvers.
type districtWalker struct {
	snap      *model.Snapshot
	states    *resolve.Resolver
	engine    *Source
	resolvers map[string]*resolve.Resolver
}

func (w *districtWalker) section(view *tabular.View, col int) error {
	var region *model.Region
	var state string

	for row := districtDataRow; row < view.Rows(); row++ {
		if cell := strings.TrimSpace(view.Cell(row, col)); cell != "" {
			name := titleCase(cell)
			if name == grandTotal || name == naPadding {
				return nil
			}
			resolved, err := w.states.Resolve(name)
			if err != nil {
				return fmt.Errorf("district table row %d: %w", row, err)
			}
			state, region = resolved, w.snap.Regions[resolved]
			if region == nil {
				return fmt.Errorf("%w: district table: unknown state %q", ErrBadFeed, resolved)
			}
		}

		district := titleCase(strings.TrimSpace(view.Cell(row, col+1)))
		if district == grandTotal {
			return nil
		}
		if district == "" || district == naPadding || region == nil {
			continue
		}
		district = w.resolveDistrict(district, state, region)

		rat, err := tabular.ParseRate(view.Cell(row, col+2))
		if err != nil {
			return fmt.Errorf("district table row %d (%s): %w", row, district, err)
		}
		rtpcr, err := tabular.ParseRate(view.Cell(row, col+3))
		if err != nil {
			return fmt.Errorf("district table row %d (%s): %w", row, district, err)
		}
		positivity, err := tabular.ParseRate(view.Cell(row, col+4))
		if err != nil {
			return fmt.Errorf("district table row %d (%s): %w", row, district, err)
		}

		d := region.Districts[district]
		if d == nil {
			d = &model.DistrictStats{}
			region.Districts[district] = d
		}
		w.engine.engine.AddDistrictRow(d, rat, rtpcr, positivity)
	}
	return nil
}

// resolveDistrict maps one reported district name onto the seeded list:
// exact after normalization, then with the state name suffix some rows
// carry stripped, then fuzzily. A genuinely new district is kept under
// its reported name so no row is dropped.
func (w *districtWalker) resolveDistrict(district, state string, region *model.Region) string {
	district = resolve.NormalizeDistrict(district, state)
	if _, ok := region.Districts[district]; ok {
		return district
	}
	if trimmed := strings.TrimSuffix(district, " "+state); trimmed != district {
		if _, ok := region.Districts[trimmed]; ok {
			return trimmed
		}
		district = trimmed
	}
	if len(region.Districts) == 0 {
		return district
	}

	resolver := w.resolvers[state]
	if resolver == nil {
		known := make([]string, 0, len(region.Districts))
		for name := range region.Districts {
			known = append(known, name)
		}
		resolver = resolve.New(known)
		w.resolvers[state] = resolver
	}
	if match, err := resolver.Resolve(district); err == nil {
		return match
	}
	return district
}

// titleCase title-cases each space-separated word, keeping the
// conjunction lowercase so names match the seeded lists. The table
// reports names in full uppercase.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		word = strings.ToLower(word)
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	out := strings.Join(words, " ")
	return strings.ReplaceAll(out, " And ", " and ")
}
