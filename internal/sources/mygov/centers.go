package mygov

import (
	"encoding/json"
	"fmt"

	"github.com/covid-saarani/lipik/internal/domain/model"
	"github.com/covid-saarani/lipik/internal/domain/resolve"
	"github.com/covid-saarani/lipik/internal/sources/feed"
)

// DecodeCenters parses a vaccination centers payload, used for both the
// state-level and district-level feeds.
func DecodeCenters(data []byte) ([]feed.CenterRow, error) {
	var rows []feed.CenterRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: centers: %v", ErrBadFeed, err)
	}
	return rows, nil
}

// FillStateCenters adds each row's center count to its state. Multiple
// rows per state sum; the national count is folded from states later.
func (s *Source) FillStateCenters(snap *model.Snapshot, rows []feed.CenterRow, resolver *resolve.Resolver) error {
	for i, row := range rows {
		name, err := resolver.Resolve(row.StateName)
		if err != nil {
			return fmt.Errorf("centers row %d: %w", i, err)
		}
		region, ok := snap.Regions[name]
		if !ok {
			return fmt.Errorf("%w: centers: unknown state %q", ErrBadFeed, name)
		}
		region.Vaccination.Centers += row.Centers.Int64()
	}
	return nil
}

// FillDistrictCenters adds each row's center count to its district.
// Districts missing from the seeded lists are created: a few territories
// report districts here that the case feeds never mention.
func (s *Source) FillDistrictCenters(snap *model.Snapshot, rows []feed.CenterRow, resolver *resolve.Resolver) error {
	for i, row := range rows {
		state, err := resolver.Resolve(row.StateName)
		if err != nil {
			return fmt.Errorf("district centers row %d: %w", i, err)
		}
		region, ok := snap.Regions[state]
		if !ok {
			return fmt.Errorf("%w: district centers: unknown state %q", ErrBadFeed, state)
		}

		district := resolve.NormalizeDistrict(row.DistrictName, state)
		d := region.Districts[district]
		if d == nil {
			d = &model.DistrictStats{}
			region.Districts[district] = d
		}
		d.Centers += row.Centers.Int64()
	}
	return nil
}
