// Package fetch retrieves the upstream documents one reporting cycle
// needs: JSON feeds, and tabular documents delivered pre-extracted as
// cell grids. Everything is fetched up front so the composer works on a
// consistent set even when upstream changes mid-cycle.
package fetch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/covid-saarani/lipik/internal/domain/tabular"
)

// Key identifies one upstream document.
type Key string

// The documents of one reporting cycle.
const (
	KeyMyGovCases           Key = "mygov_cases"
	KeyMyGovVaccination     Key = "mygov_vaccination"
	KeyMyGovStateCenters    Key = "mygov_state_centers"
	KeyMyGovDistrictCenters Key = "mygov_district_centers"
	KeyMoHFWCases           Key = "mohfw_cases"
	KeyMoHFWVaccinationNat  Key = "mohfw_vaccination_national"
	KeyMoHFWVaccinationSt   Key = "mohfw_vaccination_states"
	KeyMoHFWDistricts       Key = "mohfw_districts"
)

// Fetcher retrieves upstream documents by key.
type Fetcher interface {
	// JSON fetches a raw JSON payload.
	JSON(ctx context.Context, key Key) ([]byte, error)
	// Table fetches a pre-extracted tabular document as a cell grid.
	Table(ctx context.Context, key Key) (tabular.RawTable, error)
}

// Payloads holds every document of one cycle, fetched together.
type Payloads struct {
	MyGovCases           []byte
	MyGovVaccination     []byte
	MyGovStateCenters    []byte
	MyGovDistrictCenters []byte
	MoHFWCases           []byte

	MoHFWVaccinationNational tabular.RawTable
	MoHFWVaccinationStates   tabular.RawTable
	MoHFWDistricts           tabular.RawTable
}

// All fetches every document of one cycle concurrently. The first
// failure cancels the remaining sub-fetches.
func All(ctx context.Context, f Fetcher) (*Payloads, error) {
	var p Payloads
	g, ctx := errgroup.WithContext(ctx)

	jsonDocs := []struct {
		key Key
		dst *[]byte
	}{
		{KeyMyGovCases, &p.MyGovCases},
		{KeyMyGovVaccination, &p.MyGovVaccination},
		{KeyMyGovStateCenters, &p.MyGovStateCenters},
		{KeyMyGovDistrictCenters, &p.MyGovDistrictCenters},
		{KeyMoHFWCases, &p.MoHFWCases},
	}
	for _, doc := range jsonDocs {
		doc := doc
		g.Go(func() error {
			data, err := f.JSON(ctx, doc.key)
			if err != nil {
				return err
			}
			*doc.dst = data
			return nil
		})
	}

	tableDocs := []struct {
		key Key
		dst *tabular.RawTable
	}{
		{KeyMoHFWVaccinationNat, &p.MoHFWVaccinationNational},
		{KeyMoHFWVaccinationSt, &p.MoHFWVaccinationStates},
		{KeyMoHFWDistricts, &p.MoHFWDistricts},
	}
	for _, doc := range tableDocs {
		doc := doc
		g.Go(func() error {
			table, err := f.Table(ctx, doc.key)
			if err != nil {
				return err
			}
			*doc.dst = table
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &p, nil
}
