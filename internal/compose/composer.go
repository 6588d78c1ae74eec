// Package compose runs one reporting cycle end to end: fetch both
// sources' documents, arbitrate freshness, fill and fold every metric
// family, cross-check the aggregates, and publish the sealed snapshot.
package compose

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/covid-saarani/lipik/internal/adapters/fetch"
	"github.com/covid-saarani/lipik/internal/adapters/regions"
	"github.com/covid-saarani/lipik/internal/adapters/store"
	"github.com/covid-saarani/lipik/internal/domain/delta"
	"github.com/covid-saarani/lipik/internal/domain/freshness"
	"github.com/covid-saarani/lipik/internal/domain/model"
	"github.com/covid-saarani/lipik/internal/domain/resolve"
	"github.com/covid-saarani/lipik/internal/domain/tabular"
	"github.com/covid-saarani/lipik/internal/sources/feed"
	"github.com/covid-saarani/lipik/internal/sources/mohfw"
	"github.com/covid-saarani/lipik/internal/sources/mygov"
	"github.com/covid-saarani/lipik/pkg/logger"
	"github.com/covid-saarani/lipik/pkg/metrics"
)

// Composer owns the collaborators of a reporting cycle.
type Composer struct {
	fetcher  fetch.Fetcher
	archive  store.Store
	registry *regions.Registry

	resolver *resolve.Resolver
	engine   *delta.Engine
	arbiter  *freshness.Arbiter
	mygov    *mygov.Source
	mohfw    *mohfw.Source

	loc           *time.Location
	cutoverHour   int
	minConfidence float64
	tolerance     int64

	now func() time.Time
	log logger.Logger
}

// New wires a Composer around its adapters. The registry supplies the
// canonical state set for name resolution.
func New(fetcher fetch.Fetcher, archive store.Store, registry *regions.Registry, opts ...Option) *Composer {
	c := &Composer{
		fetcher:  fetcher,
		archive:  archive,
		registry: registry,

		// IST, fixed; the publishers never observe DST.
		loc:           time.FixedZone("IST", 5*3600+30*60),
		cutoverHour:   freshness.DefaultCutoverHour,
		minConfidence: resolve.DefaultMinConfidence,

		now: time.Now,
		log: logger.Named("compose"),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.resolver = resolve.New(registry.StateNames(),
		resolve.WithMinConfidence(c.minConfidence),
		resolve.WithFuzzyObserver(metrics.RecordNameResolvedFuzzy),
	)
	c.engine = delta.New(delta.WithTolerance(c.tolerance))
	c.arbiter = freshness.New(c.loc, freshness.WithCutoverHour(c.cutoverHour))
	c.mygov = mygov.New(c.engine)
	c.mohfw = mohfw.New(c.engine)
	return c
}

// Run executes one reporting cycle and returns the published snapshot.
// A cycle whose publication was already captured returns
// freshness.ErrAlreadyFetched and publishes nothing.
func (c *Composer) Run(ctx context.Context) (*model.Snapshot, error) {
	started := c.now()
	snap, err := c.run(ctx, started)
	metrics.RecordCycleDuration(c.now().Sub(started).Seconds())

	switch {
	case err == nil:
		metrics.RecordCycleCompleted()
	case errors.Is(err, freshness.ErrAlreadyFetched):
		metrics.RecordCycleSkipped()
	default:
		c.observeFailure(err)
		metrics.RecordCycleError()
	}
	return snap, err
}

func (c *Composer) run(ctx context.Context, started time.Time) (*model.Snapshot, error) {
	prev, err := c.archive.Latest(ctx)
	if errors.Is(err, store.ErrNotFound) {
		c.log.Warn(ctx, "no previous snapshot, baseline figures will be flagged")
		prev = nil
	} else if err != nil {
		return nil, fmt.Errorf("loading previous snapshot: %w", err)
	}

	if c.arbiter.AlreadyFetched(prev, feed.Primary, started) {
		c.log.Info(ctx, "cycle already captured", logger.String("source", feed.Primary))
		return nil, freshness.ErrAlreadyFetched
	}

	payloads, err := fetch.All(ctx, c.fetcher)
	if err != nil {
		return nil, fmt.Errorf("fetching documents: %w", err)
	}

	casesFeed, err := mygov.DecodeCases(payloads.MyGovCases)
	if err != nil {
		return nil, err
	}
	mohfwRows, err := mohfw.DecodeCases(payloads.MoHFWCases)
	if err != nil {
		return nil, err
	}

	snap := c.registry.NewSnapshot()
	if err := c.mygov.SeedRegions(snap, casesFeed); err != nil {
		return nil, err
	}

	primaryTotal := casesFeed.NationalConfirmed()
	secondaryTotal, err := mohfw.NationalConfirmed(mohfwRows)
	if err != nil {
		return nil, err
	}
	usePrimary := c.arbiter.Arbitrate(primaryTotal, secondaryTotal)
	metrics.UpdatePrimaryAuthoritative(usePrimary)
	c.log.Info(ctx, "freshness arbitrated",
		logger.Int64("primary_confirmed", primaryTotal),
		logger.Int64("secondary_confirmed", secondaryTotal),
		logger.Any("use_primary", usePrimary))

	if err := c.fillCases(snap, casesFeed, mohfwRows, usePrimary); err != nil {
		return nil, err
	}
	if err := c.fillCenters(snap, payloads); err != nil {
		return nil, err
	}

	vaccStamp, err := c.fillVaccination(snap, prev, payloads, usePrimary, started)
	if err != nil {
		return nil, err
	}
	week, err := c.fillDistricts(snap, payloads)
	if err != nil {
		return nil, err
	}

	effective := c.arbiter.NominalDate(started)
	effective, shifted, err := c.arbiter.ShiftIfStale(snap, prev, effective)
	if err != nil && !errors.Is(err, freshness.ErrMissingBaseline) {
		return nil, err
	}
	if shifted {
		c.log.Warn(ctx, "upstream figures unchanged, effective date shifted back",
			logger.String("date", effective.Format(model.DateFormat)))
	}

	c.stamp(snap, casesFeed, vaccStamp, week, usePrimary, effective, started)

	if err := snap.Seal(); err != nil {
		return nil, err
	}
	if err := c.archive.Save(ctx, snap, effective); err != nil {
		return nil, fmt.Errorf("publishing snapshot: %w", err)
	}
	if err := c.archive.SaveDashboard(ctx, snap); err != nil {
		return nil, fmt.Errorf("publishing dashboard: %w", err)
	}

	metrics.UpdateSnapshotLastPublished(started.Unix())
	metrics.UpdateRegionsComposed(len(snap.Regions))
	c.log.Info(ctx, "snapshot published",
		logger.String("run_id", snap.Timestamps.RunID),
		logger.String("date", effective.Format(model.DateFormat)),
		logger.Int("regions", len(snap.Regions)))
	return snap, nil
}

// fillCases populates the case blocks from the authoritative source,
// folds the nation from the states, and cross-checks the fold against
// the sources' own headline totals. MoHFW's death reconciliation figure
// is taken regardless of who won.
func (c *Composer) fillCases(snap *model.Snapshot, casesFeed *mygov.CasesFeed, mohfwRows []mohfw.CasesRow, usePrimary bool) error {
	if usePrimary {
		if err := c.mygov.FillCases(snap, casesFeed); err != nil {
			return err
		}
		if err := c.mohfw.FillCases(snap, mohfwRows, c.resolver, true); err != nil {
			return err
		}
	} else {
		if err := c.mohfw.FillCases(snap, mohfwRows, c.resolver, false); err != nil {
			return err
		}
	}

	if err := c.engine.FoldStates(snap); err != nil {
		return err
	}

	reported := casesFeed.NationalConfirmed()
	if !usePrimary {
		reported, _ = mohfw.NationalConfirmed(mohfwRows)
	}
	return c.engine.CheckNationalTotal(snap, "confirmed", reported)
}

func (c *Composer) fillCenters(snap *model.Snapshot, payloads *fetch.Payloads) error {
	stateRows, err := mygov.DecodeCenters(payloads.MyGovStateCenters)
	if err != nil {
		return err
	}
	if err := c.mygov.FillStateCenters(snap, stateRows, c.resolver); err != nil {
		return err
	}

	districtRows, err := mygov.DecodeCenters(payloads.MyGovDistrictCenters)
	if err != nil {
		return err
	}
	return c.mygov.FillDistrictCenters(snap, districtRows, c.resolver)
}

// fillVaccination fills dose figures from the authoritative source and
// folds the nation. MyGov carries its own 24-hour figures; the MoHFW
// tables do not, so their news are derived against the previous
// snapshot, gated on that snapshot actually being one day old. Returns
// the source's "as on" text for the family stamp.
func (c *Composer) fillVaccination(snap *model.Snapshot, prev *model.Snapshot, payloads *fetch.Payloads, usePrimary bool, started time.Time) (string, error) {
	if usePrimary {
		vf, err := mygov.DecodeVaccination(payloads.MyGovVaccination)
		if err != nil {
			return "", err
		}
		if err := c.mygov.FillVaccination(snap, vf, c.resolver); err != nil {
			return "", err
		}
		c.engine.FoldVaccination(snap)

		total, fresh := vf.NationalDoseFigures()
		if err := c.engine.CheckDoseTotal(model.NationKey, &snap.Nation().Vaccination, total, fresh); err != nil {
			return "", err
		}
		return vf.UpdatedOn, nil
	}

	baseline := prev
	if baseline != nil {
		stamp := baseline.Timestamps.Vaccination
		yesterday := c.arbiter.NominalDate(started).AddDate(0, 0, -1)
		if stamp == nil || stamp.Date != yesterday.Format(model.DateFormat) {
			baseline = nil
		}
	}

	figures, err := c.mohfw.FillVaccination(snap,
		payloads.MoHFWVaccinationNational, payloads.MoHFWVaccinationStates,
		baseline, c.resolver)
	if err != nil {
		return "", err
	}
	c.engine.FoldVaccination(snap)
	if err := c.engine.CheckDoseCumulative(model.NationKey, &snap.Nation().Vaccination, figures.Total()); err != nil {
		return "", err
	}

	// The tables carry no machine-readable timestamp of their own; the
	// ministry publishes them daily at the cutover hour.
	published := c.arbiter.NominalDate(started).AddDate(0, 0, 1)
	asOn := time.Date(published.Year(), published.Month(), published.Day(),
		c.cutoverHour, 0, 0, 0, c.loc).Format(model.DateFormat + ", 15:04 MST")
	return asOn, nil
}

func (c *Composer) fillDistricts(snap *model.Snapshot, payloads *fetch.Payloads) (string, error) {
	week, err := c.mohfw.FillDistricts(snap, payloads.MoHFWDistricts, c.resolver)
	if err != nil {
		return "", err
	}
	for _, region := range snap.Regions {
		c.engine.FinalizeDistricts(region)
	}
	c.engine.FoldDistricts(snap)
	return week, nil
}

// stamp writes the provenance section. Cases and vaccination carry the
// arbitrated source; the district table only exists on MoHFW.
func (c *Composer) stamp(snap *model.Snapshot, casesFeed *mygov.CasesFeed, vaccAsOn, week string, usePrimary bool, effective, started time.Time) {
	source := feed.Primary
	if !usePrimary {
		source = feed.Secondary
	}
	date := effective.Format(model.DateFormat)
	fetched := started.Unix()

	snap.Timestamps = model.Timestamps{
		RunID: uuid.NewString(),
		Cases: &model.FamilyStamp{
			PrimarySource:   source,
			Date:            date,
			AsOn:            casesFeed.AsOn,
			LastUpdatedUnix: casesFeed.UpdatedOn.Int64(),
			LastFetchedUnix: fetched,
		},
		Vaccination: &model.FamilyStamp{
			PrimarySource:   source,
			Date:            date,
			AsOn:            vaccAsOn,
			LastFetchedUnix: fetched,
		},
		Districts: &model.FamilyStamp{
			PrimarySource:   feed.Secondary,
			Date:            date,
			Week:            week,
			LastFetchedUnix: fetched,
		},
	}
}

// observeFailure feeds the failure taxonomy into metrics.
func (c *Composer) observeFailure(err error) {
	var mismatch *tabular.SchemaMismatchError
	if errors.As(err, &mismatch) {
		metrics.RecordSchemaMismatch(mismatch.Layout)
	}
	var noLayout *tabular.NoLayoutError
	if errors.As(err, &noLayout) {
		for _, f := range noLayout.Failures {
			metrics.RecordSchemaMismatch(f.Layout)
		}
	}
	var inconsistent *delta.InconsistentDeltaError
	if errors.As(err, &inconsistent) {
		metrics.RecordDeltaInconsistency()
	}
	if errors.Is(err, resolve.ErrNoMatch) {
		metrics.RecordNameResolutionFailure()
	}
}
