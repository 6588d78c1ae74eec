package freshness_test

import (
	"errors"
	"testing"
	"time"

	"github.com/covid-saarani/lipik/internal/domain/freshness"
	"github.com/covid-saarani/lipik/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func newSnapshot(confirmed int64) *model.Snapshot {
	snap := model.NewSnapshot(
		model.RegionMeta{Name: model.NationKey, Code: "IN"},
		model.RegionMeta{Name: model.MiscKey, Code: "misc"},
	)
	snap.Nation().Confirmed.Current = confirmed
	return snap
}

func TestArbitrate(t *testing.T) {
	Convey("Given an arbiter", t, func() {
		arbiter := freshness.New(time.UTC)

		Convey("When the primary total is strictly behind the secondary", func() {
			usePrimary := arbiter.Arbitrate(100, 150)

			Convey("Then the primary is stale and the secondary wins", func() {
				So(usePrimary, ShouldBeFalse)
			})
		})

		Convey("When the primary total is ahead or equal", func() {
			So(arbiter.Arbitrate(150, 100), ShouldBeTrue)
			So(arbiter.Arbitrate(150, 150), ShouldBeTrue)
		})
	})
}

func TestNominalDate(t *testing.T) {
	Convey("Given an arbiter with the default cutover hour", t, func() {
		arbiter := freshness.New(time.UTC)

		Convey("When fetching after the cutover", func() {
			now := time.Date(2022, 3, 14, 10, 0, 0, 0, time.UTC)

			Convey("Then the effective date is yesterday", func() {
				So(arbiter.NominalDate(now), ShouldEqual,
					time.Date(2022, 3, 13, 0, 0, 0, 0, time.UTC))
			})
		})

		Convey("When fetching before the cutover", func() {
			now := time.Date(2022, 3, 14, 6, 0, 0, 0, time.UTC)

			Convey("Then the effective date slips one more day back", func() {
				So(arbiter.NominalDate(now), ShouldEqual,
					time.Date(2022, 3, 12, 0, 0, 0, 0, time.UTC))
			})
		})
	})
}

func TestShiftIfStale(t *testing.T) {
	Convey("Given a composed snapshot and its predecessor", t, func() {
		arbiter := freshness.New(time.UTC)
		effective := time.Date(2022, 3, 13, 0, 0, 0, 0, time.UTC)

		Convey("When the headline metric repeats the previous cycle exactly", func() {
			date, shifted, err := arbiter.ShiftIfStale(newSnapshot(600), newSnapshot(600), effective)

			Convey("Then the effective date shifts one day back", func() {
				So(err, ShouldBeNil)
				So(shifted, ShouldBeTrue)
				So(date, ShouldEqual, effective.AddDate(0, 0, -1))
			})
		})

		Convey("When the headline metric moved", func() {
			date, shifted, err := arbiter.ShiftIfStale(newSnapshot(610), newSnapshot(600), effective)

			Convey("Then the effective date stands", func() {
				So(err, ShouldBeNil)
				So(shifted, ShouldBeFalse)
				So(date, ShouldEqual, effective)
			})
		})

		Convey("When there is no previous snapshot", func() {
			_, _, err := arbiter.ShiftIfStale(newSnapshot(610), nil, effective)

			Convey("Then the missing baseline is reported for the caller to tolerate", func() {
				So(errors.Is(err, freshness.ErrMissingBaseline), ShouldBeTrue)
			})
		})
	})
}

func TestAlreadyFetched(t *testing.T) {
	Convey("Given a stored snapshot fetched from the primary source", t, func() {
		arbiter := freshness.New(time.UTC)
		now := time.Date(2022, 3, 14, 10, 0, 0, 0, time.UTC)

		latest := newSnapshot(600)
		latest.Timestamps.Cases = &model.FamilyStamp{
			PrimarySource:   "mygov",
			LastFetchedUnix: time.Date(2022, 3, 14, 9, 0, 0, 0, time.UTC).Unix(),
		}

		Convey("When a new cycle starts in the same publication window", func() {
			So(arbiter.AlreadyFetched(latest, "mygov", now), ShouldBeTrue)
		})

		Convey("When the stored fetch belongs to an earlier window", func() {
			latest.Timestamps.Cases.LastFetchedUnix = time.Date(2022, 3, 13, 9, 0, 0, 0, time.UTC).Unix()
			So(arbiter.AlreadyFetched(latest, "mygov", now), ShouldBeFalse)
		})

		Convey("When the stored snapshot came from the secondary source", func() {
			latest.Timestamps.Cases.PrimarySource = "mohfw"
			So(arbiter.AlreadyFetched(latest, "mygov", now), ShouldBeFalse)
		})

		Convey("When there is no stored snapshot at all", func() {
			So(arbiter.AlreadyFetched(nil, "mygov", now), ShouldBeFalse)
		})
	})
}
