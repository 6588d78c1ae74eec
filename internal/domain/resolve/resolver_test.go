package resolve_test

import (
	"errors"
	"testing"

	"github.com/covid-saarani/lipik/internal/domain/resolve"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolver(t *testing.T) {
	Convey("Given a resolver over the state set", t, func() {
		canon := []string{
			"Telangana",
			"Kerala",
			"Bihar",
			"Andaman and Nicobar Islands",
			"West Bengal",
		}
		r := resolve.New(canon)

		Convey("When the candidate is already canonical", func() {
			name, err := r.Resolve("Kerala")

			Convey("Then it is returned unchanged", func() {
				So(err, ShouldBeNil)
				So(name, ShouldEqual, "Kerala")
			})
		})

		Convey("When the candidate has a typo", func() {
			name, err := r.Resolve("Telengana")

			Convey("Then similarity scoring finds the canonical name", func() {
				So(err, ShouldBeNil)
				So(name, ShouldEqual, "Telangana")
			})
		})

		Convey("When the candidate is a shortened form", func() {
			name, err := r.Resolve("Andaman and Nicobar")

			Convey("Then it resolves to the full name", func() {
				So(err, ShouldBeNil)
				So(name, ShouldEqual, "Andaman and Nicobar Islands")
			})
		})

		Convey("When only a vowel romanization differs", func() {
			name, err := r.Resolve("Keraala")

			Convey("Then the canonical spelling is still found", func() {
				So(err, ShouldBeNil)
				So(name, ShouldEqual, "Kerala")
			})
		})

		Convey("When nothing overlaps with the canonical set", func() {
			_, err := r.Resolve("Xqzwv")

			Convey("Then resolution fails with ErrNoMatch", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, resolve.ErrNoMatch), ShouldBeTrue)
			})
		})

		Convey("When the candidate is empty", func() {
			_, err := r.Resolve("   ")

			Convey("Then it is rejected as a caller error", func() {
				So(errors.Is(err, resolve.ErrEmptyCandidate), ShouldBeTrue)
			})
		})

		Convey("When the same candidate is resolved twice", func() {
			first, err1 := r.Resolve("Telengana")
			second, err2 := r.Resolve("Telengana")

			Convey("Then memoization does not alter the outcome", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first, ShouldEqual, second)
			})
		})
	})

	Convey("Given a resolver with a raised confidence threshold", t, func() {
		r := resolve.New([]string{"Telangana"}, resolve.WithMinConfidence(0.99))

		Convey("When a near miss is resolved", func() {
			_, err := r.Resolve("Telengana")

			Convey("Then the stricter threshold rejects it", func() {
				So(errors.Is(err, resolve.ErrNoMatch), ShouldBeTrue)
			})
		})
	})

	Convey("Given a fuzzy observer", t, func() {
		calls := 0
		r := resolve.New([]string{"Bihar"}, resolve.WithFuzzyObserver(func() { calls++ }))

		Convey("When resolution needs similarity scoring", func() {
			_, err := r.Resolve("Bihhar")

			Convey("Then the observer fires", func() {
				So(err, ShouldBeNil)
				So(calls, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the match is exact", func() {
			_, err := r.Resolve("Bihar")

			Convey("Then the observer is not consulted", func() {
				So(err, ShouldBeNil)
				So(calls, ShouldEqual, 0)
			})
		})
	})
}

func TestNormalizeDistrict(t *testing.T) {
	Convey("Given the district alias table", t, func() {
		Convey("When a renamed district is normalized", func() {
			So(resolve.NormalizeDistrict("Kawardha", "Chhattisgarh"), ShouldEqual, "Kabeerdham")
			So(resolve.NormalizeDistrict("BBMP", "Karnataka"), ShouldEqual, "Bengaluru Urban")
		})

		Convey("When a municipal corporation is normalized", func() {
			So(resolve.NormalizeDistrict("Vadodara Corporation", "Gujarat"), ShouldEqual, "Vadodara")
		})

		Convey("When directions are normalized outside West Bengal", func() {
			So(resolve.NormalizeDistrict("Purba Champaran", "Bihar"), ShouldEqual, "East Champaran")
		})

		Convey("When directions are normalized inside West Bengal", func() {
			So(resolve.NormalizeDistrict("East Medinipur", "West Bengal"), ShouldEqual, "Purba Medinipur")
		})
	})
}
