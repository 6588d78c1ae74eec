package mohfw_test

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/covid-saarani/lipik/internal/domain/delta"
	"github.com/covid-saarani/lipik/internal/domain/model"
	"github.com/covid-saarani/lipik/internal/domain/resolve"
	"github.com/covid-saarani/lipik/internal/domain/tabular"
	"github.com/covid-saarani/lipik/internal/sources/mohfw"
)

const casesPayload = `[
	{"sno": "5", "state_name": "Kerala",
	 "new_positive": "700", "positive": "690",
	 "new_active": "60", "active": "55",
	 "new_cured": "600", "cured": "596",
	 "new_death": "40", "death": "39",
	 "death_reconsille": "12"},
	{"sno": "17", "state_name": "Telengana",
	 "new_positive": "500", "positive": "495",
	 "new_active": "40", "active": "38",
	 "new_cured": "440", "cured": "437",
	 "new_death": "20", "death": "20",
	 "death_reconsille": ""},
	{"sno": "11111", "state_name": "",
	 "new_positive": "1200", "positive": "1185",
	 "new_active": "100", "active": "93",
	 "new_cured": "1040", "cured": "1033",
	 "new_death": "60", "death": "59",
	 "death_reconsille": "12"}
]`

func newSnapshot(states ...string) *model.Snapshot {
	snap := model.NewSnapshot(
		model.RegionMeta{Name: model.NationKey},
		model.RegionMeta{Name: model.MiscKey},
	)
	for _, name := range states {
		snap.Regions[name] = model.NewRegion(model.RegionMeta{Name: name})
	}
	return snap
}

func TestCases(t *testing.T) {
	Convey("Given the MoHFW cases payload", t, func() {
		rows, err := mohfw.DecodeCases([]byte(casesPayload))
		So(err, ShouldBeNil)
		src := mohfw.New(delta.New())
		resolver := resolve.New([]string{"Kerala", "Telangana"})

		Convey("When reading the national headline", func() {
			total, err := mohfw.NationalConfirmed(rows)

			Convey("Then it comes from the blank-named roll-up row", func() {
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 1200)
			})
		})

		Convey("When filling as the authoritative source", func() {
			snap := newSnapshot("Kerala", "Telangana")
			So(src.FillCases(snap, rows, resolver, false), ShouldBeNil)

			Convey("Then state blocks carry derived changes and ratios", func() {
				kerala := snap.Regions["Kerala"]
				So(kerala.Confirmed.Current, ShouldEqual, 700)
				So(kerala.Confirmed.Delta, ShouldEqual, 10)
				So(kerala.Deaths.Reconciled, ShouldEqual, 12)
				So(kerala.Active.RatioPC, ShouldEqual, delta.Round(100*60.0/700.0))
			})

			Convey("And the misspelled state resolves", func() {
				So(snap.Regions["Telangana"].Confirmed.Current, ShouldEqual, 500)
			})

			Convey("And the national row only contributes the reconciliation figure", func() {
				nation := snap.Nation()
				So(nation.Confirmed.Current, ShouldEqual, 0)
				So(nation.Deaths.Reconciled, ShouldEqual, 12)
			})
		})

		Convey("When filling in reconciliation-only mode", func() {
			snap := newSnapshot("Kerala", "Telangana")
			So(src.FillCases(snap, rows, resolver, true), ShouldBeNil)

			Convey("Then counts stay untouched", func() {
				kerala := snap.Regions["Kerala"]
				So(kerala.Confirmed.Current, ShouldEqual, 0)
				So(kerala.Deaths.Reconciled, ShouldEqual, 12)
			})
		})

		Convey("When the national row is missing", func() {
			_, err := mohfw.NationalConfirmed(rows[:2])

			Convey("Then the feed is rejected", func() {
				So(errors.Is(err, mohfw.ErrBadFeed), ShouldBeTrue)
			})
		})
	})
}

// nationalTableV2 mirrors the current national vaccination summary: row 3
// stacks the cumulative adult dose totals, row 4 the 24-hour lines with
// embedded parenthetical deltas.
func nationalTableV2() tabular.RawTable {
	return tabular.RawTable{
		{"S. No.", "Category", "Age 15-18", "Precaution Dose", "Total"},
		{"", "", "", "", ""},
		{"1", "Beneficiaries\n(Cumulative)", "1st dose", "", "-"},
		{"2", "8,00,000\n6,00,000", "1,00,000", "55,000", "15,55,000"},
		{"3", "1st dose (+5,000)\n2nd dose (+4,000)\nPrecaution (+500)\nTotal (+9,500)", "1,00,000\n(+2,000)", "55,500\n(+500)", "-"},
	}
}

func stateNames() []string {
	names := make([]string, 0, 38)
	for i := 0; i < 38; i++ {
		names = append(names, fmt.Sprintf("State %c%c", 'A'+i/10, 'A'+i%10))
	}
	return names
}

// stateTable builds the 41x7 per-state grid: three header rows, then one
// row per state with the serial number split off the name column.
func stateTable(names []string) tabular.RawTable {
	table := tabular.RawTable{
		{"State wise vaccination", "", "", "", "", "", ""},
		{"S. No.", "State", "1st dose", "2nd dose", "15-18 1st dose", "Precaution dose", "Total"},
		{"", "", "(18+)", "(18+)", "", "(18+)", ""},
	}
	for i, name := range names {
		table = append(table, []string{
			fmt.Sprintf("%d.", i+1), name,
			"100", "80", "20", "10", "210",
		})
	}
	return table
}

func TestFillVaccination(t *testing.T) {
	Convey("Given the vaccination tables and a seeded snapshot", t, func() {
		names := stateNames()
		src := mohfw.New(delta.New())
		resolver := resolve.New(names)
		snap := newSnapshot(names...)

		Convey("When filling without a previous snapshot", func() {
			figures, err := src.FillVaccination(snap, nationalTableV2(), stateTable(names), nil, resolver)

			Convey("Then the national summary parses including the newer bands", func() {
				So(err, ShouldBeNil)
				So(figures.AdultFirst, ShouldResemble, model.DoseStats{Total: 800000, New: 5000})
				So(figures.AdultSecond, ShouldResemble, model.DoseStats{Total: 600000, New: 4000})
				So(figures.TeenFirst, ShouldResemble, model.DoseStats{Total: 100000, New: 2000})
				So(figures.AdultThird, ShouldResemble, model.DoseStats{Total: 55000, New: 500})
				So(figures.Total(), ShouldEqual, 1555000)
			})

			Convey("And every state's totals are filled and rolled up", func() {
				v := &snap.Regions[names[0]].Vaccination
				So(v.Adults.First.Total, ShouldEqual, 100)
				So(v.Adults.Second.Total, ShouldEqual, 80)
				So(v.Teens.First.Total, ShouldEqual, 20)
				So(v.Adults.Third.Total, ShouldEqual, 10)
				So(v.AllAges.AllDoses.Total, ShouldEqual, 210)
			})

			Convey("And the 24-hour figures stay at the zero baseline", func() {
				v := &snap.Regions[names[0]].Vaccination
				So(v.AllAges.AllDoses.New, ShouldEqual, 0)
			})
		})

		Convey("When a previous snapshot supplies the baseline", func() {
			prev := newSnapshot(names...)
			for _, name := range names {
				pv := &prev.Regions[name].Vaccination
				pv.Adults.First.Total = 90
				pv.Adults.Second.Total = 75
				pv.Teens.First.Total = 15
				pv.Adults.Third.Total = 10
			}
			_, err := src.FillVaccination(snap, nationalTableV2(), stateTable(names), prev, resolver)

			Convey("Then the news are derived against it", func() {
				So(err, ShouldBeNil)
				v := &snap.Regions[names[0]].Vaccination
				So(v.Adults.First.New, ShouldEqual, 10)
				So(v.Adults.Second.New, ShouldEqual, 5)
				So(v.Teens.First.New, ShouldEqual, 5)
				So(v.Adults.Third.New, ShouldEqual, 0)
				So(v.AllAges.AllDoses.New, ShouldEqual, 20)
			})
		})

		Convey("When the national table drifts from every known layout", func() {
			broken := nationalTableV2()
			broken[2][3] = "no longer empty"
			_, err := src.FillVaccination(snap, broken, stateTable(names), nil, resolver)

			Convey("Then validation fails with the schema mismatch kind", func() {
				So(errors.Is(err, tabular.ErrSchemaMismatch), ShouldBeTrue)
			})
		})
	})
}

// districtTable builds the 21-column positivity grid: three side-by-side
// sections of five data columns, data from row 11, terminated by a Grand
// Total row. The reporting week label sits at (6,1).
func districtTable() tabular.RawTable {
	const rows, cols = 14, 21
	table := make(tabular.RawTable, rows)
	for i := range table {
		table[i] = make([]string, cols)
	}
	table[6][1] = "Week: 07.01.2022 to 13.01.2022"

	// Section one: Kerala, with the state cell merged across its rows.
	table[11][2], table[11][3] = "KERALA", "IDUKKI"
	table[11][4], table[11][5], table[11][6] = "10.0", "20.0", "5.0"
	table[12][3] = "GRAND TOTAL"

	// Section two: a West Bengal district under its English direction.
	table[11][9], table[11][10] = "WEST BENGAL", "EAST BARDHAMAN"
	table[11][11], table[11][12], table[11][13] = "4.0", "6.0", "2.0"
	table[12][10] = "GRAND TOTAL"

	// Section three: Idukki again, so its rates must average.
	table[11][16], table[11][17] = "KERALA", "IDUKKI"
	table[11][18], table[11][19], table[11][20] = "20.0", "30.0", "15.0"
	table[12][17] = "NA"

	return table
}

func TestFillDistricts(t *testing.T) {
	Convey("Given the district table and a seeded snapshot", t, func() {
		src := mohfw.New(delta.New())
		resolver := resolve.New([]string{"Kerala", "West Bengal"})
		snap := newSnapshot("Kerala", "West Bengal")
		snap.Regions["Kerala"].Districts["Idukki"] = &model.DistrictStats{}
		snap.Regions["West Bengal"].Districts["Purba Bardhaman"] = &model.DistrictStats{}

		Convey("When walking the table", func() {
			week, err := src.FillDistricts(snap, districtTable(), resolver)
			So(err, ShouldBeNil)

			Convey("Then the week label is extracted", func() {
				So(week, ShouldEqual, "Week: 07.01.2022 to 13.01.2022")
			})

			Convey("And a district reported twice accumulates contributions", func() {
				idukki := snap.Regions["Kerala"].Districts["Idukki"]
				So(idukki.Contributions, ShouldEqual, 2)
				So(idukki.RATPercent, ShouldEqual, 30.0)
				So(idukki.PositivityRate, ShouldEqual, 20.0)
			})

			Convey("And West Bengal keeps its Bengali direction names", func() {
				wb := snap.Regions["West Bengal"].Districts
				So(wb, ShouldContainKey, "Purba Bardhaman")
				So(wb["Purba Bardhaman"].RATPercent, ShouldEqual, 4.0)
				So(wb, ShouldNotContainKey, "East Bardhaman")
			})

			Convey("And finalizing averages the multi-row district", func() {
				engine := delta.New()
				engine.FinalizeDistricts(snap.Regions["Kerala"])
				idukki := snap.Regions["Kerala"].Districts["Idukki"]
				So(idukki.RATPercent, ShouldEqual, 15.0)
				So(idukki.RTPCRPercent, ShouldEqual, 25.0)
				So(idukki.PositivityRate, ShouldEqual, 10.0)
			})
		})

		Convey("When a section pads its tail with NA in the state column", func() {
			padded := districtTable()
			padded[12][2], padded[12][3] = "NA", ""
			_, err := src.FillDistricts(snap, padded, resolver)

			Convey("Then the padding ends the section instead of resolving", func() {
				So(err, ShouldBeNil)
				So(snap.Regions["Kerala"].Districts["Idukki"].Contributions, ShouldEqual, 2)
			})
		})

		Convey("When the table loses its week label", func() {
			broken := districtTable()
			broken[6][1] = ""
			_, err := src.FillDistricts(snap, broken, resolver)

			Convey("Then validation fails", func() {
				So(errors.Is(err, tabular.ErrSchemaMismatch), ShouldBeTrue)
			})
		})
	})
}
