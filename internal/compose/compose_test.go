package compose_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/covid-saarani/lipik/internal/adapters/fetch"
	"github.com/covid-saarani/lipik/internal/adapters/regions"
	"github.com/covid-saarani/lipik/internal/adapters/store"
	"github.com/covid-saarani/lipik/internal/compose"
	"github.com/covid-saarani/lipik/internal/domain/freshness"
	"github.com/covid-saarani/lipik/internal/domain/model"
	"github.com/covid-saarani/lipik/internal/domain/tabular"
	"github.com/covid-saarani/lipik/internal/sources/feed"
	"github.com/covid-saarani/lipik/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// stateCount matches the fixed geometry of the per-state vaccination
// table, which carries exactly this many data rows.
const stateCount = 38

func stateNames() []string {
	names := make([]string, 0, stateCount)
	for i := 0; i < stateCount; i++ {
		names = append(names, fmt.Sprintf("State %c%c", 'A'+i/10, 'a'+i%10))
	}
	return names
}

func writeRegistry(t *testing.T) string {
	t.Helper()
	content := "nation:\n  helpline: \"1075\"\nmisc: {}\nstates:\n"
	for i, name := range stateNames() {
		content += fmt.Sprintf("  %s:\n    abbr: \"S%d\"\n", name, i)
		if i == 0 {
			content += "    districts:\n      - Alpha\n      - Beta\n"
		}
	}
	path := filepath.Join(t.TempDir(), "regions.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// mygovCases builds the column-major cases document. Every state reports
// confirmed 100 over 90, active 20 over 18, recovered 70 over 64 and
// deaths 10 over 8, all with consistent diff columns, except that the
// confirmed column is scaled so tests can steer the headline total.
func mygovCases(t *testing.T, confirmedPerState int64) []byte {
	names := map[string]string{}
	codes := map[string]string{}
	column := func(n int64) map[string]int64 {
		col := map[string]int64{}
		for i := 0; i < stateCount; i++ {
			col[fmt.Sprint(i)] = n
		}
		return col
	}
	for i, name := range stateNames() {
		key := fmt.Sprint(i)
		names[key] = name
		codes[key] = fmt.Sprintf("S%d", i)
	}
	return mustMarshal(t, map[string]any{
		"Name of State / UT":          names,
		"abbreviation_code":           codes,
		"Total Confirmed cases":       column(confirmedPerState),
		"last_confirmed_covid_cases":  column(confirmedPerState - 10),
		"diff_confirmed_covid_cases":  column(10),
		"Active":                      column(20),
		"last_active_covid_cases":     column(18),
		"diff_active_covid_cases":     column(2),
		"Cured/Discharged/Migrated":   column(70),
		"last_cured_discharged":       column(64),
		"diff_cured_discharged":       column(6),
		"Death":                       column(10),
		"last_death":                  column(8),
		"diff_death":                  column(2),
		"as_on":                       "14 Jan 2022, 08:00 IST",
		"updated_on":                  "1642128600",
	})
}

// mohfwCases builds the row-major cases document, optionally with the
// full state roster ahead of the national roll-up row.
func mohfwCases(t *testing.T, nationalConfirmed int64, withStates bool) []byte {
	row := func(sno, name string, confirmed int64) map[string]any {
		return map[string]any{
			"sno": sno, "state_name": name,
			"new_positive": confirmed, "positive": confirmed - 10,
			"new_active": 20, "active": 18,
			"new_cured": 70, "cured": 64,
			"new_death": 10, "death": 8,
		}
	}
	var rows []map[string]any
	if withStates {
		for i, name := range stateNames() {
			rows = append(rows, row(fmt.Sprint(i+1), name, 100))
		}
	}
	national := row("11111", "", nationalConfirmed)
	national["death_reconsille"] = 5
	rows = append(rows, national)
	return mustMarshal(t, rows)
}

// mygovVaccination reports per state: 50 first, 30 second, 5 precaution
// and 10 teen doses, 95 in total, 10 of them in the last 24 hours.
func mygovVaccination(t *testing.T) []byte {
	state := func(name string) map[string]any {
		return map[string]any{
			"st_name":     name,
			"total_doses": 95, "last_total_doses": 85,
			"dose1": 50, "last_dose1": 45,
			"dose2": 30, "last_dose2": 28,
			"precaution_dose": 5, "last_precaution_dose": 4,
			"dose1_15_18": 10, "last_dose1_15_18": 8,
		}
	}
	var states []map[string]any
	for _, name := range stateNames() {
		states = append(states, state(name))
	}
	return mustMarshal(t, map[string]any{
		"day":                        "2022-01-14",
		"updated_on":                 "14.01.2022",
		"india_total_doses":          95 * stateCount,
		"india_last_total_doses":     85 * stateCount,
		"india_dose1":                50 * stateCount,
		"india_last_dose1":           45 * stateCount,
		"india_dose2":                30 * stateCount,
		"india_last_dose2":           28 * stateCount,
		"precaution_dose":            5 * stateCount,
		"india_last_precaution_dose": 4 * stateCount,
		"india_dose1_15_18":          10 * stateCount,
		"india_last_dose1_15_18":     8 * stateCount,
		"vacc_st_data":               states,
	})
}

// mohfwNationalTable sums to the per-state figures: 100 first, 80
// second, 20 teen and 10 precaution doses per state.
func mohfwNationalTable() tabular.RawTable {
	cell := func(n int64) string { return fmt.Sprint(n) }
	return tabular.RawTable{
		{"S. No.", "Category", "Age 15-18", "Precaution Dose", "Total"},
		{"", "", "", "", ""},
		{"1", "Beneficiaries\n(Cumulative)", "1st dose", "", "-"},
		{"2", cell(100*stateCount) + "\n" + cell(80*stateCount), cell(20 * stateCount), cell(10 * stateCount), "-"},
		{"3", "1st dose (+100)\n2nd dose (+80)\nPrecaution (+10)\nTotal (+190)", cell(20*stateCount) + "\n(+20)", cell(10*stateCount) + "\n(+10)", "-"},
	}
}

func mohfwStateTable() tabular.RawTable {
	table := tabular.RawTable{
		{"State wise vaccination", "", "", "", "", "", ""},
		{"S. No.", "State", "1st dose", "2nd dose", "15-18 1st dose", "Precaution dose", "Total"},
		{"", "", "(18+)", "(18+)", "", "(18+)", ""},
	}
	for i, name := range stateNames() {
		table = append(table, []string{
			fmt.Sprintf("%d.", i+1), name,
			"100", "80", "20", "10", "210",
		})
	}
	return table
}

func mohfwDistrictTable() tabular.RawTable {
	table := make(tabular.RawTable, 14)
	for i := range table {
		table[i] = make([]string, 21)
	}
	table[6][1] = "Week: 07.01.2022 to 13.01.2022"
	table[11][2], table[11][3] = "State Aa", "Alpha"
	table[11][4], table[11][5], table[11][6] = "10.0", "20.0", "5.0"
	table[12][3] = "Grand Total"
	return table
}

type stubFetcher struct {
	docs   map[fetch.Key][]byte
	tables map[fetch.Key]tabular.RawTable
}

func (s *stubFetcher) JSON(_ context.Context, key fetch.Key) ([]byte, error) {
	doc, ok := s.docs[key]
	if !ok {
		return nil, fmt.Errorf("no stub document for %s", key)
	}
	return doc, nil
}

func (s *stubFetcher) Table(_ context.Context, key fetch.Key) (tabular.RawTable, error) {
	table, ok := s.tables[key]
	if !ok {
		return nil, fmt.Errorf("no stub table for %s", key)
	}
	return table, nil
}

func newStub(t *testing.T, mygovConfirmed, mohfwConfirmed int64, mohfwStates bool) *stubFetcher {
	return &stubFetcher{
		docs: map[fetch.Key][]byte{
			fetch.KeyMyGovCases:        mygovCases(t, mygovConfirmed),
			fetch.KeyMyGovVaccination:  mygovVaccination(t),
			fetch.KeyMoHFWCases:        mohfwCases(t, mohfwConfirmed, mohfwStates),
			fetch.KeyMyGovStateCenters: mustMarshal(t, []feed.CenterRow{{StateName: "State Aa", Centers: 4}}),
			fetch.KeyMyGovDistrictCenters: mustMarshal(t, []feed.CenterRow{
				{StateName: "State Aa", DistrictName: "Alpha", Centers: 3},
			}),
		},
		tables: map[fetch.Key]tabular.RawTable{
			fetch.KeyMoHFWVaccinationNat: mohfwNationalTable(),
			fetch.KeyMoHFWVaccinationSt:  mohfwStateTable(),
			fetch.KeyMoHFWDistricts:      mohfwDistrictTable(),
		},
	}
}

// The clock is fixed after the cutover hour so the nominal date is the
// previous calendar day.
var ist = time.FixedZone("IST", 5*3600+30*60)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2022, 1, 14, 10, 0, 0, 0, ist)
	}
}

func newComposer(t *testing.T, fetcher fetch.Fetcher, dir string) *compose.Composer {
	t.Helper()
	registry, err := regions.Load(writeRegistry(t))
	if err != nil {
		t.Fatal(err)
	}
	archive, err := store.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return compose.New(fetcher, archive, registry,
		compose.WithLocation(ist),
		compose.WithClock(fixedClock()),
	)
}

func TestRunPrimaryAuthoritative(t *testing.T) {
	Convey("Given both sources reporting the same national total", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		composer := newComposer(t, newStub(t, 100, 100*stateCount, false), dir)

		Convey("When running the first cycle", func() {
			snap, err := composer.Run(ctx)
			So(err, ShouldBeNil)

			Convey("Then MyGov wins and its figures fold up to the nation", func() {
				So(snap.Timestamps.Cases.PrimarySource, ShouldEqual, feed.Primary)
				nation := snap.Nation()
				So(nation.Confirmed.Current, ShouldEqual, 100*stateCount)
				So(nation.Confirmed.Delta, ShouldEqual, 10*stateCount)
				So(nation.Deaths.Reconciled, ShouldEqual, 5)
			})

			Convey("And the vaccination roll-up matches the feed's total", func() {
				all := snap.Nation().Vaccination.AllAges.AllDoses
				So(all.Total, ShouldEqual, 95*stateCount)
				So(all.New, ShouldEqual, 10*stateCount)
			})

			Convey("And district and center figures land on the region", func() {
				state := snap.Regions["State Aa"]
				So(state.Vaccination.Centers, ShouldEqual, 4)
				So(state.Districts["Alpha"].Centers, ShouldEqual, 3)
				So(state.Districts["Alpha"].PositivityRate, ShouldEqual, 5.0)
				So(state.Districts, ShouldContainKey, "Aggregate")
				So(snap.Regions[model.MiscKey].Districts, ShouldContainKey, "Aggregate")
				So(snap.Timestamps.Districts.Week, ShouldEqual, "Week: 07.01.2022 to 13.01.2022")
			})

			Convey("And the snapshot is sealed and dated the previous day", func() {
				So(snap.Sealed(), ShouldBeTrue)
				So(snap.Timestamps.Cases.Date, ShouldEqual, "13 Jan 2022")
				_, err := os.Stat(filepath.Join(dir, "Daily", "2022_01_13.json"))
				So(err, ShouldBeNil)
				_, err = os.Stat(filepath.Join(dir, "dashboard.json"))
				So(err, ShouldBeNil)
			})

			Convey("And an immediate re-run is a no-op", func() {
				_, err := composer.Run(ctx)
				So(errors.Is(err, freshness.ErrAlreadyFetched), ShouldBeTrue)
			})
		})
	})
}

func TestRunSecondaryAuthoritative(t *testing.T) {
	Convey("Given a primary source lagging behind the secondary", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		composer := newComposer(t, newStub(t, 90, 100*stateCount, true), dir)

		Convey("When running the cycle", func() {
			snap, err := composer.Run(ctx)
			So(err, ShouldBeNil)

			Convey("Then MoHFW wins and supplies the case figures", func() {
				So(snap.Timestamps.Cases.PrimarySource, ShouldEqual, feed.Secondary)
				So(snap.Nation().Confirmed.Current, ShouldEqual, 100*stateCount)
			})

			Convey("And vaccination totals come from the extracted tables", func() {
				state := snap.Regions["State Ab"].Vaccination
				So(state.Adults.First.Total, ShouldEqual, 100)
				So(state.AllAges.AllDoses.Total, ShouldEqual, 210)
				So(snap.Nation().Vaccination.AllAges.AllDoses.Total, ShouldEqual, 210*stateCount)
			})

			Convey("And the vaccination stamp records the publication time", func() {
				So(snap.Timestamps.Vaccination.AsOn, ShouldEqual, "14 Jan 2022, 08:00 IST")
			})

			Convey("And without a prior snapshot the 24-hour doses stay zero", func() {
				So(snap.Regions["State Ab"].Vaccination.AllAges.AllDoses.New, ShouldEqual, 0)
			})
		})
	})
}
