package mohfw

import "github.com/covid-saarani/lipik/internal/domain/tabular"

// Table layouts for the extracted MoHFW documents. The ministry
// reformats these without notice; when a new variant appears, describe
// it here and list it first.

// nationalVaccinationV2 is the current national vaccination summary:
// an 18+ row with stacked 1st/2nd dose sub-cells, a 15-18 row, and a
// precaution dose row. The line-break counts fingerprint the stacked
// sub-cell structure; the last column carries "(+N)" 24-hour deltas.
var nationalVaccinationV2 = &tabular.Layout{
	Name: "mohfw_vaccination_national_v2",
	Rows: 5,
	Cols: 5,
	Assertions: []tabular.Assertion{
		tabular.LineBreaks(2, 1, 1),
		tabular.LineBreaks(3, 1, 1),
		tabular.LineBreaks(4, 1, 3),
		tabular.LineBreaks(2, 2, 0),
		tabular.LineBreaks(3, 2, 0),
		tabular.LineBreaks(4, 2, 1),
		tabular.MustBeEmpty(2, 3),
		tabular.LineBreaks(3, 3, 0),
		tabular.LineBreaks(4, 3, 1),
	},
	Fields: map[string]tabular.CellRef{
		"adult_doses_total": {Row: 3, Col: 1},
		"adult_doses_new":   {Row: 4, Col: 1},
		"teen_first_total":  {Row: 3, Col: 2},
		"teen_first_new":    {Row: 4, Col: 2},
		"adult_third_total": {Row: 3, Col: 3},
		"adult_third_new":   {Row: 4, Col: 3},
	},
}

// nationalVaccinationV1 is the pre-2022 variant, before the 15-18 age
// band and the precaution dose existed.
var nationalVaccinationV1 = &tabular.Layout{
	Name: "mohfw_vaccination_national_v1",
	Rows: 4,
	Cols: 4,
	Assertions: []tabular.Assertion{
		tabular.LineBreaks(2, 1, 1),
		tabular.LineBreaks(3, 1, 3),
	},
	Fields: map[string]tabular.CellRef{
		"adult_doses_total": {Row: 2, Col: 1},
		"adult_doses_new":   {Row: 3, Col: 1},
	},
}

// NationalVaccinationLayouts returns the known national summary
// variants, newest first.
func NationalVaccinationLayouts() []*tabular.Layout {
	return []*tabular.Layout{nationalVaccinationV2, nationalVaccinationV1}
}

// State vaccination table geometry: a header block, then one row per
// state. State names sometimes split across the first two columns when
// extraction merges cells differently.
const (
	stateRowFirst = 3
	stateRowLast  = 40

	stateColName1      = 0
	stateColName2      = 1
	stateColAdultFirst = 2
	stateColAdultSec   = 3
	stateColTeenFirst  = 4
	stateColAdultThird = 5
)

var stateVaccination = &tabular.Layout{
	Name: "mohfw_vaccination_states_v1",
	Rows: 41,
	Cols: 7,
	Assertions: []tabular.Assertion{
		tabular.Numeric(stateRowFirst, stateColAdultFirst),
		tabular.Numeric(stateRowFirst, stateColAdultThird),
		tabular.Numeric(stateRowLast, stateColAdultFirst),
		tabular.Numeric(stateRowLast, stateColAdultThird),
	},
}

// StateVaccinationLayouts returns the known per-state table variants.
func StateVaccinationLayouts() []*tabular.Layout {
	return []*tabular.Layout{stateVaccination}
}

// District positivity table geometry: three side-by-side sections of
// five data columns each (state, district, RAT%, RT-PCR%, positivity),
// data starting below the header block and running until a "Grand
// Total" or "NA" sentinel. The reporting week label sits in a fixed
// header cell.
const (
	districtDataRow = 11
	districtWeekRow = 6
	districtWeekCol = 1
)

// districtSectionCols are the first (state) columns of each section.
var districtSectionCols = []int{2, 9, 16}

var districtTable = &tabular.Layout{
	Name:    "mohfw_districts_v1",
	MinRows: districtDataRow + 2,
	Cols:    21,
	Assertions: []tabular.Assertion{
		tabular.NotEmpty(districtWeekRow, districtWeekCol),
	},
	Fields: map[string]tabular.CellRef{
		"week": {Row: districtWeekRow, Col: districtWeekCol},
	},
}

// DistrictLayouts returns the known district table variants.
func DistrictLayouts() []*tabular.Layout {
	return []*tabular.Layout{districtTable}
}
