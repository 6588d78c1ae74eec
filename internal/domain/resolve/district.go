package resolve

import "strings"

// districtAliases maps typo/old/long/short district names onto the
// canonical spelling used in the region configuration.
var districtAliases = map[string]string{
	"Kawardha":                          "Kabeerdham",
	"BBMP":                              "Bengaluru Urban",
	"Sri Potti Sriramulu Nellore":       "S.P.S. Nellore",
	"Gulbarga":                          "Kalaburagi",
	"Aranthangi":                        "Pudukkottai",
	"Attur":                             "Salem",
	"Cheyyar":                           "Tiruvannamalai",
	"Kovilpatti":                        "Thoothukkudi",
	"Palani":                            "Dindigul",
	"Paramakudi":                        "Ramanathapuram",
	"Poonamallee":                       "Thiruvallur",
	"Sivakasi":                          "Virudhunagar",
	"Tuticorin":                         "Thoothukkudi",
	"Dibang Valley":                     "Upper Dibang Valley",
	"Kamrup Metro":                      "Kamrup Metropolitan",
	"Baleshwar":                         "Balasore",
	"East Nimar":                        "Khandwa",
	"Sonepur":                           "Subarnapur",
	"Korea":                             "Koriya",
	"Diamond Harbor HD (S 24 Parganas)": "South 24 Parganas",
	"Nandigram HD (Purba Medinipore)":   "Purba Medinipur",
	"Shahid Bhagat Singh Nagar":         "SBS Nagar",
	"Dohad":                             "Dahod",
	"Agar":                              "Agar Malwa",
}

// NormalizeDistrict applies the curated alias table and directional name
// conventions before any fuzzy matching. West Bengal keeps the Bengali
// Purba/Paschim directions; every other state uses the English ones.
// Urban municipal corporations (typically Gujarat) are folded into their
// parent district.
func NormalizeDistrict(district, state string) string {
	if canonical, ok := districtAliases[district]; ok {
		return canonical
	}

	district = strings.TrimSuffix(district, " Corporation")

	if state == "West Bengal" {
		district = strings.ReplaceAll(district, "East", "Purba")
		district = strings.ReplaceAll(district, "West", "Paschim")
	} else {
		district = strings.ReplaceAll(district, "Purba", "East")
		district = strings.ReplaceAll(district, "Purbi", "East")
		district = strings.ReplaceAll(district, "Paschim", "West")
		district = strings.ReplaceAll(district, "Pashchim", "West")
	}
	return strings.TrimSpace(district)
}
