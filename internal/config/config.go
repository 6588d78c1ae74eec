// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults, Load to layer file/env.
// - External errors must be wrapped via this package's error helpers.
package config

import "context"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DataDir roots the published snapshot archive.
	DataDir string `koanf:"data_dir"`

	// RegionsFile points at the canonical region configuration.
	RegionsFile string `koanf:"regions_file"`

	// Timezone is the reporting timezone of both upstream sources.
	Timezone string `koanf:"timezone"`

	// CutoverHour is the local hour before which a run still belongs
	// to the previous reporting day.
	CutoverHour int `koanf:"cutover_hour"`

	// ResolverThreshold sets the minimum fuzzy similarity for region
	// name resolution, in [0, 1].
	ResolverThreshold float64 `koanf:"resolver_threshold"`

	// DeltaTolerance allows reported and derived change figures to
	// disagree by up to this absolute amount.
	DeltaTolerance int64 `koanf:"delta_tolerance"`

	// FetchTimeoutSeconds bounds each upstream document request.
	FetchTimeoutSeconds int `koanf:"fetch_timeout_seconds"`

	// UserAgent is sent on every upstream request.
	UserAgent string `koanf:"user_agent"`

	// Endpoints maps document keys to upstream URLs.
	Endpoints map[string]string `koanf:"endpoints"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		DataDir:             "data",
		RegionsFile:         "regions.yml",
		Timezone:            "Asia/Kolkata",
		CutoverHour:         8,
		ResolverThreshold:   0.5,
		DeltaTolerance:      0,
		FetchTimeoutSeconds: 30,
		UserAgent:           "lipik/1.0 (+https://github.com/covid-saarani/lipik)",
		Endpoints: map[string]string{
			"mygov_cases":                "https://www.mygov.in/sites/default/files/covid/covid_state_counts_ver1.json",
			"mygov_vaccination":          "https://www.mygov.in/sites/default/files/covid/vaccine/vaccine_counts_today.json",
			"mygov_state_centers":        "https://www.mygov.in/sites/default/files/covid/vaccine/vaccine_state_wise.json",
			"mygov_district_centers":     "https://www.mygov.in/sites/default/files/covid/vaccine/vaccine_district_wise.json",
			"mohfw_cases":                "https://www.mohfw.gov.in/data/datanew.json",
			"mohfw_vaccination_national": "https://www.mohfw.gov.in/data/vaccination_national.json",
			"mohfw_vaccination_states":   "https://www.mohfw.gov.in/data/vaccination_states.json",
			"mohfw_districts":            "https://www.mohfw.gov.in/data/district_positivity.json",
		},
	}
}
