package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if LIPIK_CONFIG is set
//  3. env (prefix LIPIK_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("LIPIK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: LIPIK_DATA_DIR, LIPIK_CUTOVER_HOUR, ...
	// Map env keys like LIPIK_CUTOVER_HOUR -> cutover_hour (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("LIPIK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "lipik_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DataDir == "" {
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	}
	if cfg.CutoverHour < 0 || cfg.CutoverHour > 23 {
		return fmt.Errorf("%w: cutover_hour %d outside [0, 23]", ErrInvalidConfig, cfg.CutoverHour)
	}
	if cfg.ResolverThreshold < 0 || cfg.ResolverThreshold > 1 {
		return fmt.Errorf("%w: resolver_threshold %v outside [0, 1]", ErrInvalidConfig, cfg.ResolverThreshold)
	}
	if cfg.DeltaTolerance < 0 {
		return fmt.Errorf("%w: delta_tolerance must not be negative", ErrInvalidConfig)
	}
	return nil
}
