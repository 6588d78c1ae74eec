package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/covid-saarani/lipik/internal/adapters/fetch"
	"github.com/covid-saarani/lipik/internal/adapters/regions"
	"github.com/covid-saarani/lipik/internal/adapters/store"
	"github.com/covid-saarani/lipik/internal/compose"
	"github.com/covid-saarani/lipik/internal/config"
	"github.com/covid-saarani/lipik/internal/domain/freshness"
	"github.com/covid-saarani/lipik/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warn(ctx, "unknown timezone; falling back to IST", logger.String("timezone", cfg.Timezone), logger.Error(err))
		loc = time.FixedZone("IST", 5*3600+30*60)
	}

	registry, err := regions.Load(cfg.RegionsFile)
	if err != nil {
		log.Error(ctx, "failed to load region registry", logger.Error(err))
		return 1
	}

	archive, err := store.NewFS(cfg.DataDir)
	if err != nil {
		log.Error(ctx, "failed to open snapshot archive", logger.Error(err))
		return 1
	}

	endpoints := make(map[fetch.Key]string, len(cfg.Endpoints))
	for key, url := range cfg.Endpoints {
		endpoints[fetch.Key(key)] = url
	}
	fetcher := fetch.NewHTTP(endpoints,
		fetch.WithTimeout(time.Duration(cfg.FetchTimeoutSeconds)*time.Second),
		fetch.WithUserAgent(cfg.UserAgent),
	)

	composer := compose.New(fetcher, archive, registry,
		compose.WithLogger(log),
		compose.WithLocation(loc),
		compose.WithCutoverHour(cfg.CutoverHour),
		compose.WithMinConfidence(cfg.ResolverThreshold),
		compose.WithTolerance(cfg.DeltaTolerance),
	)

	if _, err := composer.Run(ctx); err != nil {
		if errors.Is(err, freshness.ErrAlreadyFetched) {
			log.Info(ctx, "nothing to do, today's publication is already captured")
			return 0
		}
		log.Error(ctx, "reporting cycle failed", logger.Error(err))
		return 1
	}
	return 0
}
