package compose

import (
	"time"

	"github.com/covid-saarani/lipik/pkg/logger"
)

// Option applies a configuration option to the Composer.
type Option func(*Composer)

// WithLocation sets the publisher timezone anchoring all date
// arithmetic.
func WithLocation(loc *time.Location) Option {
	return func(c *Composer) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithCutoverHour overrides the publication cutover hour.
func WithCutoverHour(hour int) Option {
	return func(c *Composer) {
		if hour >= 0 && hour < 24 {
			c.cutoverHour = hour
		}
	}
}

// WithMinConfidence overrides the name resolution confidence threshold.
func WithMinConfidence(score float64) Option {
	return func(c *Composer) {
		if score > 0 && score <= 1 {
			c.minConfidence = score
		}
	}
}

// WithTolerance sets the allowed disagreement between reported and
// derived change figures.
func WithTolerance(n int64) Option {
	return func(c *Composer) {
		if n >= 0 {
			c.tolerance = n
		}
	}
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets a custom logger for the composer.
func WithLogger(log logger.Logger) Option {
	return func(c *Composer) {
		if log != nil {
			c.log = log
		}
	}
}
