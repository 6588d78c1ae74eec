// Package delta computes current/previous/change/ratio figures for metric
// blocks and folds child regions into parent aggregates. The change field
// is always derived from current minus previous; a source that also
// reports change directly is cross-checked, never trusted blindly.
package delta

import (
	"fmt"
	"math"

	"github.com/covid-saarani/lipik/internal/domain/model"
)

// RatioPrecision is the fixed decimal precision of ratio fields.
const RatioPrecision = 5

// Engine computes metric blocks under a configurable cross-check
// tolerance. The zero tolerance default treats any disagreement between a
// reported and a derived change as a validation failure.
type Engine struct {
	tolerance int64
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTolerance sets the allowed absolute difference between a
// source-reported change and the derived one. Negative values are
// ignored.
func WithTolerance(n int64) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.tolerance = n
		}
	}
}

// New constructs an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FillPair populates a block from independently reported current and
// previous counts; the change is derived.
func (e *Engine) FillPair(b *model.MetricBlock, current, previous int64) {
	b.Current = current
	b.Previous = previous
	b.Delta = current - previous
	b.NoBaseline = false
}

// FillChecked populates a block like FillPair and cross-checks the
// source's own change figure against the derived one. A mismatch beyond
// the tolerance is a validation failure, not a silent overwrite.
func (e *Engine) FillChecked(b *model.MetricBlock, region, metric string, current, previous, reported int64) error {
	derived := current - previous
	if diff := derived - reported; diff > e.tolerance || diff < -e.tolerance {
		return &InconsistentDeltaError{
			Region:   region,
			Metric:   metric,
			Reported: reported,
			Derived:  derived,
		}
	}
	e.FillPair(b, current, previous)
	return nil
}

// FillFromBaseline populates a block from a current count and the prior
// cycle's block for the same region and metric. A nil prior block leaves
// the zero baseline flagged so downstream can tell it from a true zero
// change.
func (e *Engine) FillFromBaseline(b *model.MetricBlock, current int64, prior *model.MetricBlock) {
	b.Current = current
	if prior == nil {
		b.Previous = 0
		b.Delta = 0
		b.NoBaseline = true
		return
	}
	b.Previous = prior.Current
	b.Delta = current - prior.Current
	b.NoBaseline = false
}

// Ratio computes round(100*part/whole, 5). A zero related total is a
// defined failure, not a crash or a silent zero.
func (e *Engine) Ratio(metric string, part, whole int64) (float64, error) {
	if whole == 0 {
		return 0, fmt.Errorf("%w: %s", ErrDivisionByZero, metric)
	}
	return Round(100 * float64(part) / float64(whole)), nil
}

// Round rounds to the fixed ratio precision.
func Round(x float64) float64 {
	shift := math.Pow10(RatioPrecision)
	return math.Round(x*shift) / shift
}

// SetRatios computes the share of active, recovered and deaths against
// confirmed for one region. Called after the region's counts are final.
func (e *Engine) SetRatios(r *model.Region) error {
	for _, metric := range []struct {
		name  string
		block *model.MetricBlock
	}{
		{"active", &r.Active},
		{"recovered", &r.Recovered},
		{"deaths", &r.Deaths},
	} {
		ratio, err := e.Ratio(metric.name, metric.block.Current, r.Confirmed.Current)
		if err != nil {
			return err
		}
		metric.block.RatioPC = ratio
	}
	return nil
}
