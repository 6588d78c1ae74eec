package delta

import (
	"errors"
	"fmt"
)

// Sentinel kinds for metric computation errors.
var (
	ErrDivisionByZero    = errors.New("ratio against zero related total")
	ErrInconsistentDelta = errors.New("reported change disagrees with derived change")
)

// InconsistentDeltaError reports a source-provided change figure that
// does not reconcile with the change derived from current and previous
// counts.
type InconsistentDeltaError struct {
	Region   string
	Metric   string
	Reported int64
	Derived  int64
}

func (e *InconsistentDeltaError) Error() string {
	return fmt.Sprintf("%s/%s: reported change %d, derived %d",
		e.Region, e.Metric, e.Reported, e.Derived)
}

func (e *InconsistentDeltaError) Unwrap() error { return ErrInconsistentDelta }
