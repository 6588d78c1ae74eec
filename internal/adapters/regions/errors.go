package regions

import "errors"

// Sentinel kinds for registry errors.
var (
	ErrLoadRegistry  = errors.New("load region registry failed")
	ErrEmptyRegistry = errors.New("region registry has no states")
)
