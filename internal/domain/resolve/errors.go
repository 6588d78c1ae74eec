package resolve

import "errors"

// Sentinel kinds for name resolution errors.
var (
	ErrNoMatch        = errors.New("no matching canonical name")
	ErrEmptyCandidate = errors.New("empty candidate name")
)
