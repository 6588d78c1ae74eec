package store

import "errors"

// Sentinel kinds for snapshot archive errors.
var ErrNotFound = errors.New("no snapshot published")
