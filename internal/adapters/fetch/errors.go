package fetch

import "errors"

// Sentinel kinds for document fetch errors.
var (
	ErrTransport  = errors.New("upstream fetch failed")
	ErrUnknownKey = errors.New("no endpoint configured for document")
)
