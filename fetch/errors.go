package fetch

import "errors"

var (
	// ErrInvalidConcurrency is returned when a non-positive worker count is
	// configured.
	ErrInvalidConcurrency = errors.New("fetch concurrency must be positive")

	// ErrInvalidTimeout is returned when a non-positive per-request timeout
	// is configured.
	ErrInvalidTimeout = errors.New("fetch timeout must be positive")
)
