package websearch

import "errors"

var (
	// ErrSearchFailed is returned when the search backend call itself fails
	// (network error or non-success HTTP status). This aborts the pipeline
	// invocation, unlike an empty result set which is a valid outcome.
	ErrSearchFailed = errors.New("search request failed")
)
