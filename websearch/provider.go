package websearch

import (
	"context"

	"github.com/poiesic/webrag/core"
)

// Provider is the interface that web search backends implement.
type Provider interface {
	// Search executes a query and returns up to limit candidates.
	// Returning fewer than limit results is not an error; a transport or
	// backend failure is.
	Search(ctx context.Context, query string, limit int) ([]core.Candidate, error)

	// Name returns the provider identifier (e.g. "duckduckgo").
	Name() string
}
