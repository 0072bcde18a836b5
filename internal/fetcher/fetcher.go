package fetcher

import "context"

// Fetcher is the core interface for retrieving one symbol's watcher metric.
// Implementations handle their own retries: a returned error is terminal for
// that symbol and callers must not re-invoke Fetch to recover from it.
type Fetcher interface {
	// Fetch retrieves the watcher count for the given symbol.
	// Returns a *FetchError describing the failure class on error.
	Fetch(ctx context.Context, symbol string) (int, error)
}
