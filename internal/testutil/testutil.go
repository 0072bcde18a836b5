// Package testutil provides deterministic test doubles for the fetch
// pipeline: a scripted fetcher, fixed random sources, and a sleeper that
// records waits instead of blocking.
package testutil

import (
	"context"
	"time"
)

// MockFetcher is a mock implementation of the fetcher.Fetcher interface.
// It records the symbols it was called with, in order.
type MockFetcher struct {
	FetchFunc func(ctx context.Context, symbol string) (int, error)
	Calls     []string
}

// Fetch implements the Fetcher interface
func (m *MockFetcher) Fetch(ctx context.Context, symbol string) (int, error) {
	m.Calls = append(m.Calls, symbol)
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, symbol)
	}
	return 0, nil
}

// NewMockFetcher creates a mock fetcher returning fixed per-symbol counts.
// Symbols absent from counts fail with err.
func NewMockFetcher(counts map[string]int, err error) *MockFetcher {
	return &MockFetcher{
		FetchFunc: func(ctx context.Context, symbol string) (int, error) {
			if count, ok := counts[symbol]; ok {
				return count, nil
			}
			return 0, err
		},
	}
}

// ZeroRand is a fetcher.Rand that always returns 0: first identity in the
// pool, zero jitter, minimum of every wait range.
type ZeroRand struct{}

// Int63n implements fetcher.Rand
func (ZeroRand) Int63n(n int64) int64 { return 0 }

// CyclingRand is a fetcher.Rand returning an incrementing counter modulo n,
// so successive picks walk through a pool deterministically.
type CyclingRand struct {
	counter int64
}

// Int63n implements fetcher.Rand
func (r *CyclingRand) Int63n(n int64) int64 {
	v := r.counter % n
	r.counter++
	return v
}

// RecordingSleeper captures requested sleep durations instead of sleeping.
type RecordingSleeper struct {
	Waits []time.Duration
}

// Sleep records the duration and returns immediately
func (s *RecordingSleeper) Sleep(d time.Duration) {
	s.Waits = append(s.Waits, d)
}
