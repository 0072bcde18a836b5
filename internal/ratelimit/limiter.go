package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter caps the overall request rate against the StockTwits API.
// Every HTTP attempt (including retries) waits on it, so retry bursts for one
// symbol cannot push the whole run over the upstream's informal limits.
// This complements the coordinator's politeness delay rather than replacing
// it: the delay spaces symbols out, the limiter is a hard ceiling.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing perMinute requests per minute.
// A non-positive value disables limiting.
func New(perMinute float64) *Limiter {
	if perMinute <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(perMinute/60.0), 1)}
}

// Wait blocks until the limiter permits a request.
// It returns an error if the context is canceled before the event can proceed.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether a request may happen now without waiting.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}
