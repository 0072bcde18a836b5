package fetcher

import (
	"time"
)

// Rand is the source of randomness for jitter, wait ranges, and identity
// selection. *math/rand.Rand satisfies it; tests inject deterministic values.
type Rand interface {
	// Int63n returns a non-negative value in [0, n)
	Int63n(n int64) int64
}

// Policy holds the retry budget and the per-class backoff parameters.
//
// Rate-limit (429) and blocked (403) responses reflect active throttling and
// back off exponentially in the attempt index, capped at Ceiling, with up to
// JitterMax of random jitter added. Server errors (5xx) and network faults are
// usually short blips and instead wait a uniform random duration in
// [ServerErrorWaitMin, ServerErrorWaitMax].
type Policy struct {
	MaxAttempts          int
	RateLimitBackoffBase time.Duration
	BlockedBackoffBase   time.Duration
	Ceiling              time.Duration
	JitterMax            time.Duration
	ServerErrorWaitMin   time.Duration
	ServerErrorWaitMax   time.Duration
}

// DefaultPolicy returns conservative defaults for anonymous StockTwits access.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:          5,
		RateLimitBackoffBase: 15 * time.Second,
		BlockedBackoffBase:   30 * time.Second,
		Ceiling:              2 * time.Minute,
		JitterMax:            2 * time.Second,
		ServerErrorWaitMin:   5 * time.Second,
		ServerErrorWaitMax:   15 * time.Second,
	}
}

// Wait returns how long to sleep before retrying after a failure of the given
// class on the given attempt (1-based).
func (p Policy) Wait(errType ErrorType, attempt int, rng Rand) time.Duration {
	switch errType {
	case ErrorTypeRateLimit:
		return p.exponential(p.RateLimitBackoffBase, attempt, rng)
	case ErrorTypeBlocked:
		return p.exponential(p.BlockedBackoffBase, attempt, rng)
	default:
		return uniform(p.ServerErrorWaitMin, p.ServerErrorWaitMax, rng)
	}
}

func (p Policy) exponential(base time.Duration, attempt int, rng Rand) time.Duration {
	wait := base
	for i := 1; i < attempt; i++ {
		wait *= 2
		if wait >= p.Ceiling {
			wait = p.Ceiling
			break
		}
	}
	if wait > p.Ceiling {
		wait = p.Ceiling
	}
	if p.JitterMax > 0 {
		wait += time.Duration(rng.Int63n(int64(p.JitterMax)))
	}
	return wait
}

func uniform(min, max time.Duration, rng Rand) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rng.Int63n(int64(max-min)+1))
}
