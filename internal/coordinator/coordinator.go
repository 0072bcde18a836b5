package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"watchertracker/internal/fetcher"
)

// Observation is one successful measurement: the watcher count for a symbol
// at the run's timestamp. Observations are append-only; once handed to the
// sink they are never mutated.
type Observation struct {
	Timestamp time.Time
	Symbol    string
	Count     int
}

// Coordinator walks the symbol list sequentially, invoking the fetcher once
// per symbol with a randomized politeness delay between requests.
// Sequential on purpose: the upstream is rate-hostile and one in-flight
// request at a time is the whole point.
type Coordinator struct {
	fetcher fetcher.Fetcher

	// politeness delay range between consecutive symbols
	waitMin time.Duration
	waitMax time.Duration

	rng    fetcher.Rand
	sleep  func(time.Duration)
	now    func() time.Time
	logger *slog.Logger
}

// New creates a Coordinator. waitMin/waitMax bound the politeness delay;
// a non-positive waitMax disables it.
func New(f fetcher.Fetcher, waitMin, waitMax time.Duration) *Coordinator {
	return &Coordinator{
		fetcher: f,
		waitMin: waitMin,
		waitMax: waitMax,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:   time.Sleep,
		now:     time.Now,
		logger:  slog.Default(),
	}
}

// Run fetches every symbol in order and returns the observations for those
// that succeeded, preserving input order. A single symbol's failure never
// aborts the run; it is reported and skipped. All observations share one
// timestamp captured at run start, so a long run is recorded as a single
// logical measurement. An empty symbol list yields an empty result.
//
// Outcomes are printed line-by-line as they arrive:
//   - Success: "[timestamp] SYMBOL: count"
//   - Failure: "[timestamp] SYMBOL: ERROR - detail"
func (c *Coordinator) Run(ctx context.Context, symbols []string) []Observation {
	started := c.now().UTC()
	stamp := started.Format("2006-01-02 15:04:05")

	var observations []Observation
	for i, symbol := range symbols {
		if i > 0 {
			c.sleep(c.pause())
		}
		if ctx.Err() != nil {
			c.logger.Warn("run interrupted", "fetched", len(observations), "remaining", len(symbols)-i)
			break
		}

		count, err := c.fetcher.Fetch(ctx, symbol)
		if err != nil {
			c.logger.Error("fetch failed", "symbol", symbol, "error", err)
			fmt.Printf("[%s] %s: ERROR - %v\n", stamp, symbol, err)
			continue
		}

		fmt.Printf("[%s] %s: %d\n", stamp, symbol, count)
		observations = append(observations, Observation{
			Timestamp: started,
			Symbol:    symbol,
			Count:     count,
		})
	}
	return observations
}

func (c *Coordinator) pause() time.Duration {
	if c.waitMax <= 0 {
		return 0
	}
	if c.waitMax <= c.waitMin {
		return c.waitMin
	}
	return c.waitMin + time.Duration(c.rng.Int63n(int64(c.waitMax-c.waitMin)+1))
}
