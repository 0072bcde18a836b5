package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"time"

	"resty.dev/v3"

	"watchertracker/internal/ratelimit"
)

// Variant selects which StockTwits endpoint a client hits and which field of
// the response it reads. The two endpoints expose different metrics
// (watchlist_count vs followers), so they are distinct capabilities rather
// than interchangeable spellings of one.
type Variant string

const (
	// VariantStreams reads symbol.watchlist_count from the stream endpoint
	VariantStreams Variant = "streams"
	// VariantShow reads symbol.followers from the symbol show endpoint
	VariantShow Variant = "show"
)

// ParseVariant converts a config string into a Variant.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantStreams, VariantShow:
		return Variant(s), nil
	case "":
		return VariantStreams, nil
	default:
		return "", fmt.Errorf("unknown endpoint variant %q (want %q or %q)", s, VariantStreams, VariantShow)
	}
}

// Path returns the request path for a symbol under this variant.
func (v Variant) Path(symbol string) string {
	if v == VariantShow {
		return fmt.Sprintf("/api/2/symbols/show/%s.json", url.PathEscape(symbol))
	}
	return fmt.Sprintf("/api/2/streams/symbol/%s.json", url.PathEscape(symbol))
}

// Field returns the JSON field name this variant reads.
func (v Variant) Field() string {
	if v == VariantShow {
		return "followers"
	}
	return "watchlist_count"
}

func (v Variant) metric(body *symbolResponse) (int, bool) {
	var count *int
	if v == VariantShow {
		count = body.Symbol.Followers
	} else {
		count = body.Symbol.WatchlistCount
	}
	if count == nil || *count < 0 {
		return 0, false
	}
	return *count, true
}

// symbolResponse is the subset of the StockTwits symbol payload we read.
// Pointers distinguish a missing field from a zero count.
type symbolResponse struct {
	Symbol struct {
		WatchlistCount *int `json:"watchlist_count"`
		Followers      *int `json:"followers"`
	} `json:"symbol"`
}

// ClientConfig configures a StockTwits client. Zero-value optional fields
// (Identities, Rand, Sleep, Logger) get working defaults from NewClient.
type ClientConfig struct {
	BaseURL string
	Variant Variant
	Policy  Policy
	Timeout time.Duration

	// Limiter caps the overall request rate across all attempts and symbols.
	// Nil means no ceiling.
	Limiter *ratelimit.Limiter

	Identities *IdentityPool
	Rand       Rand
	Sleep      func(time.Duration)
	Logger     *slog.Logger
}

// Client fetches per-symbol watcher counts from StockTwits, surviving
// rate-limiting, anti-bot blocking, server errors, and network faults by
// classifying each failure and retrying with a class-appropriate backoff.
type Client struct {
	http       *resty.Client
	variant    Variant
	policy     Policy
	limiter    *ratelimit.Limiter
	identities *IdentityPool
	rng        Rand
	sleep      func(time.Duration)
	logger     *slog.Logger
}

// NewClient creates a StockTwits client.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		http:       NewHTTPClient(cfg.BaseURL, cfg.Timeout),
		variant:    cfg.Variant,
		policy:     cfg.Policy,
		limiter:    cfg.Limiter,
		identities: cfg.Identities,
		rng:        cfg.Rand,
		sleep:      cfg.Sleep,
		logger:     cfg.Logger,
	}
	if c.variant == "" {
		c.variant = VariantStreams
	}
	if c.policy.MaxAttempts <= 0 {
		c.policy = DefaultPolicy()
	}
	if c.identities == nil {
		c.identities = DefaultIdentityPool()
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if c.sleep == nil {
		c.sleep = time.Sleep
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Fetch retrieves the watcher count for one symbol. Retryable failures
// (429, 403, 5xx, network) are retried up to the policy's attempt budget
// with a backoff chosen by failure class; all other failures are terminal
// on the first occurrence.
func (c *Client) Fetch(ctx context.Context, symbol string) (int, error) {
	if symbol == "" {
		return 0, NewClientError(0, "empty symbol")
	}

	var last *FetchError
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return 0, NewNetworkError(err)
			}
		}

		count, ferr := c.attempt(ctx, symbol)
		if ferr == nil {
			c.logger.Info("fetched watcher count", "symbol", symbol, "count", count, "attempt", attempt)
			return count, nil
		}
		if !ferr.Retryable {
			return 0, ferr
		}
		last = ferr
		if attempt == c.policy.MaxAttempts {
			break
		}

		wait := c.policy.Wait(ferr.Type, attempt, c.rng)
		c.logger.Warn("retrying fetch",
			"symbol", symbol,
			"attempt", attempt,
			"max_attempts", c.policy.MaxAttempts,
			"error_type", string(ferr.Type),
			"wait", wait)
		c.sleep(wait)

		if err := ctx.Err(); err != nil {
			return 0, NewNetworkError(err)
		}
	}

	return 0, NewExhaustedError(c.policy.MaxAttempts, last)
}

// attempt performs a single HTTP request for the symbol.
func (c *Client) attempt(ctx context.Context, symbol string) (int, *FetchError) {
	identity := c.identities.Pick(c.rng)

	var body symbolResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(identity.Headers()).
		SetResult(&body).
		Get(c.variant.Path(symbol))
	if err != nil {
		if isTimeout(err) {
			return 0, NewTimeoutError(err)
		}
		return 0, NewNetworkError(err)
	}

	if resp.StatusCode() != http.StatusOK {
		return 0, ClassifyStatus(resp.StatusCode())
	}

	count, ok := c.variant.metric(&body)
	if !ok {
		return 0, NewMalformedError(fmt.Sprintf("no %q in response for %s", c.variant.Field(), symbol))
	}
	return count, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
