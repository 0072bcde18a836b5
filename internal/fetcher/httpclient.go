package fetcher

import (
	"time"

	"resty.dev/v3"
)

const defaultRequestTimeout = 10 * time.Second

// NewHTTPClient creates the shared HTTP client for a fetch session.
// Retry handling deliberately does NOT use resty's built-in retry machinery:
// the backoff curve here depends on the failure class (exponential for
// 429/403, uniform range for 5xx/network), which a single retry wait cannot
// express. The client is reused across symbols so connections stay warm; it
// carries no correctness-relevant state.
func NewHTTPClient(baseURL string, timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0)
}
