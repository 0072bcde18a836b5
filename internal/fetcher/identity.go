package fetcher

// Identity is one plausible browser fingerprint attached to a request.
// Varying the fingerprint across attempts reduces the chance of pattern-based
// blocking by the upstream's anti-bot layer. This is a heuristic, not a
// correctness requirement.
type Identity struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
	Referer        string
}

// Headers returns the request headers for this identity.
func (id Identity) Headers() map[string]string {
	return map[string]string{
		"User-Agent":      id.UserAgent,
		"Accept":          id.Accept,
		"Accept-Language": id.AcceptLanguage,
		"Referer":         id.Referer,
		"Connection":      "keep-alive",
	}
}

// IdentityPool holds the identities a client picks from at random per attempt.
type IdentityPool struct {
	identities []Identity
}

// NewIdentityPool creates a pool from the given identities.
// An empty slice falls back to the default pool.
func NewIdentityPool(identities []Identity) *IdentityPool {
	if len(identities) == 0 {
		return DefaultIdentityPool()
	}
	return &IdentityPool{identities: identities}
}

// DefaultIdentityPool returns a pool of current desktop browser fingerprints.
func DefaultIdentityPool() *IdentityPool {
	const (
		jsonAccept = "application/json, text/javascript, */*; q=0.01"
		referer    = "https://stocktwits.com/"
	)
	return &IdentityPool{identities: []Identity{
		{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
				"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
			Accept:         jsonAccept,
			AcceptLanguage: "en-US,en;q=0.9",
			Referer:        referer,
		},
		{
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
				"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
			Accept:         jsonAccept,
			AcceptLanguage: "en-US,en;q=0.8",
			Referer:        referer,
		},
		{
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:124.0) Gecko/20100101 Firefox/124.0",
			Accept:         jsonAccept,
			AcceptLanguage: "en-US,en;q=0.5",
			Referer:        referer,
		},
		{
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
				"AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
			Accept:         jsonAccept,
			AcceptLanguage: "en-US,en;q=0.9",
			Referer:        referer,
		},
		{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
				"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36 Edg/123.0.0.0",
			Accept:         jsonAccept,
			AcceptLanguage: "en-GB,en;q=0.9",
			Referer:        referer,
		},
	}}
}

// Size returns the number of identities in the pool.
func (p *IdentityPool) Size() int {
	return len(p.identities)
}

// Pick selects a random identity from the pool.
func (p *IdentityPool) Pick(rng Rand) Identity {
	return p.identities[rng.Int63n(int64(len(p.identities)))]
}
