package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"watchertracker/internal/coordinator"
	"watchertracker/internal/fetcher"
	"watchertracker/internal/ratelimit"
	"watchertracker/internal/sink"
	"watchertracker/internal/symbols"
)

func fastPolicy() fetcher.Policy {
	return fetcher.Policy{
		MaxAttempts:          3,
		RateLimitBackoffBase: time.Millisecond,
		BlockedBackoffBase:   2 * time.Millisecond,
		Ceiling:              20 * time.Millisecond,
		JitterMax:            0,
		ServerErrorWaitMin:   time.Millisecond,
		ServerErrorWaitMax:   time.Millisecond,
	}
}

// TestIntegration_FullRun drives the whole pipeline — symbols file, fetcher
// with a flaky upstream, coordinator, CSV sink — against a mock server.
func TestIntegration_FullRun(t *testing.T) {
	flakyHits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/2/streams/symbol/AAPL.json":
			w.Write([]byte(`{"symbol": {"symbol": "AAPL", "watchlist_count": 100}}`))
		case "/api/2/streams/symbol/FLKY.json":
			// rate-limited once, then fine
			flakyHits++
			if flakyHits == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(`{"symbol": {"symbol": "FLKY", "watchlist_count": 200}}`))
		case "/api/2/streams/symbol/TSLA.json":
			w.Write([]byte(`{"symbol": {"symbol": "TSLA", "watchlist_count": 300}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	fs := afero.NewMemMapFs()
	listing := "# portfolio\naapl\nFLKY\nGONE\ntsla\n"
	if err := afero.WriteFile(fs, "symbols.txt", []byte(listing), 0o644); err != nil {
		t.Fatal(err)
	}

	syms, err := symbols.Read(fs, "symbols.txt")
	if err != nil {
		t.Fatalf("symbols.Read() failed: %v", err)
	}
	if len(syms) != 4 {
		t.Fatalf("read %d symbols, want 4", len(syms))
	}

	client := fetcher.NewClient(fetcher.ClientConfig{
		BaseURL: server.URL,
		Variant: fetcher.VariantStreams,
		Policy:  fastPolicy(),
		Timeout: 2 * time.Second,
		Limiter: ratelimit.New(0),
	})

	coord := coordinator.New(client, 0, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	observations := coord.Run(ctx, syms)

	// GONE 404s permanently; the other three succeed, in input order
	if len(observations) != 3 {
		t.Fatalf("run produced %d observations, want 3", len(observations))
	}
	wantOrder := []string{"AAPL", "FLKY", "TSLA"}
	for i, symbol := range wantOrder {
		if observations[i].Symbol != symbol {
			t.Errorf("observation %d = %s, want %s", i, observations[i].Symbol, symbol)
		}
	}
	for _, obs := range observations {
		if !obs.Timestamp.Equal(observations[0].Timestamp) {
			t.Errorf("%s timestamp differs from run timestamp", obs.Symbol)
		}
	}

	csvSink := sink.NewCSV(fs, "watchers.csv")
	if err := csvSink.Ensure(); err != nil {
		t.Fatalf("Ensure() failed: %v", err)
	}
	if err := csvSink.Append(observations); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	data, err := afero.ReadFile(fs, "watchers.csv")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("csv has %d lines, want header + 3 rows:\n%s", len(lines), data)
	}
	if lines[0] != "date,symbol,watchers" {
		t.Errorf("header = %q", lines[0])
	}
	for i, symbol := range wantOrder {
		if !strings.Contains(lines[i+1], ","+symbol+",") {
			t.Errorf("row %d = %q, want symbol %s", i, lines[i+1], symbol)
		}
	}

	// a second run appends after all prior rows
	if err := csvSink.Append(observations); err != nil {
		t.Fatal(err)
	}
	data, _ = afero.ReadFile(fs, "watchers.csv")
	lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 7 {
		t.Errorf("csv has %d lines after second append, want 7", len(lines))
	}
}

// TestIntegration_AllFailures verifies a run where nothing succeeds still
// completes and leaves the log untouched beyond the header.
func TestIntegration_AllFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := fetcher.NewClient(fetcher.ClientConfig{
		BaseURL: server.URL,
		Variant: fetcher.VariantStreams,
		Policy:  fastPolicy(),
		Timeout: 2 * time.Second,
	})

	coord := coordinator.New(client, 0, 0)
	observations := coord.Run(context.Background(), []string{"A", "B", "C"})

	if len(observations) != 0 {
		t.Fatalf("run produced %d observations, want 0", len(observations))
	}

	fs := afero.NewMemMapFs()
	csvSink := sink.NewCSV(fs, "watchers.csv")
	if err := csvSink.Ensure(); err != nil {
		t.Fatal(err)
	}
	if err := csvSink.Append(observations); err != nil {
		t.Fatal(err)
	}

	data, _ := afero.ReadFile(fs, "watchers.csv")
	if strings.TrimRight(string(data), "\n") != "date,symbol,watchers" {
		t.Errorf("csv = %q, want only the header", data)
	}
}

// TestIntegration_ShowVariant runs the pipeline against the symbol show
// endpoint, which exposes followers instead of watchlist_count.
func TestIntegration_ShowVariant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/2/symbols/show/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol": {"symbol": "AAPL", "followers": 555}}`))
	}))
	defer server.Close()

	client := fetcher.NewClient(fetcher.ClientConfig{
		BaseURL: server.URL,
		Variant: fetcher.VariantShow,
		Policy:  fastPolicy(),
		Timeout: 2 * time.Second,
	})

	coord := coordinator.New(client, 0, 0)
	observations := coord.Run(context.Background(), []string{"AAPL"})

	if len(observations) != 1 || observations[0].Count != 555 {
		t.Fatalf("observations = %+v, want one AAPL row with count 555", observations)
	}
}
