package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/afero"

	"watchertracker/internal/config"
	"watchertracker/internal/coordinator"
	"watchertracker/internal/fetcher"
	"watchertracker/internal/ratelimit"
	"watchertracker/internal/sink"
	"watchertracker/internal/symbols"
)

func main() {
	checkSymbol := flag.String("check", "", "fetch one symbol once (no retries) to verify API access, then exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	variant, err := fetcher.ParseVariant(cfg.Endpoint)
	if err != nil {
		log.Fatalf("Invalid endpoint: %v", err)
	}

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	policy := fetcher.Policy{
		MaxAttempts:          cfg.MaxRetries,
		RateLimitBackoffBase: cfg.RateLimitBackoffBase,
		BlockedBackoffBase:   cfg.BlockedBackoffBase,
		Ceiling:              cfg.BackoffCeiling,
		JitterMax:            cfg.JitterMax,
		ServerErrorWaitMin:   cfg.ServerErrorWaitMin,
		ServerErrorWaitMax:   cfg.ServerErrorWaitMax,
	}

	if *checkSymbol != "" {
		// Connectivity probe: one attempt, no retries
		policy.MaxAttempts = 1
		client := fetcher.NewClient(fetcher.ClientConfig{
			BaseURL: cfg.BaseURL,
			Variant: variant,
			Policy:  policy,
			Timeout: cfg.RequestTimeout,
		})
		symbol := strings.ToUpper(*checkSymbol)
		count, err := client.Fetch(ctx, symbol)
		if err != nil {
			log.Fatalf("Connectivity check failed for %s: %v", symbol, err)
		}
		fmt.Printf("%s: %d\n", symbol, count)
		return
	}

	fs := afero.NewOsFs()

	// Step 1: Read symbols
	syms, err := symbols.Read(fs, cfg.SymbolsFile)
	if err != nil {
		log.Fatalf("Failed to read symbols: %v", err)
	}
	if len(syms) == 0 {
		log.Fatalf("No symbols to process. Please check %q.", cfg.SymbolsFile)
	}

	// Step 2: Ensure the CSV log exists
	csvSink := sink.NewCSV(fs, cfg.CSVFile)
	if err := csvSink.Ensure(); err != nil {
		log.Fatalf("Failed to prepare CSV log: %v", err)
	}

	// Step 3: Fetch every symbol and append the successes
	client := fetcher.NewClient(fetcher.ClientConfig{
		BaseURL: cfg.BaseURL,
		Variant: variant,
		Policy:  policy,
		Timeout: cfg.RequestTimeout,
		Limiter: ratelimit.New(cfg.RequestsPerMinute),
	})

	coord := coordinator.New(client, cfg.SymbolWaitMin, cfg.SymbolWaitMax)
	observations := coord.Run(ctx, syms)

	if len(observations) > 0 {
		if err := csvSink.Append(observations); err != nil {
			log.Fatalf("Failed to append to CSV log: %v", err)
		}
	}

	fmt.Printf("Recorded %d of %d symbols to %s\n", len(observations), len(syms), cfg.CSVFile)
}
