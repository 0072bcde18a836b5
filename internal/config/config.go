package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the watcher tracker.
type Config struct {
	// Input / output files
	SymbolsFile string `mapstructure:"symbols_file"`
	CSVFile     string `mapstructure:"csv_file"`

	// Upstream endpoint
	BaseURL  string `mapstructure:"base_url"`
	Endpoint string `mapstructure:"endpoint"` // "streams" (watchlist_count) or "show" (followers)

	// Retry policy
	MaxRetries           int           `mapstructure:"max_retries"`
	RequestTimeout       time.Duration `mapstructure:"request_timeout"`
	RateLimitBackoffBase time.Duration `mapstructure:"rate_limit_backoff_base"`
	BlockedBackoffBase   time.Duration `mapstructure:"blocked_backoff_base"`
	BackoffCeiling       time.Duration `mapstructure:"backoff_ceiling"`
	JitterMax            time.Duration `mapstructure:"jitter_max"`
	ServerErrorWaitMin   time.Duration `mapstructure:"server_error_wait_min"`
	ServerErrorWaitMax   time.Duration `mapstructure:"server_error_wait_max"`

	// Pacing
	SymbolWaitMin     time.Duration `mapstructure:"symbol_wait_min"`
	SymbolWaitMax     time.Duration `mapstructure:"symbol_wait_max"`
	RequestsPerMinute float64       `mapstructure:"requests_per_minute"`
}

// Load reads configuration from environment variables and an optional
// config.yaml. Environment variables take precedence over file values, and
// every knob has a working default, so a bare binary next to a symbols.txt
// runs without any configuration at all.
func Load() (*Config, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.SetDefault("symbols_file", "symbols.txt")
	v.SetDefault("csv_file", "stocktwits_watchers.csv")
	v.SetDefault("base_url", "https://api.stocktwits.com")
	v.SetDefault("endpoint", "streams")
	v.SetDefault("max_retries", 5)
	v.SetDefault("request_timeout", "10s")
	v.SetDefault("rate_limit_backoff_base", "15s")
	v.SetDefault("blocked_backoff_base", "30s")
	v.SetDefault("backoff_ceiling", "2m")
	v.SetDefault("jitter_max", "2s")
	v.SetDefault("server_error_wait_min", "5s")
	v.SetDefault("server_error_wait_max", "15s")
	v.SetDefault("symbol_wait_min", "2s")
	v.SetDefault("symbol_wait_max", "6s")
	v.SetDefault("requests_per_minute", 30)

	// Optionally read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.watchertracker")
	_ = v.ReadInConfig()

	v.BindEnv("symbols_file", "SYMBOLS_FILE")
	v.BindEnv("csv_file", "CSV_FILE")
	v.BindEnv("base_url", "STOCKTWITS_BASE_URL")
	v.BindEnv("endpoint", "STOCKTWITS_ENDPOINT")
	v.BindEnv("max_retries", "MAX_RETRIES")
	v.BindEnv("request_timeout", "REQUEST_TIMEOUT")
	v.BindEnv("rate_limit_backoff_base", "RATE_LIMIT_BACKOFF_BASE")
	v.BindEnv("blocked_backoff_base", "BLOCKED_BACKOFF_BASE")
	v.BindEnv("backoff_ceiling", "BACKOFF_CEILING")
	v.BindEnv("jitter_max", "JITTER_MAX")
	v.BindEnv("server_error_wait_min", "SERVER_ERROR_WAIT_MIN")
	v.BindEnv("server_error_wait_max", "SERVER_ERROR_WAIT_MAX")
	v.BindEnv("symbol_wait_min", "SYMBOL_WAIT_MIN")
	v.BindEnv("symbol_wait_max", "SYMBOL_WAIT_MAX")
	v.BindEnv("requests_per_minute", "REQUESTS_PER_MINUTE")

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	var bad []string
	if c.SymbolsFile == "" {
		bad = append(bad, "symbols_file must not be empty")
	}
	if c.CSVFile == "" {
		bad = append(bad, "csv_file must not be empty")
	}
	if c.BaseURL == "" {
		bad = append(bad, "base_url must not be empty")
	}
	switch c.Endpoint {
	case "streams", "show":
	default:
		bad = append(bad, fmt.Sprintf("endpoint must be \"streams\" or \"show\", got %q", c.Endpoint))
	}
	if c.MaxRetries < 1 {
		bad = append(bad, "max_retries must be at least 1")
	}
	if c.RequestTimeout <= 0 {
		bad = append(bad, "request_timeout must be positive")
	}
	if c.RateLimitBackoffBase <= 0 {
		bad = append(bad, "rate_limit_backoff_base must be positive")
	}
	if c.BlockedBackoffBase <= 0 {
		bad = append(bad, "blocked_backoff_base must be positive")
	}
	if c.BackoffCeiling < c.RateLimitBackoffBase || c.BackoffCeiling < c.BlockedBackoffBase {
		bad = append(bad, "backoff_ceiling must be at least the backoff bases")
	}
	if c.JitterMax < 0 {
		bad = append(bad, "jitter_max must not be negative")
	}
	if c.ServerErrorWaitMin < 0 || c.ServerErrorWaitMax < c.ServerErrorWaitMin {
		bad = append(bad, "server_error_wait range must satisfy 0 <= min <= max")
	}
	if c.SymbolWaitMin < 0 || c.SymbolWaitMax < c.SymbolWaitMin {
		bad = append(bad, "symbol_wait range must satisfy 0 <= min <= max")
	}

	if len(bad) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(bad, "; "))
	}
	return nil
}
