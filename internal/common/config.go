package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Scoring     ScoringConfig   `toml:"scoring"`
	Dispatch    DispatchConfig  `toml:"dispatch"`
	Budget      BudgetConfig    `toml:"budget"`
	Pricing     PricingConfig   `toml:"pricing"`
	Fetcher     FetcherConfig   `toml:"fetcher"`
	Claude      ClaudeConfig    `toml:"claude"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Sources     SourcesConfig   `toml:"sources"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"`
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// SchedulerConfig controls the periodic batch scheduler.
type SchedulerConfig struct {
	Enabled      bool   `toml:"enabled"`
	Schedule     string `toml:"schedule"`      // Cron schedule format
	BatchSize    int    `toml:"batch_size" validate:"gt=0"`
	BatchTimeout string `toml:"batch_timeout"` // Whole-batch time budget, e.g. "10m"
}

// ScoringConfig controls priority score computation and tier bucketing.
type ScoringConfig struct {
	TierHighThreshold   float64 `toml:"tier_high_threshold" validate:"gte=0,lte=100"`
	TierMediumThreshold float64 `toml:"tier_medium_threshold" validate:"gte=0,lte=100"`
	StalenessHalfLife   float64 `toml:"staleness_half_life_days" validate:"gt=0"` // Days until staleness reaches half its maximum weight
	EWMAAlpha           float64 `toml:"ewma_alpha" validate:"gt=0,lte=1"`         // Smoothing factor for rolling stats
}

// DispatchConfig controls per-job dispatch behavior.
type DispatchConfig struct {
	MaxAttempts    int    `toml:"max_attempts" validate:"gt=0"` // Attempts per dispatch for transient failures
	RetryBackoff   string `toml:"retry_backoff"`                // Linear backoff step between attempts, e.g. "5s"
	Concurrency    int    `toml:"concurrency" validate:"gt=0"`
	AttemptTimeout string `toml:"attempt_timeout"` // Timeout per extraction attempt
}

// BudgetConfig controls model tier selection and the daily cost ceiling.
type BudgetConfig struct {
	DailyCapUSD       float64 `toml:"daily_cap_usd" validate:"gt=0"`
	Override          bool    `toml:"override"` // Explicit override of the daily cap
	PremiumThreshold  float64 `toml:"premium_threshold" validate:"gte=0,lte=100"`
	StandardThreshold float64 `toml:"standard_threshold" validate:"gte=0,lte=100"`
	PremiumCostUSD    float64 `toml:"premium_cost_usd"`  // Estimated cost per premium extraction call
	StandardCostUSD   float64 `toml:"standard_cost_usd"` // Estimated cost per standard extraction call
	EconomyCostUSD    float64 `toml:"economy_cost_usd"`  // Estimated cost per economy extraction call
	ClassifyCostUSD   float64 `toml:"classify_cost_usd"` // Estimated cost per classification call
}

// PricingConfig controls concession normalization thresholds.
type PricingConfig struct {
	DesperateThreshold  float64 `toml:"desperate_threshold" validate:"gt=0,lt=1"`
	AggressiveThreshold float64 `toml:"aggressive_threshold" validate:"gt=0,lt=1"`
	DefaultLeaseMonths  int     `toml:"default_lease_months" validate:"gt=0"`
	MarketBandPct       float64 `toml:"market_band_pct"` // +/- band around the market reference treated as at_market
}

// FetcherConfig contains HTML fetching configuration
type FetcherConfig struct {
	UserAgent          string            `toml:"user_agent"`
	RequestTimeout     string            `toml:"request_timeout"`
	RequestDelay       string            `toml:"request_delay"` // Minimum delay between requests to same domain
	DomainDelays       map[string]string `toml:"domain_delays"` // Per-domain overrides of request_delay
	MaxBodySize        int               `toml:"max_body_size"` // Maximum response body size in bytes
	MaxContentChars    int               `toml:"max_content_chars"`
	EnableJavaScript   bool              `toml:"enable_javascript"`    // Render with chromedp for JS-heavy listing sites
	JavaScriptWaitTime string            `toml:"javascript_wait_time"` // Time to wait for JavaScript to render
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey        string  `toml:"api_key"`
	PremiumModel  string  `toml:"premium_model"`  // Model for premium-tier extraction
	StandardModel string  `toml:"standard_model"` // Model for standard-tier extraction
	MaxTokens     int     `toml:"max_tokens"`
	Timeout       string  `toml:"timeout"`
	RateLimit     string  `toml:"rate_limit"` // Minimum interval between API calls
	Temperature   float32 `toml:"temperature"`
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey        string  `toml:"api_key"`
	Model         string  `toml:"model"`          // Model for economy-tier extraction
	ClassifyModel string  `toml:"classify_model"` // Model for website-type classification
	Timeout       string  `toml:"timeout"`
	RateLimit     string  `toml:"rate_limit"`
	Temperature   float32 `toml:"temperature"`
}

// SourcesConfig contains configuration for listing source seed files
type SourcesConfig struct {
	Dir string `toml:"dir"` // Directory containing source seed files (TOML/YAML)
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Scheduler: SchedulerConfig{
			Enabled:      true,
			Schedule:     "*/30 * * * *", // Every 30 minutes
			BatchSize:    20,
			BatchTimeout: "10m",
		},
		Scoring: ScoringConfig{
			TierHighThreshold:   70,
			TierMediumThreshold: 40,
			StalenessHalfLife:   3,
			EWMAAlpha:           0.3,
		},
		Dispatch: DispatchConfig{
			MaxAttempts:    3,
			RetryBackoff:   "5s",
			Concurrency:    5,
			AttemptTimeout: "90s",
		},
		Budget: BudgetConfig{
			DailyCapUSD:       50,
			PremiumThreshold:  70,
			StandardThreshold: 40,
			PremiumCostUSD:    0.05,
			StandardCostUSD:   0.01,
			EconomyCostUSD:    0.002,
			ClassifyCostUSD:   0.001,
		},
		Pricing: PricingConfig{
			DesperateThreshold:  0.15,
			AggressiveThreshold: 0.07,
			DefaultLeaseMonths:  12,
			MarketBandPct:       0.05,
		},
		Fetcher: FetcherConfig{
			UserAgent:          "RentRadar/1.0",
			RequestTimeout:     "30s",
			RequestDelay:       "2s",
			MaxBodySize:        5 * 1024 * 1024,
			MaxContentChars:    60000,
			EnableJavaScript:   false,
			JavaScriptWaitTime: "3s",
		},
		Claude: ClaudeConfig{
			PremiumModel:  "claude-sonnet-4-20250514",
			StandardModel: "claude-haiku-3-5-20241022",
			MaxTokens:     8192,
			Timeout:       "5m",
			RateLimit:     "1s",
			Temperature:   0,
		},
		Gemini: GeminiConfig{
			Model:         "gemini-2.0-flash",
			ClassifyModel: "gemini-2.0-flash",
			Timeout:       "2m",
			RateLimit:     "4s",
			Temperature:   0,
		},
		Sources: SourcesConfig{
			Dir: "./sources",
		},
	}
}

// LoadFromFiles loads configuration in priority order: defaults, then each
// file in order (later files override earlier ones), then environment.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies RENTRADAR_* environment variable overrides
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("RENTRADAR_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("RENTRADAR_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("RENTRADAR_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("RENTRADAR_DATA_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("RENTRADAR_DAILY_CAP_USD"); v != "" {
		if cap, err := strconv.ParseFloat(v, 64); err == nil {
			config.Budget.DailyCapUSD = cap
		}
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && config.Claude.APIKey == "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && config.Gemini.APIKey == "" {
		config.Gemini.APIKey = v
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks structural constraints and cross-field consistency.
func Validate(config *Config) error {
	v := validator.New()
	if err := v.Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if config.Scoring.TierMediumThreshold > config.Scoring.TierHighThreshold {
		return fmt.Errorf("invalid configuration: tier_medium_threshold (%.1f) exceeds tier_high_threshold (%.1f)",
			config.Scoring.TierMediumThreshold, config.Scoring.TierHighThreshold)
	}
	if config.Budget.StandardThreshold > config.Budget.PremiumThreshold {
		return fmt.Errorf("invalid configuration: standard_threshold (%.1f) exceeds premium_threshold (%.1f)",
			config.Budget.StandardThreshold, config.Budget.PremiumThreshold)
	}
	if config.Pricing.AggressiveThreshold > config.Pricing.DesperateThreshold {
		return fmt.Errorf("invalid configuration: aggressive_threshold (%.2f) exceeds desperate_threshold (%.2f)",
			config.Pricing.AggressiveThreshold, config.Pricing.DesperateThreshold)
	}

	for _, field := range []struct {
		name  string
		value string
	}{
		{"scheduler.batch_timeout", config.Scheduler.BatchTimeout},
		{"dispatch.retry_backoff", config.Dispatch.RetryBackoff},
		{"dispatch.attempt_timeout", config.Dispatch.AttemptTimeout},
		{"fetcher.request_timeout", config.Fetcher.RequestTimeout},
		{"fetcher.request_delay", config.Fetcher.RequestDelay},
	} {
		if _, err := time.ParseDuration(field.value); err != nil {
			return fmt.Errorf("invalid configuration: %s: %w", field.name, err)
		}
	}

	for domain, delay := range config.Fetcher.DomainDelays {
		if _, err := time.ParseDuration(delay); err != nil {
			return fmt.Errorf("invalid configuration: fetcher.domain_delays[%s]: %w", domain, err)
		}
	}

	return nil
}

// MustDuration parses a duration string, falling back when empty or invalid.
func MustDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
