// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package config

import (
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment
// variables and an optional config file. Provides centralized configuration
// for every component: the HTTP surface, the matching engine, the candidate
// directory, the intake client, and logging.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in sensible defaults for all settings
//  2. Config File: optional YAML file (config.yaml) for persistent settings
//  3. Environment Variables: override any setting (ARTIFEX_ prefix)
//
// Configuration Categories:
//
//  1. Serving:
//     - Server: HTTP server settings (port, host, timeout, environment)
//     - API: rate limiting, CORS, request body bounds
//
//  2. Matching:
//     - Match: engine tuning (banding profile, consensus thresholds, limits)
//     - Strategies: which scoring strategies run, optional CEL expression
//
//  3. Data:
//     - Directory: candidate pool backend (memory, badger, redis), origin
//       refresh settings
//     - Intake: design-analysis service client for request lookup
//
//  4. Observability:
//     - Logging: log levels and output formats
//
// Example - Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	// cfg.Server.Port, cfg.Directory.Backend, etc. are now populated
//
// Validation:
// Load() validates the configuration and returns an error if values are
// out of range (invalid port, negative limits), enum fields hold unknown
// values (directory backend, band profile), or a conditionally required
// field is missing (intake URL when intake is enabled).
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access
// from multiple goroutines.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	API        APIConfig        `koanf:"api"`
	Match      MatchConfig      `koanf:"match"`
	Strategies StrategiesConfig `koanf:"strategies"`
	Directory  DirectoryConfig  `koanf:"directory"`
	Intake     IntakeConfig     `koanf:"intake"` // Optional: request lookup by ID (standalone mode by default)
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // Environment mode: "development", "staging", "production" (default: "development")
}

// APIConfig holds rate limiting, CORS, and request bounds for the HTTP API
type APIConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	MaxBodyBytes      int64         `koanf:"max_body_bytes"` // Upper bound on POST body size
}

// MatchConfig holds matching engine tuning. These values are mapped onto
// the engine's own configuration at startup; the engine re-validates them.
//
// Environment Variables:
//   - ARTIFEX_BAND_PROFILE: Feature banding profile: canonical, legacy (default: canonical)
//   - ARTIFEX_MIN_CONFIDENCE: Consensus confidence floor (default: 0.3)
//   - ARTIFEX_CONFLICT_SPREAD: Score spread marking a conflicted decision (default: 0.35)
//   - ARTIFEX_STRATEGY_TIMEOUT: Per-strategy evaluation deadline (default: 2s)
//   - ARTIFEX_MAX_CONCURRENT: Candidate worker pool size (default: 16)
//   - ARTIFEX_DEFAULT_TOP_K: Result count when the caller does not ask (default: 10)
//   - ARTIFEX_MAX_TOP_K: Cap on requested result count (default: 100)
//   - ARTIFEX_DEFAULT_MIN_SCORE: Score floor when the caller does not ask (default: 0)
//   - ARTIFEX_MAX_CANDIDATES: Largest accepted candidate pool, 0 = unlimited (default: 5000)
type MatchConfig struct {
	BandProfile     string        `koanf:"band_profile"`
	MinConfidence   float64       `koanf:"min_confidence"`
	ConflictSpread  float64       `koanf:"conflict_spread"`
	StrategyTimeout time.Duration `koanf:"strategy_timeout"`
	MaxConcurrent   int           `koanf:"max_concurrent"`
	DefaultTopK     int           `koanf:"default_top_k"`
	MaxTopK         int           `koanf:"max_top_k"`
	DefaultMinScore float64       `koanf:"default_min_score"`
	MaxCandidates   int           `koanf:"max_candidates"`
}

// StrategiesConfig selects which scoring strategies the engine runs.
type StrategiesConfig struct {
	// Enabled lists the built-in strategies to register.
	// Valid entries: analytical, affective, exploratory.
	// Default: all three.
	Enabled []string `koanf:"enabled"`

	// Expr optionally adds a strategy compiled from a CEL expression.
	Expr ExprConfig `koanf:"expr"`
}

// ExprConfig holds the optional CEL expression strategy.
//
// The expression is evaluated per candidate over the extracted feature
// variables (design, price, distance_km, experience, ...) and must produce
// a number in [0, 1].
//
// Environment Variables:
//   - ARTIFEX_EXPR_ENABLED: Enable the expression strategy (default: false)
//   - ARTIFEX_EXPR_NAME: Strategy name in results (default: expr)
//   - ARTIFEX_EXPR_EXPRESSION: CEL expression (required when enabled)
//   - ARTIFEX_EXPR_CONFIDENCE: Confidence reported for results (default: 0.6)
type ExprConfig struct {
	Enabled        bool    `koanf:"enabled"`
	Name           string  `koanf:"name"`
	Expression     string  `koanf:"expression"`
	BaseConfidence float64 `koanf:"base_confidence"`
}

// DirectoryConfig holds the candidate pool backend and refresh settings.
type DirectoryConfig struct {
	// Backend selects the snapshot store: memory, badger, or redis.
	// Default: memory
	Backend string `koanf:"backend"`

	// SeedFile optionally points at a JSON file of candidates loaded into
	// the store at startup. Useful for development and fixtures.
	SeedFile string `koanf:"seed_file"`

	Badger  BadgerConfig  `koanf:"badger"`
	Redis   RedisConfig   `koanf:"redis"`
	Origin  OriginConfig  `koanf:"origin"`
	Refresh RefreshConfig `koanf:"refresh"`
}

// BadgerConfig holds BadgerDB settings for the badger directory backend
type BadgerConfig struct {
	Path string `koanf:"path"`
}

// RedisConfig holds Redis settings for the redis directory backend
type RedisConfig struct {
	Addr      string `koanf:"addr"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"key_prefix"`
}

// OriginConfig holds the upstream provider registry the refresher pulls
// candidate records from.
type OriginConfig struct {
	// URL is the registry base URL (e.g. http://registry.internal:8080).
	// Required when refresh is enabled.
	URL string `koanf:"url"`

	// APIKey is sent as a bearer token on registry calls. Optional.
	APIKey string `koanf:"api_key"`

	// Timeout bounds each registry call.
	// Default: 10s
	Timeout time.Duration `koanf:"timeout"`
}

// RefreshConfig holds the periodic directory refresh loop settings.
type RefreshConfig struct {
	// Enabled turns the refresh loop on. Requires an origin URL.
	// Default: false
	Enabled bool `koanf:"enabled"`

	// Interval is the base refresh period. A small jitter is added to
	// avoid synchronized pulls across replicas.
	// Default: 15m
	Interval time.Duration `koanf:"interval"`

	// RatePerSecond throttles origin calls during a refresh.
	// Default: 4
	RatePerSecond float64 `koanf:"rate_per_second"`

	// Burst is the throttle burst size.
	// Default: 8
	Burst int `koanf:"burst"`
}

// IntakeConfig holds the design-analysis service client settings.
// Intake is OPTIONAL - without it the API serves inline requests only and
// lookup by request ID returns 501.
//
// Environment Variables:
//   - ARTIFEX_INTAKE_ENABLED: Enable the intake client (default: false)
//   - ARTIFEX_INTAKE_URL: Intake service base URL (required when enabled)
//   - ARTIFEX_INTAKE_API_KEY: Bearer token for intake calls (optional)
//   - ARTIFEX_INTAKE_TIMEOUT: Per-call timeout (default: 10s)
type IntakeConfig struct {
	Enabled bool          `koanf:"enabled"`
	URL     string        `koanf:"url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - ARTIFEX_LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - ARTIFEX_LOG_FORMAT: json, console (default: json)
//   - ARTIFEX_LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// JSON is recommended for production (structured, machine-parseable).
	// Console is human-readable for development.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Adds slight performance overhead.
	// Default: false
	Caller bool `koanf:"caller"`
}

// IsProduction returns true if the application is running in production mode.
// Production mode is determined by the ARTIFEX_ENVIRONMENT variable.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}

// Load reads configuration from environment variables and optional config file.
// Configuration is loaded in the following order (later sources override
// earlier ones):
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path in ARTIFEX_CONFIG_PATH)
//  3. Environment variables
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
