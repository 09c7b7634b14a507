// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package config

import (
	"fmt"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	if err := c.validateMatch(); err != nil {
		return err
	}

	if err := c.validateStrategies(); err != nil {
		return err
	}

	if err := c.validateDirectory(); err != nil {
		return err
	}

	if err := c.validateIntake(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("ARTIFEX_HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout < time.Second || c.Server.Timeout > 10*time.Minute {
		return fmt.Errorf("ARTIFEX_HTTP_TIMEOUT must be between 1s and 10m")
	}
	return nil
}

// Rate limit and body bounds
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
	minBodyBytes         = 1 << 10     // 1KB
	maxBodyBytes         = 64 << 20    // 64MB
)

// validateAPI validates rate limiting, CORS, and body bound configuration
func (c *Config) validateAPI() error {
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	if err := c.validateCORSOrigins(); err != nil {
		return err
	}
	return c.validateBodyBytes()
}

// validateRateLimits validates rate limiting configuration bounds.
// Ensures rate limit values are within sensible ranges to prevent
// misconfiguration that could lead to DoS or ineffective protection.
func (c *Config) validateRateLimits() error {
	if c.API.RateLimitDisabled {
		return nil
	}

	if c.API.RateLimitReqs < minRateLimitRequests || c.API.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("ARTIFEX_RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.API.RateLimitWindow < minRateLimitWindow || c.API.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("ARTIFEX_RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validateCORSOrigins validates each configured CORS origin entry
func (c *Config) validateCORSOrigins() error {
	for _, origin := range c.API.CORSOrigins {
		if err := validateCORSOrigin(origin); err != nil {
			return fmt.Errorf("ARTIFEX_CORS_ORIGINS entry %q is invalid: %w", origin, err)
		}
	}
	return nil
}

// validateBodyBytes validates the request body size bound
func (c *Config) validateBodyBytes() error {
	if c.API.MaxBodyBytes < minBodyBytes || c.API.MaxBodyBytes > maxBodyBytes {
		return fmt.Errorf("ARTIFEX_MAX_BODY_BYTES must be between %d (1KB) and %d (64MB)", minBodyBytes, maxBodyBytes)
	}
	return nil
}

// validBandProfiles defines the allowed feature banding profiles
var validBandProfiles = map[string]bool{
	"":          true, // empty means canonical
	"canonical": true,
	"legacy":    true,
}

// Match engine bounds
const (
	minStrategyTimeout = 10 * time.Millisecond
	maxStrategyTimeout = time.Minute
	maxConcurrentCap   = 256
	maxTopKCap         = 1000
	maxCandidatesCap   = 1000000
)

// validateMatch validates matching engine configuration
func (c *Config) validateMatch() error {
	if !validBandProfiles[c.Match.BandProfile] {
		return fmt.Errorf("ARTIFEX_BAND_PROFILE must be one of: canonical, legacy")
	}
	if c.Match.MinConfidence < 0 || c.Match.MinConfidence >= 1 {
		return fmt.Errorf("ARTIFEX_MIN_CONFIDENCE must be at least 0 and less than 1")
	}
	if c.Match.ConflictSpread <= 0 || c.Match.ConflictSpread > 1 {
		return fmt.Errorf("ARTIFEX_CONFLICT_SPREAD must be greater than 0 and at most 1")
	}
	if c.Match.StrategyTimeout < minStrategyTimeout || c.Match.StrategyTimeout > maxStrategyTimeout {
		return fmt.Errorf("ARTIFEX_STRATEGY_TIMEOUT must be between %v and %v", minStrategyTimeout, maxStrategyTimeout)
	}
	if c.Match.MaxConcurrent < 1 || c.Match.MaxConcurrent > maxConcurrentCap {
		return fmt.Errorf("ARTIFEX_MAX_CONCURRENT must be between 1 and %d", maxConcurrentCap)
	}
	return c.validateMatchResultBounds()
}

// validateMatchResultBounds validates top-k, score floor, and pool bounds
func (c *Config) validateMatchResultBounds() error {
	if c.Match.DefaultTopK < 1 {
		return fmt.Errorf("ARTIFEX_DEFAULT_TOP_K must be at least 1")
	}
	if c.Match.MaxTopK < c.Match.DefaultTopK || c.Match.MaxTopK > maxTopKCap {
		return fmt.Errorf("ARTIFEX_MAX_TOP_K must be between ARTIFEX_DEFAULT_TOP_K (%d) and %d", c.Match.DefaultTopK, maxTopKCap)
	}
	if c.Match.DefaultMinScore < 0 || c.Match.DefaultMinScore >= 1 {
		return fmt.Errorf("ARTIFEX_DEFAULT_MIN_SCORE must be at least 0 and less than 1")
	}
	if c.Match.MaxCandidates < 0 || c.Match.MaxCandidates > maxCandidatesCap {
		return fmt.Errorf("ARTIFEX_MAX_CANDIDATES must be between 0 and %d", maxCandidatesCap)
	}
	return nil
}

// validBuiltinStrategies defines the built-in strategy names
var validBuiltinStrategies = map[string]bool{
	"analytical":  true,
	"affective":   true,
	"exploratory": true,
}

// validateStrategies validates the strategy lineup
func (c *Config) validateStrategies() error {
	for _, name := range c.Strategies.Enabled {
		if !validBuiltinStrategies[name] {
			return fmt.Errorf("ARTIFEX_STRATEGIES entry %q is invalid, must be one of: analytical, affective, exploratory", name)
		}
	}

	if len(c.Strategies.Enabled) == 0 && !c.Strategies.Expr.Enabled {
		return fmt.Errorf("at least one strategy must be enabled: set ARTIFEX_STRATEGIES or ARTIFEX_EXPR_ENABLED=true")
	}

	return c.validateExpr()
}

// validateExpr validates the expression strategy (only if enabled)
func (c *Config) validateExpr() error {
	if !c.Strategies.Expr.Enabled {
		return nil
	}

	if c.Strategies.Expr.Expression == "" {
		return fmt.Errorf("ARTIFEX_EXPR_EXPRESSION is required when ARTIFEX_EXPR_ENABLED=true")
	}
	if c.Strategies.Expr.Name == "" {
		return fmt.Errorf("ARTIFEX_EXPR_NAME must not be empty")
	}
	for _, name := range c.Strategies.Enabled {
		if name == c.Strategies.Expr.Name {
			return fmt.Errorf("ARTIFEX_EXPR_NAME %q collides with an enabled built-in strategy", name)
		}
	}
	if c.Strategies.Expr.BaseConfidence <= 0 || c.Strategies.Expr.BaseConfidence > 1 {
		return fmt.Errorf("ARTIFEX_EXPR_CONFIDENCE must be greater than 0 and at most 1")
	}
	return nil
}

// validDirectoryBackends defines the allowed directory backends
var validDirectoryBackends = map[string]bool{
	"memory": true,
	"badger": true,
	"redis":  true,
}

// Directory refresh bounds
const (
	minRefreshInterval = 10 * time.Second
	maxRefreshInterval = 24 * time.Hour
	maxRefreshRate     = 1000.0
	maxRefreshBurst    = 10000
)

// validateDirectory validates directory backend and refresh configuration
func (c *Config) validateDirectory() error {
	if !validDirectoryBackends[c.Directory.Backend] {
		return fmt.Errorf("ARTIFEX_DIRECTORY_BACKEND must be one of: memory, badger, redis")
	}

	if c.Directory.Backend == "badger" && c.Directory.Badger.Path == "" {
		return fmt.Errorf("ARTIFEX_BADGER_PATH is required when ARTIFEX_DIRECTORY_BACKEND=badger")
	}
	if c.Directory.Backend == "redis" {
		if c.Directory.Redis.Addr == "" {
			return fmt.Errorf("ARTIFEX_REDIS_ADDR is required when ARTIFEX_DIRECTORY_BACKEND=redis")
		}
		if c.Directory.Redis.DB < 0 || c.Directory.Redis.DB > 15 {
			return fmt.Errorf("ARTIFEX_REDIS_DB must be between 0 and 15")
		}
	}

	if c.Directory.Origin.URL != "" {
		if err := validateHTTPURL(c.Directory.Origin.URL, "ARTIFEX_ORIGIN_URL"); err != nil {
			return fmt.Errorf("ARTIFEX_ORIGIN_URL is invalid: %w", err)
		}
		if c.Directory.Origin.Timeout < time.Second || c.Directory.Origin.Timeout > 2*time.Minute {
			return fmt.Errorf("ARTIFEX_ORIGIN_TIMEOUT must be between 1s and 2m")
		}
	}

	return c.validateRefresh()
}

// validateRefresh validates the refresh loop settings (only if enabled)
func (c *Config) validateRefresh() error {
	if !c.Directory.Refresh.Enabled {
		return nil
	}

	if c.Directory.Origin.URL == "" {
		return fmt.Errorf("ARTIFEX_ORIGIN_URL is required when ARTIFEX_REFRESH_ENABLED=true")
	}
	if c.Directory.Refresh.Interval < minRefreshInterval || c.Directory.Refresh.Interval > maxRefreshInterval {
		return fmt.Errorf("ARTIFEX_REFRESH_INTERVAL must be between %v and %v", minRefreshInterval, maxRefreshInterval)
	}
	if c.Directory.Refresh.RatePerSecond <= 0 || c.Directory.Refresh.RatePerSecond > maxRefreshRate {
		return fmt.Errorf("ARTIFEX_REFRESH_RATE must be greater than 0 and at most %v", maxRefreshRate)
	}
	if c.Directory.Refresh.Burst < 1 || c.Directory.Refresh.Burst > maxRefreshBurst {
		return fmt.Errorf("ARTIFEX_REFRESH_BURST must be between 1 and %d", maxRefreshBurst)
	}
	return nil
}

// validateIntake validates intake client configuration (only if enabled)
func (c *Config) validateIntake() error {
	if !c.Intake.Enabled {
		return nil // Intake is optional - no validation needed when disabled
	}

	if c.Intake.URL == "" {
		return fmt.Errorf("ARTIFEX_INTAKE_URL is required when ARTIFEX_INTAKE_ENABLED=true")
	}
	if err := validateHTTPURL(c.Intake.URL, "ARTIFEX_INTAKE_URL"); err != nil {
		return fmt.Errorf("ARTIFEX_INTAKE_URL is invalid: %w", err)
	}
	if c.Intake.Timeout < time.Second || c.Intake.Timeout > 2*time.Minute {
		return fmt.Errorf("ARTIFEX_INTAKE_TIMEOUT must be between 1s and 2m")
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("ARTIFEX_LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("ARTIFEX_LOG_FORMAT must be one of: json, console")
	}
	return nil
}
