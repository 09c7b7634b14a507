// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/artifex/config.yaml",
	"/etc/artifex/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config
// file path.
const ConfigPathEnvVar = "ARTIFEX_CONFIG_PATH"

// envPrefix guards against unrelated environment variables leaking into the
// configuration. Only ARTIFEX_* variables are considered.
const envPrefix = "ARTIFEX_"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8085,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development", // Set ARTIFEX_ENVIRONMENT=production for production checks
		},
		API: APIConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
			MaxBodyBytes:      1 << 20, // 1MB
		},
		Match: MatchConfig{
			BandProfile:     "canonical",
			MinConfidence:   0.3,
			ConflictSpread:  0.35,
			StrategyTimeout: 2 * time.Second,
			MaxConcurrent:   16,
			DefaultTopK:     10,
			MaxTopK:         100,
			DefaultMinScore: 0.0,
			MaxCandidates:   5000,
		},
		Strategies: StrategiesConfig{
			Enabled: []string{"analytical", "affective", "exploratory"},
			Expr: ExprConfig{
				Enabled:        false, // Opt-in only
				Name:           "expr",
				Expression:     "",
				BaseConfidence: 0.6,
			},
		},
		Directory: DirectoryConfig{
			Backend:  "memory", // Standalone mode by default
			SeedFile: "",
			Badger: BadgerConfig{
				Path: "/data/artifex/directory",
			},
			Redis: RedisConfig{
				Addr:      "127.0.0.1:6379",
				Password:  "",
				DB:        0,
				KeyPrefix: "artifex:artist:",
			},
			Origin: OriginConfig{
				URL:     "",
				APIKey:  "",
				Timeout: 10 * time.Second,
			},
			Refresh: RefreshConfig{
				Enabled:       false, // Requires an origin URL
				Interval:      15 * time.Minute,
				RatePerSecond: 4,
				Burst:         8,
			},
		},
		Intake: IntakeConfig{
			Enabled: false, // Standalone mode by default
			URL:     "",
			APIKey:  "",
			Timeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// This function is the preferred way to load configuration and provides:
//   - Type-safe configuration unmarshaling
//   - Clear precedence: ENV > File > Defaults
//   - Support for nested configuration via koanf struct tags
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// ARTIFEX_HTTP_PORT -> server.port
	// ARTIFEX_DIRECTORY_BACKEND -> directory.backend
	envProvider := env.Provider(envPrefix, ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// Search default paths
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as
// comma-separated slices
var sliceConfigPaths = []string{
	"api.cors_origins",
	"strategies.enabled",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. This is necessary because env vars come in as strings,
// but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		// If it's a string, split by comma
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envMappings maps ARTIFEX_ environment variable names (lowercased, prefix
// stripped) to koanf config paths. Variables not listed here are ignored,
// which prevents random environment variables from polluting config.
var envMappings = map[string]string{
	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// API
	"rate_limit_requests": "api.rate_limit_reqs",
	"rate_limit_window":   "api.rate_limit_window",
	"disable_rate_limit":  "api.rate_limit_disabled",
	"cors_origins":        "api.cors_origins",
	"max_body_bytes":      "api.max_body_bytes",

	// Match engine
	"band_profile":      "match.band_profile",
	"min_confidence":    "match.min_confidence",
	"conflict_spread":   "match.conflict_spread",
	"strategy_timeout":  "match.strategy_timeout",
	"max_concurrent":    "match.max_concurrent",
	"default_top_k":     "match.default_top_k",
	"max_top_k":         "match.max_top_k",
	"default_min_score": "match.default_min_score",
	"max_candidates":    "match.max_candidates",

	// Strategies
	"strategies":      "strategies.enabled",
	"expr_enabled":    "strategies.expr.enabled",
	"expr_name":       "strategies.expr.name",
	"expr_expression": "strategies.expr.expression",
	"expr_confidence": "strategies.expr.base_confidence",

	// Directory
	"directory_backend": "directory.backend",
	"seed_file":         "directory.seed_file",
	"badger_path":       "directory.badger.path",
	"redis_addr":        "directory.redis.addr",
	"redis_password":    "directory.redis.password",
	"redis_db":          "directory.redis.db",
	"redis_key_prefix":  "directory.redis.key_prefix",
	"origin_url":        "directory.origin.url",
	"origin_api_key":    "directory.origin.api_key",
	"origin_timeout":    "directory.origin.timeout",
	"refresh_enabled":   "directory.refresh.enabled",
	"refresh_interval":  "directory.refresh.interval",
	"refresh_rate":      "directory.refresh.rate_per_second",
	"refresh_burst":     "directory.refresh.burst",

	// Intake
	"intake_enabled": "intake.enabled",
	"intake_url":     "intake.url",
	"intake_api_key": "intake.api_key",
	"intake_timeout": "intake.timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - ARTIFEX_HTTP_PORT -> server.port
//   - ARTIFEX_DIRECTORY_BACKEND -> directory.backend
//   - ARTIFEX_LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	return ""
}
