// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

/*
Package config provides centralized configuration management for Artifex.

This package handles loading, validation, and parsing of configuration for
all application components. It ensures consistent configuration across the
service and provides sensible defaults for every setting, so a bare
`artifex` invocation starts a working in-memory instance.

# Configuration Sources

Configuration is loaded with Koanf v2 from three layered sources, later
sources overriding earlier ones:

  - Built-in defaults (always present)
  - Optional YAML config file (config.yaml, or ARTIFEX_CONFIG_PATH)
  - Environment variables (ARTIFEX_ prefix)

# Configuration Structure

The package organizes configuration into logical groups:

  - ServerConfig: HTTP server settings (host, port, timeout, environment)
  - APIConfig: rate limiting, CORS, request body bounds
  - MatchConfig: matching engine tuning (banding, consensus, limits)
  - StrategiesConfig: scoring strategy lineup, optional CEL expression
  - DirectoryConfig: candidate pool backend and refresh loop
  - IntakeConfig: design-analysis service client
  - LoggingConfig: log level and output format

# Environment Variables

All variables carry the ARTIFEX_ prefix. Unprefixed or unknown variables
are ignored.

HTTP Server:
  - ARTIFEX_HTTP_HOST: Bind address (default: 0.0.0.0)
  - ARTIFEX_HTTP_PORT: Listen port (default: 8085)
  - ARTIFEX_HTTP_TIMEOUT: Read/write timeout (default: 30s)
  - ARTIFEX_ENVIRONMENT: development, staging, production (default: development)

API:
  - ARTIFEX_RATE_LIMIT_REQUESTS: Requests allowed per window (default: 100)
  - ARTIFEX_RATE_LIMIT_WINDOW: Rate limit window (default: 1m)
  - ARTIFEX_DISABLE_RATE_LIMIT: Disable rate limiting (default: false)
  - ARTIFEX_CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - ARTIFEX_MAX_BODY_BYTES: Max POST body size (default: 1048576)

Match Engine:
  - ARTIFEX_BAND_PROFILE: canonical or legacy banding tables (default: canonical)
  - ARTIFEX_MIN_CONFIDENCE: Consensus confidence floor (default: 0.3)
  - ARTIFEX_CONFLICT_SPREAD: Conflict annotation threshold (default: 0.35)
  - ARTIFEX_STRATEGY_TIMEOUT: Per-strategy deadline (default: 2s)
  - ARTIFEX_MAX_CONCURRENT: Candidate worker pool size (default: 16)
  - ARTIFEX_DEFAULT_TOP_K / ARTIFEX_MAX_TOP_K: Result count bounds (10 / 100)
  - ARTIFEX_DEFAULT_MIN_SCORE: Default score floor (default: 0)
  - ARTIFEX_MAX_CANDIDATES: Max accepted pool size, 0 = unlimited (default: 5000)

Strategies:
  - ARTIFEX_STRATEGIES: Comma-separated built-ins (default: analytical,affective,exploratory)
  - ARTIFEX_EXPR_ENABLED: Enable the CEL expression strategy (default: false)
  - ARTIFEX_EXPR_NAME / ARTIFEX_EXPR_EXPRESSION / ARTIFEX_EXPR_CONFIDENCE

Directory:
  - ARTIFEX_DIRECTORY_BACKEND: memory, badger, or redis (default: memory)
  - ARTIFEX_SEED_FILE: JSON candidate file loaded at startup (optional)
  - ARTIFEX_BADGER_PATH: BadgerDB directory (default: /data/artifex/directory)
  - ARTIFEX_REDIS_ADDR / ARTIFEX_REDIS_PASSWORD / ARTIFEX_REDIS_DB / ARTIFEX_REDIS_KEY_PREFIX
  - ARTIFEX_ORIGIN_URL / ARTIFEX_ORIGIN_API_KEY / ARTIFEX_ORIGIN_TIMEOUT: provider registry
  - ARTIFEX_REFRESH_ENABLED / ARTIFEX_REFRESH_INTERVAL / ARTIFEX_REFRESH_RATE / ARTIFEX_REFRESH_BURST

Intake:
  - ARTIFEX_INTAKE_ENABLED: Enable request lookup by ID (default: false)
  - ARTIFEX_INTAKE_URL: Design-analysis service base URL (required when enabled)
  - ARTIFEX_INTAKE_API_KEY: Bearer token (optional)
  - ARTIFEX_INTAKE_TIMEOUT: Per-call timeout (default: 10s)

Logging:
  - ARTIFEX_LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - ARTIFEX_LOG_FORMAT: json, console (default: json)
  - ARTIFEX_LOG_CALLER: Include caller file:line (default: false)

# Config File Example

	server:
	  port: 8085

	match:
	  band_profile: canonical
	  default_top_k: 10

	strategies:
	  enabled: [analytical, affective, exploratory]
	  expr:
	    enabled: true
	    expression: "design * 0.6 + price * 0.4"

	directory:
	  backend: badger
	  badger:
	    path: /data/artifex/directory

# Validation

Load() validates the assembled configuration before returning it. Bounds
errors name the environment variable to fix, so a misconfigured container
fails fast with an actionable message:

	configuration validation failed: ARTIFEX_HTTP_PORT must be between 1 and 65535

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Printf("listening on %s:%d\n", cfg.Server.Host, cfg.Server.Port)

The returned Config is immutable by convention and safe for concurrent
reads.
*/
package config
