// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

// Package main is the entry point for the Artifex server application.
//
// Artifex ranks nail artists and similar service providers for client
// requests. Several scoring strategies evaluate each candidate against a
// shared feature extraction, and their opinions are merged into a single
// consensus ranking with per-candidate explanations.
//
// # Application Architecture
//
// The server implements a layered architecture with suture v4 process
// supervision:
//
//	RootSupervisor ("artifex")
//	├── DataSupervisor ("data-layer")
//	│   └── Directory refresh loop (optional)
//	└── APISupervisor ("api-layer")
//	    └── HTTP server (match, engine, health endpoints)
//
// Component initialization order:
//
//  1. Configuration: Koanf v2 with environment variables and config files
//  2. Directory: candidate store (memory, badger, or redis), optionally seeded
//  3. Intake: optional design-analysis client for request lookup by ID
//  4. Engine: scoring strategies and consensus configuration
//  5. HTTP server: chi router with rate limiting, CORS, and Prometheus metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (ARTIFEX_* prefix, mapping table in internal/config)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// # Standalone Mode
//
// Artifex runs without external services by default: an in-memory directory
// (optionally seeded from a JSON file) and no intake client. Inline match
// requests work fully in this mode; lookup by request ID returns 501.
//
//	export ARTIFEX_SEED_FILE=./seed/providers.json
//	./artifex
//
// Production with a provider registry and design-analysis service:
//
//	export ARTIFEX_DIRECTORY_BACKEND=badger
//	export ARTIFEX_BADGER_PATH=/data/artifex/directory
//	export ARTIFEX_ORIGIN_URL=http://registry.internal:8080
//	export ARTIFEX_REFRESH_ENABLED=true
//	export ARTIFEX_INTAKE_ENABLED=true
//	export ARTIFEX_INTAKE_URL=http://intake.internal:8080
//	./artifex
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Stops the refresh loop and closes the directory store
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/artifex/internal/api"
	"github.com/tomtom215/artifex/internal/config"
	"github.com/tomtom215/artifex/internal/directory"
	"github.com/tomtom215/artifex/internal/intake"
	"github.com/tomtom215/artifex/internal/logging"
	"github.com/tomtom215/artifex/internal/match"
	"github.com/tomtom215/artifex/internal/match/strategies"
	"github.com/tomtom215/artifex/internal/supervisor"
	"github.com/tomtom215/artifex/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().Msg("Starting Artifex with supervisor tree")

	// Log configuration status - show intake status based on Enabled flag
	if cfg.Intake.Enabled {
		logging.Info().
			Str("intake_url", logging.RedactURL(cfg.Intake.URL)).
			Str("directory_backend", cfg.Directory.Backend).
			Str("environment", cfg.Server.Environment).
			Msg("Configuration loaded")
	} else {
		logging.Info().
			Bool("intake_enabled", false).
			Str("directory_backend", cfg.Directory.Backend).
			Str("environment", cfg.Server.Environment).
			Msg("Configuration loaded (standalone mode)")
	}

	// Initialize the directory store and seed it if configured
	store, err := initDirectory(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize directory")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing directory store")
		}
	}()
	logging.Info().Str("backend", store.Name()).Msg("Directory initialized")

	// Initialize intake client with circuit breaker for fault tolerance.
	// Intake is OPTIONAL - without it the API serves inline requests only
	// and lookup by request ID returns 501.
	var requestSource match.RequestSource
	if cfg.Intake.Enabled {
		requestSource = intake.NewBreaker(intake.NewClient(
			cfg.Intake.URL,
			cfg.Intake.APIKey,
			cfg.Intake.Timeout,
		))
		logging.Info().
			Str("url", logging.RedactURL(cfg.Intake.URL)).
			Msg("Intake client initialized")
	} else {
		logging.Info().Msg("Intake integration disabled - running in standalone mode")
	}

	// Create the match engine and register the configured strategies
	engine, err := match.NewEngine(engineConfig(cfg), logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create match engine")
	}
	if err := registerStrategies(engine, cfg); err != nil {
		logging.Fatal().Err(err).Msg("Failed to register strategies")
	}
	logging.Info().
		Strs("strategies", engine.StrategyNames()).
		Msg("Match engine initialized")

	if cfg.API.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (ARTIFEX_DISABLE_RATE_LIMIT=true)")
		logging.Warn().Msg("This should only be used for development and load tests!")
	}

	handler := api.NewHandler(engine, store, requestSource)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create structured logger for supervisor using our slog adapter
	// This bridges zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	// Create supervisor tree
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Data layer: periodic registry refresh (if enabled)
	if cfg.Directory.Refresh.Enabled {
		origin := directory.NewHTTPOrigin(
			cfg.Directory.Origin.URL,
			cfg.Directory.Origin.APIKey,
			cfg.Directory.Origin.Timeout,
		)
		tree.AddDataService(services.NewRefreshService(origin, store, services.RefreshServiceConfig{
			RefreshOnStartup: true,
			Interval:         cfg.Directory.Refresh.Interval,
			RatePerSecond:    cfg.Directory.Refresh.RatePerSecond,
			Burst:            cfg.Directory.Refresh.Burst,
		}, logging.Logger()))
		logging.Info().
			Str("origin", logging.RedactURL(cfg.Directory.Origin.URL)).
			Dur("interval", cfg.Directory.Refresh.Interval).
			Msg("Directory refresh service added")
	}

	// API layer
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// initDirectory builds the configured directory backend, seeds it from the
// seed file if one is set, and wraps remote-capable backends in a circuit
// breaker. The in-memory backend is returned unwrapped - it has no failure
// mode worth isolating.
func initDirectory(cfg *config.Config) (directory.Store, error) {
	var store directory.Store

	switch cfg.Directory.Backend {
	case "badger":
		badgerStore, err := directory.NewBadger(cfg.Directory.Badger.Path)
		if err != nil {
			return nil, err
		}
		store = badgerStore

	case "redis":
		redisStore, err := directory.NewRedis(directory.RedisOptions{
			Addr:      cfg.Directory.Redis.Addr,
			Password:  cfg.Directory.Redis.Password,
			DB:        cfg.Directory.Redis.DB,
			KeyPrefix: cfg.Directory.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		store = redisStore

	default:
		store = directory.NewMemory()
	}

	// Seed before wrapping so a failed seed surfaces the backend error
	// directly instead of tripping the breaker at boot.
	if cfg.Directory.SeedFile != "" {
		n, err := directory.Seed(context.Background(), store, cfg.Directory.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("seed directory from %s: %w", cfg.Directory.SeedFile, err)
		}
		logging.Info().
			Int("providers", n).
			Str("file", cfg.Directory.SeedFile).
			Msg("Directory seeded")
	}

	if cfg.Directory.Backend != "memory" {
		store = directory.NewBreaker(store)
	}

	return store, nil
}

// engineConfig maps the application configuration onto the engine's own
// configuration. The engine re-validates the result.
func engineConfig(cfg *config.Config) *match.Config {
	return &match.Config{
		Bands: match.BandsConfig{
			Profile: cfg.Match.BandProfile,
		},
		Consensus: match.ConsensusConfig{
			MinConfidence:  cfg.Match.MinConfidence,
			ConflictSpread: cfg.Match.ConflictSpread,
		},
		Limits: match.LimitsConfig{
			PerStrategyTimeout:      cfg.Match.StrategyTimeout,
			MaxConcurrentCandidates: cfg.Match.MaxConcurrent,
			DefaultTopK:             cfg.Match.DefaultTopK,
			MaxTopK:                 cfg.Match.MaxTopK,
			DefaultMinScore:         cfg.Match.DefaultMinScore,
			MaxCandidates:           cfg.Match.MaxCandidates,
		},
	}
}

// registerStrategies registers the configured built-in strategies plus the
// optional CEL expression strategy. Config validation has already checked
// the names, so an unknown name here is a programming error.
func registerStrategies(engine *match.Engine, cfg *config.Config) error {
	for _, name := range cfg.Strategies.Enabled {
		var s match.Strategy
		switch name {
		case "analytical":
			s = strategies.NewAnalytical()
		case "affective":
			s = strategies.NewAffective()
		case "exploratory":
			s = strategies.NewExploratory()
		default:
			return fmt.Errorf("unknown strategy %q", name)
		}
		if err := engine.RegisterStrategy(s); err != nil {
			return fmt.Errorf("register strategy %q: %w", name, err)
		}
	}

	if cfg.Strategies.Expr.Enabled {
		expr, err := strategies.NewExpr(
			cfg.Strategies.Expr.Name,
			cfg.Strategies.Expr.Expression,
			cfg.Strategies.Expr.BaseConfidence,
		)
		if err != nil {
			return fmt.Errorf("compile expression strategy: %w", err)
		}
		if err := engine.RegisterStrategy(expr); err != nil {
			return fmt.Errorf("register strategy %q: %w", cfg.Strategies.Expr.Name, err)
		}
		logging.Info().
			Str("name", cfg.Strategies.Expr.Name).
			Float64("base_confidence", cfg.Strategies.Expr.BaseConfidence).
			Msg("Expression strategy registered")
	}

	return nil
}
