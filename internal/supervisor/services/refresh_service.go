// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/artifex/internal/match"
	"github.com/tomtom215/artifex/internal/metrics"
)

// refreshTimeout bounds a single registry pull including the store write.
const refreshTimeout = 2 * time.Minute

// RefreshOrigin is the provider registry fetch surface.
//
// Satisfied by *directory.HTTPOrigin. The interface keeps this wrapper
// testable without a live registry.
type RefreshOrigin interface {
	FetchAll(ctx context.Context) ([]match.Candidate, error)
}

// RefreshStore is the directory write surface the refresher copies into.
//
// Satisfied by any directory.Store (Memory, Badger, Redis).
type RefreshStore interface {
	Put(ctx context.Context, candidates ...match.Candidate) error
}

// RefreshServiceConfig holds configuration for the directory refresh service.
type RefreshServiceConfig struct {
	// RefreshOnStartup pulls the registry immediately when the service
	// starts instead of waiting for the first interval.
	RefreshOnStartup bool

	// Interval is the base refresh period. Each cycle waits Interval plus
	// up to 10% jitter so replicas sharing a registry don't pull in
	// lockstep. Default: 15m
	Interval time.Duration

	// RatePerSecond caps registry fetches. The limiter also absorbs
	// supervisor restart loops: a crashing refresh cycle can't hammer
	// the registry faster than this. Default: 4
	RatePerSecond float64

	// Burst is the fetch throttle burst size. Default: 8
	Burst int
}

// RefreshService periodically copies the provider registry into the local
// directory store so rankings run against a current candidate pool.
//
// A failed cycle keeps the previous snapshot and retries on the next tick;
// the service itself only exits on context cancellation, leaving restart
// decisions to the supervisor.
type RefreshService struct {
	origin  RefreshOrigin
	store   RefreshStore
	config  RefreshServiceConfig
	limiter *rate.Limiter
	rng     *rand.Rand
	logger  zerolog.Logger
	name    string
}

// NewRefreshService creates a new directory refresh service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRefreshService(origin RefreshOrigin, store RefreshStore, cfg RefreshServiceConfig, logger zerolog.Logger) *RefreshService {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 4
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 8
	}

	return &RefreshService{
		origin:  origin,
		store:   store,
		config:  cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		//nolint:gosec // G404: weak random is fine for interval jitter
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger.With().Str("service", "directory-refresh").Logger(),
		name:   "directory-refresh",
	}
}

// Serve implements the suture.Service interface.
// It runs the refresh loop until the context is canceled.
func (s *RefreshService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("refresh_on_startup", s.config.RefreshOnStartup).
		Dur("interval", s.config.Interval).
		Msg("directory refresh service starting")

	// Refresh on startup if configured
	if s.config.RefreshOnStartup {
		if err := s.refresh(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("initial refresh failed (will retry on schedule)")
		}
	}

	// A timer instead of a ticker so every cycle gets fresh jitter
	timer := time.NewTimer(s.nextInterval())
	defer timer.Stop()

	s.logger.Info().Msg("directory refresh service running")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("directory refresh service shutting down")
			return ctx.Err()

		case <-timer.C:
			s.logger.Debug().Msg("scheduled refresh triggered")
			if err := s.refresh(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled refresh failed")
			}
			timer.Reset(s.nextInterval())
		}
	}
}

// refresh performs one registry pull with its own timeout.
//
// An empty registry response is treated as a registry fault rather than a
// real empty roster: the current snapshot is kept so the API keeps ranking
// against the last good directory.
func (s *RefreshService) refresh(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("refresh throttle wait: %w", err)
	}

	refreshCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	start := time.Now()

	candidates, err := s.origin.FetchAll(refreshCtx)
	if err != nil {
		metrics.RecordDirectoryRefresh(time.Since(start), 0, err)
		return fmt.Errorf("fetch providers: %w", err)
	}

	if len(candidates) == 0 {
		metrics.RecordDirectoryRefresh(time.Since(start), 0, nil)
		s.logger.Warn().Msg("registry returned no providers, keeping current directory")
		return nil
	}

	if err := s.store.Put(refreshCtx, candidates...); err != nil {
		metrics.RecordDirectoryRefresh(time.Since(start), 0, err)
		return fmt.Errorf("store providers: %w", err)
	}

	metrics.RecordDirectoryRefresh(time.Since(start), len(candidates), nil)
	s.logger.Info().
		Int("providers", len(candidates)).
		Dur("duration", time.Since(start)).
		Msg("directory refreshed")

	return nil
}

// nextInterval returns the base interval plus up to 10% jitter.
// Only called from the Serve goroutine, so the rng needs no lock.
func (s *RefreshService) nextInterval() time.Duration {
	span := int64(s.config.Interval) / 10
	if span <= 0 {
		return s.config.Interval
	}
	return s.config.Interval + time.Duration(s.rng.Int63n(span))
}

// String returns the service name for logging.
func (s *RefreshService) String() string {
	return s.name
}
