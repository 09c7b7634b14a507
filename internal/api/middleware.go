// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/artifex/internal/logging"
	"github.com/tomtom215/artifex/internal/metrics"
)

// ChiMiddlewareConfig holds the tunable middleware settings. Zero values
// fall back to the defaults applied in NewChiMiddleware.
type ChiMiddlewareConfig struct {
	// CORS settings
	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSExposedHeaders   []string
	CORSAllowCredentials bool
	CORSMaxAge           int

	// Rate limiting settings
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool

	// RateLimitOnLimit handles rejected requests. Defaults to the JSON
	// 429 envelope with a rate-limit metric increment.
	RateLimitOnLimit http.HandlerFunc
}

// DefaultChiMiddlewareConfig returns production-safe middleware defaults.
func DefaultChiMiddlewareConfig() ChiMiddlewareConfig {
	return ChiMiddlewareConfig{
		CORSAllowedOrigins:   []string{"*"},
		CORSAllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		CORSExposedHeaders:   []string{"X-Request-ID", "ETag"},
		CORSAllowCredentials: false,
		CORSMaxAge:           86400,
		RateLimitRequests:    100,
		RateLimitWindow:      time.Minute,
	}
}

// ChiMiddleware builds the configurable middleware used by the router.
// The CORS handler is constructed once so every route group shares it.
type ChiMiddleware struct {
	config      ChiMiddlewareConfig
	corsHandler func(http.Handler) http.Handler
}

// NewChiMiddleware applies defaults to cfg and prepares the handlers.
func NewChiMiddleware(cfg ChiMiddlewareConfig) *ChiMiddleware {
	defaults := DefaultChiMiddlewareConfig()
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = defaults.CORSAllowedOrigins
	}
	if len(cfg.CORSAllowedMethods) == 0 {
		cfg.CORSAllowedMethods = defaults.CORSAllowedMethods
	}
	if len(cfg.CORSAllowedHeaders) == 0 {
		cfg.CORSAllowedHeaders = defaults.CORSAllowedHeaders
	}
	if len(cfg.CORSExposedHeaders) == 0 {
		cfg.CORSExposedHeaders = defaults.CORSExposedHeaders
	}
	if cfg.CORSMaxAge <= 0 {
		cfg.CORSMaxAge = defaults.CORSMaxAge
	}
	if cfg.RateLimitRequests <= 0 {
		cfg.RateLimitRequests = defaults.RateLimitRequests
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = defaults.RateLimitWindow
	}
	if cfg.RateLimitOnLimit == nil {
		cfg.RateLimitOnLimit = rateLimitExceeded
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   cfg.CORSAllowedMethods,
		AllowedHeaders:   cfg.CORSAllowedHeaders,
		ExposedHeaders:   cfg.CORSExposedHeaders,
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           cfg.CORSMaxAge,
	})

	return &ChiMiddleware{
		config:      cfg,
		corsHandler: corsHandler,
	}
}

// CORS returns the shared CORS handler. Applied globally so OPTIONS
// preflight requests are answered before routing.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.corsHandler
}

// RateLimit returns the per-IP limiter with the configured defaults.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return passthrough
	}
	return httprate.Limit(
		m.config.RateLimitRequests,
		m.config.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(m.config.RateLimitOnLimit),
	)
}

// RateLimitConfig overrides the request budget for one route group.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// RateLimitHealth is the permissive budget for health endpoints, sized
// for aggressive orchestrator probing.
var RateLimitHealth = RateLimitConfig{Requests: 1000, Window: time.Minute}

// RateLimitCustom returns a per-IP limiter with an explicit budget.
func (m *ChiMiddleware) RateLimitCustom(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return passthrough
	}
	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(m.config.RateLimitOnLimit),
	)
}

// passthrough is the no-op middleware used when rate limiting is
// disabled.
func passthrough(next http.Handler) http.Handler {
	return next
}

// rateLimitExceeded is the default limit handler: count the hit and
// answer with the standard error envelope.
func rateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	metrics.APIRateLimitHits.WithLabelValues(routePattern(r)).Inc()
	respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded, retry later", nil)
}

// routePattern returns the matched Chi route pattern when available,
// falling back to the raw path. Patterns keep metric label cardinality
// bounded.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// RequestIDWithLogging assigns each request an ID, echoes it in the
// X-Request-ID response header, and seeds the logging context with the
// request and correlation IDs before handing off to Chi's RequestID
// middleware.
func RequestIDWithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		chiRequestID := chimiddleware.RequestID(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = logging.GenerateRequestID()
				r.Header.Set("X-Request-ID", requestID)
			}
			w.Header().Set("X-Request-ID", requestID)

			ctx := logging.ContextWithRequestID(r.Context(), requestID)
			ctx = logging.ContextWithCorrelationID(ctx, logging.GenerateCorrelationID())

			chiRequestID.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// APISecurityHeaders sets the standard hardening headers on API
// responses. HSTS is only set when the request arrived over TLS or a
// terminating proxy says it did.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MaxBodyBytes caps request body size. Oversized bodies surface as
// *http.MaxBytesError from the JSON decoder and are answered with 413.
// A non-positive limit disables the cap.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
