// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/artifex/internal/config"
	"github.com/tomtom215/artifex/internal/middleware"
)

// Router assembles the HTTP surface: global middleware, per-group
// middleware, and the route tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	maxBodyBytes  int64
}

// NewRouter builds a router from the application configuration.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	mwConfig := DefaultChiMiddlewareConfig()
	if len(cfg.API.CORSOrigins) > 0 {
		mwConfig.CORSAllowedOrigins = cfg.API.CORSOrigins
	}
	mwConfig.RateLimitRequests = cfg.API.RateLimitReqs
	mwConfig.RateLimitWindow = cfg.API.RateLimitWindow
	mwConfig.RateLimitDisabled = cfg.API.RateLimitDisabled

	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
		maxBodyBytes:  cfg.API.MaxBodyBytes,
	}
}

// Setup builds the route tree. CORS runs globally so OPTIONS preflight
// is answered before routing; instrumentation and compression run only
// on the data-serving groups so probes stay out of the metrics.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	m := router.chiMiddleware
	h := router.handler

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(m.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1/match", func(r chi.Router) {
		r.Use(m.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(middleware.Compression))
		r.Use(MaxBodyBytes(router.maxBodyBytes))
		r.Post("/", h.Match)
		r.Post("/explain", h.Explain)
		r.Get("/{requestID}", h.MatchByRequestID)
	})

	r.Route("/api/v1/engine", func(r chi.Router) {
		r.Use(m.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(middleware.Compression))
		r.Get("/status", h.EngineStatus)
		r.Get("/config", h.EngineConfig)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// chiMiddleware bridges func(http.HandlerFunc) http.HandlerFunc
// middleware into Chi's func(http.Handler) http.Handler shape.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}
