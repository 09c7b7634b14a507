// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ctxKey is private to keep context values collision-free.
type ctxKey uint8

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyCorrelationID
	ctxKeyLogger
)

// GenerateRequestID returns a fresh UUID for stamping an HTTP request.
func GenerateRequestID() string {
	return uuid.New().String()
}

// GenerateCorrelationID returns a short ID for correlating the log lines
// of one request. Eight UUID characters keep the lines readable.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// ContextWithRequestID stores a request ID for downstream log events.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// RequestIDFromContext returns the stored request ID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}

// ContextWithCorrelationID stores a correlation ID for downstream log
// events.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyCorrelationID, id)
}

// CorrelationIDFromContext returns the stored correlation ID, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyCorrelationID).(string)
	return id
}

// ContextWithLogger stores a pre-built logger, overriding the process-wide
// one for code that logs through Ctx or CtxWith.
//
//nolint:gocritic // zerolog.Logger is a value type by design
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger, logger)
}

// LoggerFromContext returns the logger stored in ctx, falling back to the
// process-wide logger.
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(ctxKeyLogger).(zerolog.Logger); ok {
		return l
	}
	return Logger()
}

// CtxWith opens a logger context carrying the request and correlation IDs
// stored in ctx, for handlers that add further fields.
//
//	log := logging.CtxWith(ctx).Str("candidate_id", id).Logger()
func CtxWith(ctx context.Context) zerolog.Context {
	lc := LoggerFromContext(ctx).With()
	if id := CorrelationIDFromContext(ctx); id != "" {
		lc = lc.Str("correlation_id", id)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		lc = lc.Str("request_id", id)
	}
	return lc
}

// Ctx returns a logger stamped with the request and correlation IDs stored
// in ctx. This is how request-scoped code should log.
//
//	logging.Ctx(ctx).Info().Msg("ranking complete")
func Ctx(ctx context.Context) *zerolog.Logger {
	l := CtxWith(ctx).Logger()
	return &l
}

// WithComponent returns a child of the process-wide logger tagged with a
// component name.
//
//	log := logging.WithComponent("directory")
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}
