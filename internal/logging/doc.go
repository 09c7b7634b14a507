// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

// Package logging is the process-wide zerolog pipeline for Artifex.
//
// Every component logs through this package - the match engine, the
// directory backends, the intake client, the HTTP API and the supervisor
// tree - so output shares one encoding, one level switch and one writer.
// Production emits structured JSON; development can switch to a
// human-readable console format.
//
// # Setup
//
// main loads the configuration and initializes the pipeline once:
//
//	logging.Init(logging.Config{
//	    Level:     cfg.Logging.Level,  // trace, debug, info, warn, error
//	    Format:    cfg.Logging.Format, // json or console
//	    Caller:    cfg.Logging.Caller,
//	    Timestamp: true,
//	})
//
// Until Init runs, the package logs JSON at info level to stderr, so
// early startup failures are still captured.
//
// # Logging
//
// Events are built with zerolog's fluent chain and terminated with Msg
// or Send; a chain without a terminator emits nothing:
//
//	logging.Info().
//	    Str("request_id", id).
//	    Int("candidates", poolSize).
//	    Dur("elapsed", elapsed).
//	    Msg("Ranking complete")
//
// Prefer fields over formatted strings; fields stay machine-searchable.
// Components that keep their own logger take a child instance:
//
//	log := logging.WithComponent("directory")
//	log.Info().Str("backend", name).Msg("Snapshot refreshed")
//
// # Request-scoped logging
//
// The HTTP middleware stamps every request with a request ID and a short
// correlation ID and stores both in the request context. Handler code
// logs through Ctx, which picks them up automatically:
//
//	logging.Ctx(ctx).Info().Msg("Processing match request")
//
// CtxWith does the same but leaves the chain open for extra fields.
//
// # Redaction
//
// The intake client and the origin refresher authenticate against
// upstream services, so URLs, tokens and transport errors derived from
// their requests pass through RedactURL, RedactToken or RedactError
// before reaching an event:
//
//	logging.Warn().
//	    Str("url", logging.RedactURL(endpoint)).
//	    Str("error", logging.RedactError(err.Error())).
//	    Msg("Intake request failed")
//
// # slog bridge
//
// The supervisor tree reports through sutureslog, which wants an
// *slog.Logger. NewSlogLogger adapts slog records onto zerolog so
// supervision events land in the same pipeline:
//
//	h := &sutureslog.Handler{Logger: logging.NewSlogLogger()}
//
// # Testing
//
// NewTestLogger returns an independent logger writing to any io.Writer;
// SetLogger swaps the process-wide logger when a test needs to capture
// package-level output. All exported functions are safe for concurrent
// use.
package logging
