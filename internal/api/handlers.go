// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/artifex/internal/directory"
	"github.com/tomtom215/artifex/internal/intake"
	"github.com/tomtom215/artifex/internal/match"
	"github.com/tomtom215/artifex/internal/models"
)

// apiRequestTimeout bounds one ranking call end to end, including the
// directory snapshot and, for lookups, the intake fetch.
const apiRequestTimeout = 10 * time.Second

// Handler serves the matching API. One instance is shared by all
// routes; every field is read-only after construction.
type Handler struct {
	engine    *match.Engine
	directory directory.Directory
	intake    match.RequestSource
	startTime time.Time

	// maxPool caps directory snapshots so the engine's pool bound can
	// never reject a directory-sourced pool.
	maxPool int
}

// NewHandler wires the handler. intake may be nil, which disables the
// GET-by-request-ID endpoint (standalone mode).
func NewHandler(engine *match.Engine, dir directory.Directory, requestSource match.RequestSource) *Handler {
	return &Handler{
		engine:    engine,
		directory: dir,
		intake:    requestSource,
		startTime: time.Now(),
		maxPool:   engine.Config().Limits.MaxCandidates,
	}
}

// Match handles POST /api/v1/match: rank the directory pool for a
// request posted inline.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	var body MatchSubmission
	if !decodeJSONBody(w, r, &body) {
		return
	}
	if apiErr := validateRequest(&body); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), apiRequestTimeout)
	defer cancel()

	h.rank(ctx, w, body.Request, body.Options, body.Criteria)
}

// MatchByRequestID handles GET /api/v1/match/{requestID}: resolve the
// request through the intake client, then rank. Ranking options and
// pool criteria come from query parameters:
//
//	top_k, min_score, strategy_timeout_ms, styles, max_price_yen, limit
func (h *Handler) MatchByRequestID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	requestID := chi.URLParam(r, "requestID")
	if requestID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Request ID is required", nil)
		return
	}
	if h.intake == nil {
		respondError(w, http.StatusNotImplemented, "INTAKE_DISABLED",
			"Request lookup is disabled; POST the request inline to /api/v1/match", nil)
		return
	}

	opts, criteria := matchParamsFromQuery(r)
	if apiErr := validateRequest(&opts); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	if apiErr := validateRequest(&criteria); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), apiRequestTimeout)
	defer cancel()

	req, err := h.intake.RequestContext(ctx, requestID)
	if err != nil {
		h.respondIntakeError(w, requestID, err)
		return
	}

	h.rank(ctx, w, req, opts, criteria)
}

// Explain handles POST /api/v1/match/explain: reconstruct the
// per-strategy breakdown of a previously returned ranked match without
// re-evaluating.
func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	var body ExplainSubmission
	if !decodeJSONBody(w, r, &body) {
		return
	}
	if body.Match.Candidate.ID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "match.candidate.id is required", nil)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   h.engine.Explain(body.Match),
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// EngineStatus handles GET /api/v1/engine/status: registered
// strategies, engine counters, and process uptime.
func (h *Handler) EngineStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"strategies":     h.engine.StrategyNames(),
			"metrics":        h.engine.GetMetrics(),
			"uptime_seconds": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// EngineConfig handles GET /api/v1/engine/config: the effective engine
// configuration with durations rendered human-readable.
func (h *Handler) EngineConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   h.engine.Config(),
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// rank runs the shared snapshot-then-rank flow and writes the response.
func (h *Handler) rank(ctx context.Context, w http.ResponseWriter, req match.Request, opts MatchOptions, criteria MatchCriteria) {
	pool, err := h.directory.Snapshot(ctx, h.poolCriteria(criteria))
	if err != nil {
		h.respondDirectoryError(w, err)
		return
	}

	resp, err := h.engine.Rank(ctx, req, pool, opts.toOptions())
	if err != nil {
		h.respondRankError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   resp,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
			LatencyMS: resp.Metadata.LatencyMS,
		},
	})
}

// poolCriteria clamps the caller's pool limit to the engine's bound.
func (h *Handler) poolCriteria(c MatchCriteria) match.Criteria {
	criteria := c.toCriteria()
	if h.maxPool > 0 && (criteria.Limit <= 0 || criteria.Limit > h.maxPool) {
		criteria.Limit = h.maxPool
	}
	return criteria
}

// respondDirectoryError maps snapshot failures to the error envelope.
func (h *Handler) respondDirectoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, directory.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "DIRECTORY_UNAVAILABLE",
			"Provider directory is unavailable, retry later", err)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "DIRECTORY_TIMEOUT",
			"Provider directory timed out", err)
	default:
		respondError(w, http.StatusInternalServerError, "DIRECTORY_ERROR",
			"Failed to load provider snapshot", err)
	}
}

// respondIntakeError maps request-lookup failures to the error
// envelope.
func (h *Handler) respondIntakeError(w http.ResponseWriter, requestID string, err error) {
	switch {
	case errors.Is(err, intake.ErrRequestNotFound):
		respondAPIError(w, http.StatusNotFound, &models.APIError{
			Code:    "REQUEST_NOT_FOUND",
			Message: "No match request found under this ID",
			Details: map[string]interface{}{"request_id": requestID},
		})
	case errors.Is(err, intake.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "INTAKE_UNAVAILABLE",
			"Analysis service is unavailable, retry later", err)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "INTAKE_TIMEOUT",
			"Analysis service timed out", err)
	default:
		respondError(w, http.StatusBadGateway, "INTAKE_ERROR",
			"Failed to fetch request context", err)
	}
}

// respondRankError maps engine failures to the error envelope. Invalid
// input keeps the engine's field-level message; everything else gets a
// generic message with the cause logged.
func (h *Handler) respondRankError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, match.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case errors.Is(err, match.ErrNoStrategies):
		respondError(w, http.StatusServiceUnavailable, "NO_STRATEGIES",
			"No scoring strategies are registered", err)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "MATCH_TIMEOUT",
			"Ranking timed out", err)
	default:
		respondError(w, http.StatusInternalServerError, "MATCH_ERROR",
			"Ranking failed", err)
	}
}
