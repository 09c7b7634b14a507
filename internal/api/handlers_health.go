// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/artifex/internal/match"
	"github.com/tomtom215/artifex/internal/models"
)

const serverVersion = "1.0.0"

// healthProbeTimeout bounds the directory reachability probe so health
// endpoints answer quickly even when the backend hangs.
const healthProbeTimeout = 2 * time.Second

// Health handles GET /api/v1/health: the detailed health report.
// Status degrades to "degraded" when the directory probe fails; the
// endpoint itself always answers 200 so monitors can read the detail.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()

	mode := "standalone"
	if h.intake != nil {
		mode = "intake"
	}

	reachable := h.directoryReachable(ctx)
	status := "healthy"
	if !reachable {
		status = "degraded"
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.HealthStatus{
			Status:             status,
			Mode:               mode,
			Version:            serverVersion,
			DirectoryBackend:   h.directory.Name(),
			DirectoryReachable: reachable,
			IntakeEnabled:      h.intake != nil,
			Strategies:         h.engine.StrategyNames(),
			Uptime:             time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthLive handles GET /api/v1/health/live: process liveness only,
// no dependency probes.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   map[string]string{"status": "alive"},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles GET /api/v1/health/ready: whether the service
// can rank right now. Not ready answers 503 so orchestrators hold
// traffic.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()

	strategiesReady := len(h.engine.StrategyNames()) > 0
	directoryReady := h.directoryReachable(ctx)

	data := map[string]interface{}{
		"status":     "ready",
		"strategies": strategiesReady,
		"directory":  directoryReady,
	}

	if !strategiesReady || !directoryReady {
		data["status"] = "not_ready"
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status: "error",
			Data:   data,
			Metadata: models.Metadata{
				Timestamp: time.Now(),
			},
			Error: &models.APIError{
				Code:    "NOT_READY",
				Message: "Service is not ready to accept traffic",
			},
		})
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// directoryReachable probes the snapshot path with a minimal criteria.
func (h *Handler) directoryReachable(ctx context.Context) bool {
	_, err := h.directory.Snapshot(ctx, match.Criteria{Limit: 1})
	return err == nil
}
