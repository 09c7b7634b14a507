// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package models

// HealthStatus represents the health check response.
//
// Status is "healthy" when the directory backend answers and at least one
// scoring strategy is registered, "degraded" otherwise. Mode reflects how
// requests reach the engine: "standalone" serves inline requests only,
// "intake" additionally resolves request IDs through the design-analysis
// service.
type HealthStatus struct {
	Status             string   `json:"status"`
	Mode               string   `json:"mode"` // "standalone" (inline requests only) or "intake" (request lookup enabled)
	Version            string   `json:"version"`
	DirectoryBackend   string   `json:"directory_backend"`
	DirectoryReachable bool     `json:"directory_reachable"`
	IntakeEnabled      bool     `json:"intake_enabled"`
	Strategies         []string `json:"strategies"`
	Uptime             float64  `json:"uptime_seconds"`
}
