// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP
// endpoints. It provides consistent structure for both successful and error
// responses, with metadata for observability.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"matches": [...], "stats": {...}},
//	  "metadata": {
//	    "timestamp": "2026-08-25T12:00:00Z",
//	    "latency_ms": 18
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "metadata": {"timestamp": "2026-08-25T12:00:00Z"},
//	  "error": {
//	    "code": "REQUEST_NOT_FOUND",
//	    "message": "No analyzed request with that ID"
//	  }
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
//
// Fields:
//   - Timestamp: Server time when the response was generated (RFC3339)
//   - LatencyMS: Server-side processing time in milliseconds; for ranking
//     endpoints this is the engine's own wall time, omitted when zero
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	LatencyMS int64     `json:"latency_ms,omitempty"`
}

// APIError represents an error response with structured error details.
// Provides a consistent error format across all API endpoints.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - INVALID_JSON: Request body could not be decoded
//   - REQUEST_NOT_FOUND: No analyzed request with the given ID
//   - DIRECTORY_UNAVAILABLE: Candidate directory backend is down
//   - INTAKE_UNAVAILABLE: Design-analysis service is down
//   - MATCH_ERROR: Ranking pipeline failure
//   - RATE_LIMIT_EXCEEDED: Too many requests
//
// Example:
//
//	{
//	  "code": "VALIDATION_ERROR",
//	  "message": "TopK must be 100 or less",
//	  "details": {
//	    "field": "TopK",
//	    "tag": "max",
//	    "value": 500
//	  }
//	}
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
