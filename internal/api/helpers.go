// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/artifex/internal/logging"
	"github.com/tomtom215/artifex/internal/models"
	"github.com/tomtom215/artifex/internal/validation"
)

// sanitizeLogValue strips control characters from user-supplied strings
// before they reach the log stream, preventing log injection.
func sanitizeLogValue(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			sb.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// respondJSON writes the envelope with an ETag computed over the body.
// Rankings reflect the live directory, so clients must revalidate
// rather than reuse cached responses.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Vary", "Accept-Encoding")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	etag := generateETag(data)
	w.Header().Set("ETag", etag)

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write response")
	}
}

// generateETag computes an FNV-1a hash of the response body.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// respondError writes the error envelope. The underlying error, when
// present, is logged but never leaked to the client.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().
			Str("code", sanitizeLogValue(code)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API Error")
	}

	respondAPIError(w, status, &models.APIError{
		Code:    code,
		Message: message,
	})
}

// respondAPIError writes a fully built API error, preserving any
// structured details.
func respondAPIError(w http.ResponseWriter, status int, apiErr *models.APIError) {
	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: apiErr,
	})
}

// validateRequest runs struct validation and converts failures to the
// API error shape. Returns nil when the value is valid.
func validateRequest(v interface{}) *models.APIError {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return nil
	}
	apiErr := verr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// decodeJSONBody decodes a JSON request body into v, answering 413 for
// bodies over the configured cap and 400 for malformed JSON. Returns
// false when a response has already been written.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE",
				fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit), nil)
			return false
		}
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON in request body", err)
		return false
	}
	return true
}

// getIntParam returns the query parameter as an int, or defaultValue
// when absent or unparseable.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	str := r.URL.Query().Get(key)
	if str == "" {
		return defaultValue
	}
	var value int
	if _, err := fmt.Sscanf(str, "%d", &value); err != nil {
		return defaultValue
	}
	return value
}

// getInt64Param returns the query parameter as an int64, or
// defaultValue when absent or unparseable.
func getInt64Param(r *http.Request, key string, defaultValue int64) int64 {
	str := r.URL.Query().Get(key)
	if str == "" {
		return defaultValue
	}
	var value int64
	if _, err := fmt.Sscanf(str, "%d", &value); err != nil {
		return defaultValue
	}
	return value
}

// getFloatParam returns the query parameter as a float64, or
// defaultValue when absent or unparseable.
func getFloatParam(r *http.Request, key string, defaultValue float64) float64 {
	str := r.URL.Query().Get(key)
	if str == "" {
		return defaultValue
	}
	var value float64
	if _, err := fmt.Sscanf(str, "%g", &value); err != nil {
		return defaultValue
	}
	return value
}

// parseCommaSeparated splits a comma-separated parameter into trimmed,
// non-empty values. Returns nil for an empty input.
func parseCommaSeparated(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
