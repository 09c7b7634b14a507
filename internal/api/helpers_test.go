// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package api

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/artifex/internal/models"
)

// ============================================================================
// Response helpers
// ============================================================================

func TestGenerateETag(t *testing.T) {
	t.Parallel()

	t.Run("deterministic for same data", func(t *testing.T) {
		t.Parallel()
		data := []byte(`{"status":"success"}`)
		if generateETag(data) != generateETag(data) {
			t.Error("same data should produce the same ETag")
		}
	})

	t.Run("differs for different data", func(t *testing.T) {
		t.Parallel()
		a := generateETag([]byte(`{"status":"success"}`))
		b := generateETag([]byte(`{"status":"error"}`))
		if a == b {
			t.Errorf("different data produced identical ETag %q", a)
		}
	})

	t.Run("empty data still hashes", func(t *testing.T) {
		t.Parallel()
		if generateETag(nil) == "" {
			t.Error("ETag for empty data should not be empty")
		}
	})
}

func TestRespondJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	respondJSON(rec, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   map[string]string{"hello": "world"},
	})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", got)
	}
	if got := rec.Header().Get("Vary"); got != "Accept-Encoding" {
		t.Errorf("Vary = %q, want Accept-Encoding", got)
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("ETag header should be set")
	}

	var envelope models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if envelope.Status != "success" {
		t.Errorf("Status = %q, want success", envelope.Status)
	}
}

func TestRespondError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	respondError(rec, http.StatusNotFound, "REQUEST_NOT_FOUND", "No match request found under this ID", nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	var envelope models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if envelope.Status != "error" {
		t.Errorf("Status = %q, want error", envelope.Status)
	}
	if envelope.Error == nil {
		t.Fatal("Error should be populated")
	}
	if envelope.Error.Code != "REQUEST_NOT_FOUND" {
		t.Errorf("Code = %q, want REQUEST_NOT_FOUND", envelope.Error.Code)
	}
	if envelope.Error.Message != "No match request found under this ID" {
		t.Errorf("Message = %q", envelope.Error.Message)
	}
	if envelope.Data != nil {
		t.Error("Data should be nil on errors")
	}
	if envelope.Metadata.Timestamp.IsZero() {
		t.Error("Metadata.Timestamp should be set")
	}
}

func TestRespondAPIError_PreservesDetails(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	respondAPIError(rec, http.StatusBadRequest, &models.APIError{
		Code:    "VALIDATION_ERROR",
		Message: "MinScore must be less than 1",
		Details: map[string]interface{}{"field": "MinScore"},
	})

	var envelope models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if envelope.Error == nil {
		t.Fatal("Error should be populated")
	}
	if envelope.Error.Details["field"] != "MinScore" {
		t.Errorf("Details[field] = %v, want MinScore", envelope.Error.Details["field"])
	}
}

// ============================================================================
// Log sanitization
// ============================================================================

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean string unchanged", "artist-042", "artist-042"},
		{"newline escaped", "line1\nline2", "line1\\x0aline2"},
		{"carriage return escaped", "a\rb", "a\\x0db"},
		{"tab escaped", "a\tb", "a\\x09b"},
		{"DEL escaped", "a\x7fb", "a\\x7fb"},
		{"unicode preserved", "ネイル", "ネイル"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := sanitizeLogValue(tt.input); got != tt.want {
				t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ============================================================================
// Request validation
// ============================================================================

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	t.Run("valid options pass", func(t *testing.T) {
		t.Parallel()
		opts := MatchOptions{MinScore: 0.4, TopK: 5}
		if apiErr := validateRequest(&opts); apiErr != nil {
			t.Errorf("validateRequest() = %v, want nil", apiErr)
		}
	})

	t.Run("min_score at 1 rejected", func(t *testing.T) {
		t.Parallel()
		opts := MatchOptions{MinScore: 1.0}
		apiErr := validateRequest(&opts)
		if apiErr == nil {
			t.Fatal("validateRequest() = nil, want error")
		}
		if apiErr.Code != "VALIDATION_ERROR" {
			t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
		}
	})

	t.Run("negative top_k rejected", func(t *testing.T) {
		t.Parallel()
		opts := MatchOptions{TopK: -1}
		if apiErr := validateRequest(&opts); apiErr == nil {
			t.Fatal("validateRequest() = nil, want error")
		}
	})

	t.Run("too many styles rejected", func(t *testing.T) {
		t.Parallel()
		criteria := MatchCriteria{Styles: make([]string, 21)}
		for i := range criteria.Styles {
			criteria.Styles[i] = "french"
		}
		if apiErr := validateRequest(&criteria); apiErr == nil {
			t.Fatal("validateRequest() = nil, want error")
		}
	})
}

// ============================================================================
// Query parameter helpers
// ============================================================================

func TestGetIntParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		query        string
		key          string
		defaultValue int
		want         int
	}{
		{"present value", "top_k=25", "top_k", 10, 25},
		{"missing key uses default", "", "top_k", 10, 10},
		{"unparseable uses default", "top_k=abc", "top_k", 10, 10},
		{"negative parsed", "top_k=-3", "top_k", 10, -3},
		{"zero parsed", "top_k=0", "top_k", 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			if got := getIntParam(req, tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("getIntParam() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetInt64Param(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/?max_price_yen=1500000000000", nil)
	if got := getInt64Param(req, "max_price_yen", 0); got != 1500000000000 {
		t.Errorf("getInt64Param() = %d, want 1500000000000", got)
	}
	if got := getInt64Param(req, "missing", 7); got != 7 {
		t.Errorf("getInt64Param() default = %d, want 7", got)
	}
}

func TestGetFloatParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		query        string
		defaultValue float64
		want         float64
	}{
		{"decimal value", "min_score=0.35", 0, 0.35},
		{"integer form", "min_score=1", 0, 1},
		{"missing uses default", "", 0.5, 0.5},
		{"unparseable uses default", "min_score=high", 0.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			if got := getFloatParam(req, "min_score", tt.defaultValue); got != tt.want {
				t.Errorf("getFloatParam() = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestParseCommaSeparated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single value", "french", []string{"french"}},
		{"multiple values", "french,gradient,nail-art", []string{"french", "gradient", "nail-art"}},
		{"whitespace trimmed", " french , gradient ", []string{"french", "gradient"}},
		{"empty segments dropped", "french,,gradient,", []string{"french", "gradient"}},
		{"empty input", "", nil},
		{"only commas", ",,,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := parseCommaSeparated(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseCommaSeparated(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
