// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package models

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestAPIResponse_SuccessOmitsError(t *testing.T) {
	resp := APIResponse{
		Status: "success",
		Data:   map[string]int{"count": 3},
		Metadata: Metadata{
			Timestamp: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
			LatencyMS: 18,
		},
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	body := string(data)
	if strings.Contains(body, `"error"`) {
		t.Errorf("success envelope should omit the error field, got %s", body)
	}
	if !strings.Contains(body, `"latency_ms":18`) {
		t.Errorf("expected latency_ms in metadata, got %s", body)
	}
}

func TestAPIResponse_ErrorEnvelope(t *testing.T) {
	resp := APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: Metadata{
			Timestamp: time.Now(),
		},
		Error: &APIError{
			Code:    "REQUEST_NOT_FOUND",
			Message: "No analyzed request with that ID",
			Details: map[string]interface{}{"request_id": "req-42"},
		},
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded APIResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded.Status != "error" {
		t.Errorf("Status = %q, want error", decoded.Status)
	}
	if decoded.Error == nil {
		t.Fatal("Error field missing after round trip")
	}
	if decoded.Error.Code != "REQUEST_NOT_FOUND" {
		t.Errorf("Error.Code = %q, want REQUEST_NOT_FOUND", decoded.Error.Code)
	}
	if decoded.Error.Details["request_id"] != "req-42" {
		t.Errorf("Error.Details[request_id] = %v, want req-42", decoded.Error.Details["request_id"])
	}
}

func TestMetadata_ZeroLatencyOmitted(t *testing.T) {
	data, err := json.Marshal(Metadata{Timestamp: time.Now()})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "latency_ms") {
		t.Errorf("zero latency should be omitted, got %s", data)
	}
}
