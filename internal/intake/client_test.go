// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package intake

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClient_RequestContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/requests/req-123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "req-123",
			"style": "french",
			"palette": {"r": 210, "g": 180, "b": 140},
			"complexity": 0.7,
			"budget_yen": 40000,
			"location": {"lat": 35.0, "lng": 139.0}
		}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "secret", 5*time.Second)

	req, err := c.RequestContext(context.Background(), "req-123")
	if err != nil {
		t.Fatalf("RequestContext() error = %v", err)
	}
	if req.ID != "req-123" || req.Style != "french" || req.BudgetYen != 40000 {
		t.Errorf("unexpected request: %+v", req)
	}
	if req.Palette == nil || req.Palette.R != 210 {
		t.Errorf("palette lost in decode: %+v", req.Palette)
	}
	if req.Location == nil || req.Location.Lat != 35.0 {
		t.Errorf("location lost in decode: %+v", req.Location)
	}
}

func TestClient_BackfillsRequestID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"style":"gradient"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "", 5*time.Second)

	req, err := c.RequestContext(context.Background(), "req-77")
	if err != nil {
		t.Fatalf("RequestContext() error = %v", err)
	}
	if req.ID != "req-77" {
		t.Errorf("ID = %q, want backfilled request ID", req.ID)
	}
}

func TestClient_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	}))
	defer server.Close()

	c := NewClient(server.URL, "", 5*time.Second)

	_, err := c.RequestContext(context.Background(), "ghost")
	if !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "analysis exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, "", 5*time.Second)

	_, err := c.RequestContext(context.Background(), "req-1")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if errors.Is(err, ErrRequestNotFound) {
		t.Error("500 must not be reported as not-found")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("error should name the status, got %v", err)
	}
}

func TestClient_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{broken`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "", 5*time.Second)
	if _, err := c.RequestContext(context.Background(), "req-1"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestClient_EmptyRequestID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("empty request ID must not reach the analysis service")
	}))
	defer server.Close()

	c := NewClient(server.URL, "", 5*time.Second)

	_, err := c.RequestContext(context.Background(), "")
	if !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestClient_EscapesRequestID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// net/http hands the decoded path to the handler; a raw "/" in
		// the ID would have produced an extra path segment instead.
		if r.URL.Path != "/api/v1/requests/req 42" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":"req 42"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "", 5*time.Second)
	if _, err := c.RequestContext(context.Background(), "req 42"); err != nil {
		t.Fatalf("RequestContext() error = %v", err)
	}
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "", 50*time.Millisecond)
	if _, err := c.RequestContext(context.Background(), "req-1"); err == nil {
		t.Fatal("expected timeout error")
	}
}

type fakeNetError struct{ timeout bool }

func (e *fakeNetError) Error() string   { return "fake net error" }
func (e *fakeNetError) Timeout() bool   { return e.timeout }
func (e *fakeNetError) Temporary() bool { return false }

func TestClassifyTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"net timeout", &fakeNetError{timeout: true}, "timeout"},
		{"net non-timeout", &fakeNetError{timeout: false}, "upstream"},
		{"deadline exceeded", context.DeadlineExceeded, "timeout"},
		{"cancellation", context.Canceled, "timeout"},
		{"generic", errors.New("connection refused"), "upstream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyTransportError(tt.err); got != tt.want {
				t.Errorf("classifyTransportError() = %q, want %q", got, tt.want)
			}
		})
	}
}
