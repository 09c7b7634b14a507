// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPOrigin_FetchAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/providers" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"a1","name":"Yuki","base_price_yen":8000},{"id":"b2","name":"Mika"}]`))
	}))
	defer server.Close()

	origin := NewHTTPOrigin(server.URL+"/", "secret", 5*time.Second)

	got, err := origin.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(got))
	}
	if got[0].ID != "a1" || got[0].BasePriceYen != 8000 {
		t.Errorf("unexpected first provider: %+v", got[0])
	}
}

func TestHTTPOrigin_NoAPIKeyOmitsHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want empty", got)
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	origin := NewHTTPOrigin(server.URL, "", 5*time.Second)
	if _, err := origin.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
}

func TestHTTPOrigin_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "registry exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	origin := NewHTTPOrigin(server.URL, "", 5*time.Second)

	_, err := origin.FetchAll(context.Background())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("error should name the status, got %v", err)
	}
}

func TestHTTPOrigin_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	origin := NewHTTPOrigin(server.URL, "", 5*time.Second)
	if _, err := origin.FetchAll(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestHTTPOrigin_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	origin := NewHTTPOrigin(server.URL, "", 50*time.Millisecond)
	if _, err := origin.FetchAll(context.Background()); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestHTTPOrigin_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	origin := NewHTTPOrigin(server.URL, "", 5*time.Second)
	if _, err := origin.FetchAll(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
