// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package directory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/artifex/internal/match"
)

// providersEndpoint is the registry path serving the full provider
// list as a JSON array of candidates.
const providersEndpoint = "/api/v1/providers"

// Origin supplies the authoritative provider list the refresher copies
// into the local Store. In production this is the provider registry
// service.
type Origin interface {
	// FetchAll returns every active provider.
	FetchAll(ctx context.Context) ([]match.Candidate, error)
}

// HTTPOrigin fetches providers from a registry over HTTP.
type HTTPOrigin struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ Origin = (*HTTPOrigin)(nil)

// NewHTTPOrigin creates a registry client.
//
// Parameters:
//   - baseURL: registry base URL (e.g. http://registry.internal:8080)
//   - apiKey: optional bearer token for registry calls
//   - timeout: per-call timeout, defaults to 10s when <= 0
func NewHTTPOrigin(baseURL, apiKey string, timeout time.Duration) *HTTPOrigin {
	// Normalize URL (remove trailing slash)
	baseURL = strings.TrimSuffix(baseURL, "/")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPOrigin{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchAll implements Origin.
func (o *HTTPOrigin) FetchAll(ctx context.Context) ([]match.Candidate, error) {
	resp, err := o.doRequest(ctx, providersEndpoint)
	if err != nil {
		return nil, fmt.Errorf("registry providers request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("registry providers returned status %d (failed to read body)", resp.StatusCode)
		}
		return nil, fmt.Errorf("registry providers returned status %d: %s", resp.StatusCode, string(body))
	}

	var candidates []match.Candidate
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		return nil, fmt.Errorf("failed to decode registry providers: %w", err)
	}

	return candidates, nil
}

// doRequest performs an HTTP GET request to the registry
func (o *HTTPOrigin) doRequest(ctx context.Context, endpoint string) (*http.Response, error) {
	fullURL := o.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	return o.httpClient.Do(req)
}
