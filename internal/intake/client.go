// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package intake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/artifex/internal/logging"
	"github.com/tomtom215/artifex/internal/match"
	"github.com/tomtom215/artifex/internal/metrics"
)

// requestsEndpoint is the analysis-service path serving one request
// context as JSON, keyed by request ID.
const requestsEndpoint = "/api/v1/requests/"

var (
	// ErrRequestNotFound is returned when the analysis service has no
	// request under the given ID. Callers surface it as 404.
	ErrRequestNotFound = errors.New("intake: request not found")

	// ErrUnavailable is returned when the circuit breaker is rejecting
	// calls because the analysis service has been failing. Callers
	// surface it as 503.
	ErrUnavailable = errors.New("intake: analysis service unavailable")
)

// Client fetches feature-ready match requests from the upstream
// design-analysis service. It implements match.RequestSource.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ match.RequestSource = (*Client)(nil)

// NewClient creates an analysis-service client.
//
// Parameters:
//   - baseURL: analysis service base URL (e.g. http://analysis.internal:8080)
//   - apiKey: optional bearer token
//   - timeout: per-call timeout, defaults to 10s when <= 0
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	// Normalize URL (remove trailing slash)
	baseURL = strings.TrimSuffix(baseURL, "/")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	logging.Info().
		Str("url", logging.RedactURL(baseURL)).
		Dur("timeout", timeout).
		Msg("Intake: analysis client configured")

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// RequestContext implements match.RequestSource.
func (c *Client) RequestContext(ctx context.Context, requestID string) (match.Request, error) {
	start := time.Now()
	request, result, err := c.fetch(ctx, requestID)
	metrics.RecordIntakeFetch(result, time.Since(start))
	return request, err
}

// fetch performs the lookup and classifies the outcome for metrics.
func (c *Client) fetch(ctx context.Context, requestID string) (match.Request, string, error) {
	if requestID == "" {
		return match.Request{}, "not_found", fmt.Errorf("%w: empty request id", ErrRequestNotFound)
	}

	resp, err := c.doRequest(ctx, requestsEndpoint+url.PathEscape(requestID))
	if err != nil {
		return match.Request{}, classifyTransportError(err), fmt.Errorf("analysis request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return match.Request{}, "not_found", fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
	}
	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return match.Request{}, "upstream", fmt.Errorf("analysis service returned status %d (failed to read body)", resp.StatusCode)
		}
		return match.Request{}, "upstream", fmt.Errorf("analysis service returned status %d: %s", resp.StatusCode, string(body))
	}

	var request match.Request
	if err := json.NewDecoder(resp.Body).Decode(&request); err != nil {
		return match.Request{}, "decode", fmt.Errorf("failed to decode request context: %w", err)
	}

	// The ranking pipeline keys on the ID; backfill it when the
	// analysis service does not echo it.
	if request.ID == "" {
		request.ID = requestID
	}

	return request, "ok", nil
}

// doRequest performs an HTTP GET request to the analysis service
func (c *Client) doRequest(ctx context.Context, endpoint string) (*http.Response, error) {
	fullURL := c.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	return c.httpClient.Do(req)
}

// classifyTransportError maps a transport failure to a metrics result
// label.
func classifyTransportError(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "timeout"
	}
	return "upstream"
}
