// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package intake

import (
	"context"
	"fmt"
	"sync"

	"github.com/tomtom215/artifex/internal/match"
)

// Static serves match requests from a fixed in-memory set. Used in
// standalone deployments without an analysis service and in tests.
type Static struct {
	mu       sync.RWMutex
	requests map[string]match.Request
}

var _ match.RequestSource = (*Static)(nil)

// NewStatic creates a source preloaded with the given requests.
// Requests without an ID are ignored.
func NewStatic(requests ...match.Request) *Static {
	s := &Static{requests: make(map[string]match.Request, len(requests))}
	for _, req := range requests {
		if req.ID != "" {
			s.requests[req.ID] = req
		}
	}
	return s
}

// Add registers or replaces a request.
func (s *Static) Add(req match.Request) error {
	if req.ID == "" {
		return fmt.Errorf("intake: request with empty ID")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = req
	return nil
}

// RequestContext implements match.RequestSource.
func (s *Static) RequestContext(_ context.Context, requestID string) (match.Request, error) {
	s.mu.RLock()
	req, ok := s.requests[requestID]
	s.mu.RUnlock()

	if !ok {
		return match.Request{}, fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
	}
	return req, nil
}
