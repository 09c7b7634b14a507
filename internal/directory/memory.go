// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package directory

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/artifex/internal/match"
	"github.com/tomtom215/artifex/internal/metrics"
)

// Memory is a map-backed Store for single-instance deployments, tests,
// and development. Safe for concurrent use. Contents vanish on restart;
// seed it from a file or a refresher.
type Memory struct {
	mu        sync.RWMutex
	providers map[string]match.Candidate
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory directory.
func NewMemory() *Memory {
	return &Memory{providers: make(map[string]match.Candidate)}
}

// Name implements Directory.
func (m *Memory) Name() string { return "memory" }

// Snapshot implements Directory. Filtering happens under a read lock;
// every returned candidate is a deep copy.
func (m *Memory) Snapshot(_ context.Context, criteria match.Criteria) ([]match.Candidate, error) {
	start := time.Now()

	m.mu.RLock()
	candidates := make([]match.Candidate, 0, len(m.providers))
	for _, c := range m.providers {
		if matchesCriteria(&c, criteria) {
			candidates = append(candidates, cloneCandidate(c))
		}
	}
	m.mu.RUnlock()

	candidates = finishSnapshot(candidates, criteria.Limit)
	metrics.RecordDirectorySnapshot(m.Name(), len(candidates), time.Since(start), nil)
	return candidates, nil
}

// Put implements Store.
func (m *Memory) Put(_ context.Context, candidates ...match.Candidate) error {
	if err := validatePut(candidates); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range candidates {
		m.providers[candidates[i].ID] = cloneCandidate(candidates[i])
	}
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.providers, id)
	return nil
}

// Len returns the number of stored providers.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.providers)
}

// Close implements Store. A no-op for the in-memory backend.
func (m *Memory) Close() error { return nil }
