// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package directory

import (
	"context"
	"errors"
	"sync"
	"testing"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/artifex/internal/match"
)

// stubStore is a controllable Store for breaker tests.
type stubStore struct {
	mu        sync.Mutex
	fail      error
	snapshots int
	puts      int
	deletes   int
	closed    bool
	pool      []match.Candidate
}

func (s *stubStore) Name() string { return "stub" }

func (s *stubStore) Snapshot(_ context.Context, _ match.Criteria) ([]match.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots++
	if s.fail != nil {
		return nil, s.fail
	}
	return s.pool, nil
}

func (s *stubStore) Put(_ context.Context, candidates ...match.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.fail != nil {
		return s.fail
	}
	s.pool = append(s.pool, candidates...)
	return nil
}

func (s *stubStore) Delete(_ context.Context, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	return s.fail
}

func (s *stubStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubStore) setFail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *stubStore) snapshotCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots
}

func TestBreaker_PassesThroughSuccess(t *testing.T) {
	stub := &stubStore{pool: []match.Candidate{testCandidate("a1")}}
	b := NewBreaker(stub)

	got, err := b.Snapshot(context.Background(), match.Criteria{})
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "a1" {
		t.Errorf("unexpected snapshot: %v", idsOf(got))
	}

	if b.cb.State() != gobreaker.StateClosed {
		t.Errorf("expected closed circuit after success, got %v", b.cb.State())
	}
}

func TestBreaker_BackendErrorPassesThrough(t *testing.T) {
	backendErr := errors.New("disk on fire")
	stub := &stubStore{fail: backendErr}
	b := NewBreaker(stub)

	_, err := b.Snapshot(context.Background(), match.Criteria{})
	if !errors.Is(err, backendErr) {
		t.Errorf("expected backend error to pass through, got %v", err)
	}
	if errors.Is(err, ErrUnavailable) {
		t.Error("single backend failure must not be reported as rejection")
	}
}

func TestBreaker_OpensAfterFailures(t *testing.T) {
	stub := &stubStore{fail: errors.New("backend down")}
	b := NewBreaker(stub)
	ctx := context.Background()

	// 60% failure rate over at least 10 requests opens the circuit;
	// ReadyToTrip is consulted before each request, so drive 11.
	for i := 0; i < 11; i++ {
		_, _ = b.Snapshot(ctx, match.Criteria{})
	}

	if b.cb.State() != gobreaker.StateOpen {
		t.Fatalf("expected open circuit after repeated failures, got %v", b.cb.State())
	}

	calls := stub.snapshotCalls()

	// Rejected calls surface ErrUnavailable without touching the backend
	_, err := b.Snapshot(ctx, match.Criteria{})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable from open circuit, got %v", err)
	}
	if stub.snapshotCalls() != calls {
		t.Error("open circuit still called the backend")
	}

	// Recovery would be observed here after the breaker timeout; the
	// backend healing alone does not close the circuit.
	stub.setFail(nil)
	if _, err := b.Snapshot(ctx, match.Criteria{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected rejection while circuit is still open, got %v", err)
	}
}

func TestBreaker_PutValidationSkipsBreaker(t *testing.T) {
	stub := &stubStore{}
	b := NewBreaker(stub)

	err := b.Put(context.Background(), match.Candidate{Name: "anonymous"})
	if err == nil {
		t.Fatal("expected error for candidate without ID")
	}

	if stub.puts != 0 {
		t.Error("invalid put reached the backend")
	}
	if counts := b.cb.Counts(); counts.Requests != 0 {
		t.Errorf("invalid put counted against the breaker: %+v", counts)
	}
}

func TestBreaker_WriteOperationsPassThrough(t *testing.T) {
	stub := &stubStore{}
	b := NewBreaker(stub)
	ctx := context.Background()

	if err := b.Put(ctx, testCandidate("a1")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if stub.puts != 1 {
		t.Errorf("expected 1 backend put, got %d", stub.puts)
	}

	if err := b.Delete(ctx, "a1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if stub.deletes != 1 {
		t.Errorf("expected 1 backend delete, got %d", stub.deletes)
	}
}

func TestBreaker_NameAndClose(t *testing.T) {
	stub := &stubStore{}
	b := NewBreaker(stub)

	if b.Name() != "stub" {
		t.Errorf("Name() = %q, want wrapped backend name", b.Name())
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !stub.closed {
		t.Error("Close() did not reach the backend")
	}
}
