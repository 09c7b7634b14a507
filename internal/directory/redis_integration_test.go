// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

//go:build integration

package directory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/artifex/internal/match"
	"github.com/tomtom215/artifex/internal/testinfra"
)

// The memory and badger stores are covered by unit tests that run
// everywhere. This suite exercises the redis store against a real
// server, where SCAN cursors, pipelines and shared-keyspace behavior
// cannot be faked.
//
// Usage:
//   go test -tags integration -run TestRedisStore ./internal/directory/...

// TestRedisStore_Integration runs the redis store through its full
// contract against a containerized server.
func TestRedisStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rc, err := testinfra.NewRedisContainer(ctx,
		testinfra.WithStartTimeout(60*time.Second),
	)
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, rc.Container)

	// NewRedis pings the server, so construction alone proves connectivity.
	store, err := NewRedis(RedisOptions{Addr: rc.Addr})
	if err != nil {
		t.Fatalf("NewRedis() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	// Raw client for planting keys the store's API cannot produce.
	raw := redis.NewClient(&redis.Options{Addr: rc.Addr})
	defer raw.Close()

	t.Run("put and snapshot round-trip", func(t *testing.T) {
		if err := store.Put(ctx, testPool()...); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		got, err := store.Snapshot(ctx, match.Criteria{})
		if err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}
		if len(got) != 4 {
			t.Fatalf("expected 4 candidates, got %d", len(got))
		}
		if got[0].ID != "a1" || got[3].ID != "d4" {
			t.Errorf("snapshot not sorted by ID: %v", idsOf(got))
		}

		// Round-tripped optional fields survive
		if got[0].Palette == nil || got[0].Palette.R != 200 {
			t.Errorf("palette lost in storage: %+v", got[0].Palette)
		}
		if got[0].StyleShares["gradient"] != 0.4 {
			t.Errorf("style shares lost in storage: %v", got[0].StyleShares)
		}
	})

	t.Run("criteria filter and limit", func(t *testing.T) {
		got, err := store.Snapshot(ctx, match.Criteria{Styles: []string{"art"}})
		if err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != "b2" {
			t.Errorf("expected [b2], got %v", idsOf(got))
		}

		got, err = store.Snapshot(ctx, match.Criteria{Limit: 2})
		if err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}
		if len(got) != 2 || got[0].ID != "a1" || got[1].ID != "b2" {
			t.Errorf("expected first two IDs, got %v", idsOf(got))
		}
	})

	t.Run("shared keyspace hygiene", func(t *testing.T) {
		if err := rc.FlushAll(ctx); err != nil {
			t.Fatalf("FlushAll() error = %v", err)
		}
		if err := store.Put(ctx, testCandidate("a1"), testCandidate("b2")); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		// Keys owned by other services on the same server are invisible
		if err := raw.Set(ctx, "other:service:x1", "not a provider", 0).Err(); err != nil {
			t.Fatalf("raw SET error = %v", err)
		}
		// Corrupt records under the prefix are skipped, not fatal
		if err := raw.Set(ctx, "artifex:artist:zz-bad", "{not json", 0).Err(); err != nil {
			t.Fatalf("raw SET error = %v", err)
		}

		got, err := store.Snapshot(ctx, match.Criteria{})
		if err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("expected 2 decodable providers, got %v", idsOf(got))
		}

		// Len counts prefixed keys, decodable or not
		n, err := store.Len(ctx)
		if err != nil {
			t.Fatalf("Len() error = %v", err)
		}
		if n != 3 {
			t.Errorf("expected 3 prefixed keys, got %d", n)
		}
	})

	t.Run("delete semantics", func(t *testing.T) {
		if err := rc.FlushAll(ctx); err != nil {
			t.Fatalf("FlushAll() error = %v", err)
		}
		if err := store.Put(ctx, testCandidate("a1"), testCandidate("b2")); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		if err := store.Delete(ctx, "a1"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		got, err := store.Snapshot(ctx, match.Criteria{})
		if err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != "b2" {
			t.Errorf("expected [b2] after delete, got %v", idsOf(got))
		}

		// Deleting an absent ID is not an error
		if err := store.Delete(ctx, "missing"); err != nil {
			t.Errorf("Delete(absent) error = %v", err)
		}
	})

	t.Run("empty id rejected", func(t *testing.T) {
		if err := store.Put(ctx, match.Candidate{Name: "anonymous"}); err == nil {
			t.Fatal("expected error for candidate without ID")
		}
	})

	// Container debugging information available on failure investigation
	info, err := testinfra.GetContainerInfo(ctx, rc.Container)
	if err != nil {
		t.Logf("Warning: Failed to get container info: %v", err)
	} else {
		t.Logf("Container ID: %s, State: %s, Ports: %v", info.ID, info.State, info.Ports)
	}
}

// TestRedisStore_LargePool verifies SCAN pagination and MGET batching
// past their chunk boundaries.
func TestRedisStore_LargePool(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rc, err := testinfra.NewRedisContainer(ctx)
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, rc.Container)

	store, err := NewRedis(RedisOptions{Addr: rc.Addr})
	if err != nil {
		t.Fatalf("NewRedis() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	// More than one MGET batch and several SCAN pages
	pool := make([]match.Candidate, redisMGetBatch+100)
	for i := range pool {
		pool[i] = testCandidate(fmt.Sprintf("p%05d", i))
	}

	if err := store.Put(ctx, pool...); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	n, err := store.Len(ctx)
	if err != nil {
		t.Fatalf("Len() error = %v", err)
	}
	if n != len(pool) {
		t.Errorf("expected %d providers, got %d", len(pool), n)
	}

	got, err := store.Snapshot(ctx, match.Criteria{Limit: 5})
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(got) != 5 || got[0].ID != "p00000" {
		t.Errorf("unexpected limited snapshot: %v", idsOf(got))
	}
}
