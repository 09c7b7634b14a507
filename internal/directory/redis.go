// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/artifex/internal/logging"
	"github.com/tomtom215/artifex/internal/match"
	"github.com/tomtom215/artifex/internal/metrics"
)

// redisMGetBatch bounds how many keys a single MGET fetches.
const redisMGetBatch = 500

// redisScanCount is the per-iteration COUNT hint for SCAN.
const redisScanCount = 256

// RedisOptions configures the Redis-backed directory store.
type RedisOptions struct {
	// Addr is the host:port of the Redis server.
	Addr string
	// Password authenticates the connection. Empty means no auth.
	Password string
	// DB selects the logical database.
	DB int
	// KeyPrefix namespaces provider records. Defaults to
	// "artifex:artist:" when empty.
	KeyPrefix string
}

// Redis is a Redis-backed Store for deployments where several Artifex
// instances share one directory. Provider records are stored as JSON
// strings under prefixed keys.
type Redis struct {
	client    *redis.Client
	keyPrefix string
}

var _ Store = (*Redis)(nil)

// NewRedis connects to Redis and verifies the connection with a ping.
func NewRedis(opts RedisOptions) (*Redis, error) {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "artifex:artist:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis directory: %w", err)
	}

	logging.Info().
		Str("addr", opts.Addr).
		Int("db", opts.DB).
		Msg("Directory: redis store connected")

	return &Redis{client: client, keyPrefix: opts.KeyPrefix}, nil
}

// Name implements Directory.
func (r *Redis) Name() string { return "redis" }

// Snapshot implements Directory. Keys are discovered with SCAN and
// fetched in bounded MGET batches; values that fail to decode are
// skipped with a warning.
func (r *Redis) Snapshot(ctx context.Context, criteria match.Criteria) ([]match.Candidate, error) {
	start := time.Now()

	keys, err := r.scanKeys(ctx)
	if err != nil {
		metrics.RecordDirectorySnapshot(r.Name(), 0, time.Since(start), err)
		return nil, fmt.Errorf("scan redis directory: %w", err)
	}

	var candidates []match.Candidate
	for len(keys) > 0 {
		batch := keys
		if len(batch) > redisMGetBatch {
			batch = batch[:redisMGetBatch]
		}
		keys = keys[len(batch):]

		vals, err := r.client.MGet(ctx, batch...).Result()
		if err != nil {
			metrics.RecordDirectorySnapshot(r.Name(), 0, time.Since(start), err)
			return nil, fmt.Errorf("fetch redis directory batch: %w", err)
		}

		for i, val := range vals {
			if val == nil {
				continue // Deleted between SCAN and MGET
			}
			s, ok := val.(string)
			if !ok {
				continue
			}

			var c match.Candidate
			if err := json.Unmarshal([]byte(s), &c); err != nil {
				logging.Warn().
					Str("key", batch[i]).
					Err(err).
					Msg("Directory: skipping undecodable provider record")
				continue
			}
			if matchesCriteria(&c, criteria) {
				candidates = append(candidates, c)
			}
		}
	}

	metrics.RecordDirectorySnapshot(r.Name(), len(candidates), time.Since(start), nil)
	return finishSnapshot(candidates, criteria.Limit), nil
}

// scanKeys walks the keyspace under the configured prefix.
func (r *Redis) scanKeys(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := r.client.Scan(ctx, cursor, r.keyPrefix+"*", redisScanCount).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

// Put implements Store using a single pipeline round trip.
func (r *Redis) Put(ctx context.Context, candidates ...match.Candidate) error {
	if err := validatePut(candidates); err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	for i := range candidates {
		data, err := json.Marshal(&candidates[i])
		if err != nil {
			return fmt.Errorf("marshal candidate %s: %w", candidates[i].ID, err)
		}
		pipe.Set(ctx, r.keyPrefix+candidates[i].ID, data, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put candidates: %w", err)
	}
	return nil
}

// Delete implements Store.
func (r *Redis) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete candidate %s: %w", id, err)
	}
	return nil
}

// Len counts stored providers via SCAN.
func (r *Redis) Len(ctx context.Context) (int, error) {
	keys, err := r.scanKeys(ctx)
	if err != nil {
		return 0, fmt.Errorf("count candidates: %w", err)
	}
	return len(keys), nil
}

// Close implements Store.
func (r *Redis) Close() error {
	return r.client.Close()
}
