// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/artifex/internal/logging"
	"github.com/tomtom215/artifex/internal/match"
	"github.com/tomtom215/artifex/internal/metrics"
)

// artistKeyPrefix namespaces provider records inside the BadgerDB
// keyspace.
const artistKeyPrefix = "artist:"

// badgerPutBatch bounds how many providers one transaction writes so a
// large registry refresh never trips badger's transaction size limit.
const badgerPutBatch = 500

// Badger is a BadgerDB-backed Store for single-instance deployments
// that need the directory to survive restarts. Provider records are
// stored as JSON under artist: keys.
type Badger struct {
	db     *badger.DB
	ownsDB bool
}

var _ Store = (*Badger)(nil)

// NewBadger opens (or creates) a BadgerDB directory store at path.
func NewBadger(path string) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger directory: %w", err)
	}

	logging.Info().
		Str("path", path).
		Msg("Directory: badger store opened")

	return &Badger{db: db, ownsDB: true}, nil
}

// NewBadgerFromDB wraps an already-open BadgerDB handle. The caller
// keeps ownership of the handle; Close becomes a no-op.
func NewBadgerFromDB(db *badger.DB) *Badger {
	return &Badger{db: db}
}

// Name implements Directory.
func (b *Badger) Name() string { return "badger" }

// Snapshot implements Directory via a prefix scan over artist: keys.
// Records that fail to decode are skipped with a warning rather than
// failing the whole snapshot.
func (b *Badger) Snapshot(_ context.Context, criteria match.Criteria) ([]match.Candidate, error) {
	start := time.Now()
	var candidates []match.Candidate

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(artistKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			var c match.Candidate
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &c)
			})
			if err != nil {
				logging.Warn().
					Str("key", string(item.Key())).
					Err(err).
					Msg("Directory: skipping undecodable provider record")
				continue
			}

			if matchesCriteria(&c, criteria) {
				candidates = append(candidates, c)
			}
		}
		return nil
	})

	metrics.RecordDirectorySnapshot(b.Name(), len(candidates), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("snapshot badger directory: %w", err)
	}

	return finishSnapshot(candidates, criteria.Limit), nil
}

// Put implements Store. Writes are chunked into bounded transactions so
// callers can hand over an entire registry refresh in one call.
func (b *Badger) Put(_ context.Context, candidates ...match.Candidate) error {
	if err := validatePut(candidates); err != nil {
		return err
	}

	for len(candidates) > 0 {
		batch := candidates
		if len(batch) > badgerPutBatch {
			batch = batch[:badgerPutBatch]
		}
		candidates = candidates[len(batch):]

		err := b.db.Update(func(txn *badger.Txn) error {
			for i := range batch {
				data, err := json.Marshal(&batch[i])
				if err != nil {
					return fmt.Errorf("marshal candidate %s: %w", batch[i].ID, err)
				}
				key := []byte(artistKeyPrefix + batch[i].ID)
				if err := txn.Set(key, data); err != nil {
					return fmt.Errorf("set candidate %s: %w", batch[i].ID, err)
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("put candidates: %w", err)
		}
	}

	return nil
}

// Delete implements Store.
func (b *Badger) Delete(_ context.Context, id string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(artistKeyPrefix + id))
	})
	if err != nil {
		return fmt.Errorf("delete candidate %s: %w", id, err)
	}
	return nil
}

// Len counts stored providers without prefetching values.
func (b *Badger) Len() (int, error) {
	count := 0
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(artistKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count candidates: %w", err)
	}
	return count, nil
}

// Close implements Store. Only closes handles opened by NewBadger.
func (b *Badger) Close() error {
	if !b.ownsDB || b.db == nil {
		return nil
	}
	return b.db.Close()
}
