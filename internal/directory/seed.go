// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package directory

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/tomtom215/artifex/internal/logging"
	"github.com/tomtom215/artifex/internal/match"
)

// LoadSeedFile reads a JSON array of provider candidates from path.
// Used to populate a directory at startup in deployments without a
// registry, and in development.
func LoadSeedFile(path string) ([]match.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var candidates []match.Candidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	if err := validatePut(candidates); err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}

	return candidates, nil
}

// Seed loads the file at path and writes its candidates into store.
// Returns the number of providers written.
func Seed(ctx context.Context, store Store, path string) (int, error) {
	candidates, err := LoadSeedFile(path)
	if err != nil {
		return 0, err
	}

	if err := store.Put(ctx, candidates...); err != nil {
		return 0, fmt.Errorf("seed %s store: %w", store.Name(), err)
	}

	logging.Info().
		Int("providers", len(candidates)).
		Str("path", path).
		Str("backend", store.Name()).
		Msg("Directory: seeded from file")

	return len(candidates), nil
}
