// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultRedisImage is the Redis image used for directory store tests.
	DefaultRedisImage = "redis:7-alpine"

	// DefaultRedisPort is the standard Redis server port.
	DefaultRedisPort = "6379"
)

// RedisContainer represents a running Redis container for testing.
type RedisContainer struct {
	testcontainers.Container
	// Addr is the host:port the container is reachable on, suitable for
	// directory.RedisOptions.Addr.
	Addr string
}

// RedisOption configures the Redis container.
type RedisOption func(*redisConfig)

type redisConfig struct {
	image        string
	startTimeout time.Duration
}

// WithRedisImage sets a custom Redis Docker image.
func WithRedisImage(image string) RedisOption {
	return func(c *redisConfig) {
		c.image = image
	}
}

// WithStartTimeout sets the timeout for waiting for Redis to start.
func WithStartTimeout(timeout time.Duration) RedisOption {
	return func(c *redisConfig) {
		c.startTimeout = timeout
	}
}

// NewRedisContainer creates and starts a new Redis container for testing.
//
// Example:
//
//	ctx := context.Background()
//	rc, err := NewRedisContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer rc.Terminate(ctx)
//
//	store, err := directory.NewRedis(directory.RedisOptions{Addr: rc.Addr})
func NewRedisContainer(ctx context.Context, opts ...RedisOption) (*RedisContainer, error) {
	cfg := &redisConfig{
		image:        DefaultRedisImage,
		startTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{DefaultRedisPort + "/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(DefaultRedisPort+"/tcp"),
			wait.ForLog("Ready to accept connections"),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create redis container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, DefaultRedisPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	return &RedisContainer{
		Container: container,
		Addr:      fmt.Sprintf("%s:%s", host, port.Port()),
	}, nil
}

// Terminate stops and removes the Redis container.
func (c *RedisContainer) Terminate(ctx context.Context) error {
	return c.Container.Terminate(ctx)
}

// FlushAll wipes every key in the server so tests can start from a
// clean keyspace without restarting the container.
func (c *RedisContainer) FlushAll(ctx context.Context) error {
	code, outputReader, err := c.Container.Exec(ctx, []string{"redis-cli", "FLUSHALL"})
	if err != nil {
		return fmt.Errorf("exec redis-cli: %w", err)
	}
	if code != 0 {
		output, _ := io.ReadAll(outputReader)
		return fmt.Errorf("FLUSHALL failed with code %d: %s", code, string(output))
	}
	return nil
}

// Logs returns the container logs for debugging.
func (c *RedisContainer) Logs(ctx context.Context) (string, error) {
	reader, err := c.Container.Logs(ctx)
	if err != nil {
		return "", fmt.Errorf("get logs: %w", err)
	}
	defer reader.Close()

	var logs []byte
	buf := make([]byte, 1024)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			logs = append(logs, buf[:n]...)
		}
		if err != nil {
			break
		}
	}

	return string(logs), nil
}
