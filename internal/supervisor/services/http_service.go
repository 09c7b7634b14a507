// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// HTTPServer is the part of *http.Server the service drives. Declared as
// an interface so tests can stand in a double.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// defaultShutdownTimeout bounds graceful shutdown when the caller passes
// a non-positive value.
const defaultShutdownTimeout = 10 * time.Second

// HTTPServerService runs an HTTP server under suture supervision. It
// bridges ListenAndServe's blocking call onto suture's context-driven
// Serve contract: cancellation triggers a bounded graceful shutdown.
//
//	server := &http.Server{Addr: ":8085", Handler: router.Setup()}
//	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	name            string
}

// NewHTTPServerService wraps server as a supervised service. Active
// connections get shutdownTimeout to drain when the service stops.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	return &HTTPServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		name:            "http-server",
	}
}

// Serve implements suture.Service. It blocks until the server fails or
// ctx is canceled; cancellation shuts the server down gracefully and
// returns ctx.Err so the supervisor records a normal stop.
func (s *HTTPServerService) Serve(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		err := s.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// The serve context is already canceled; the drain gets its own
	// deadline.
	drainCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	<-done
	return ctx.Err()
}

// String names the service in supervisor logs.
func (s *HTTPServerService) String() string {
	return s.name
}
