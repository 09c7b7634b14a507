// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum emitted level: trace, debug, info, warn, error,
	// fatal, panic. Unknown values fall back to info.
	Level string

	// Format selects the output encoding: json or console.
	// Default: json
	Format string

	// Caller stamps events with the calling file and line.
	// Default: false
	Caller bool

	// Timestamp stamps events with the wall clock.
	Timestamp bool

	// Output receives the encoded events.
	// Default: os.Stderr
	Output io.Writer
}

// DefaultConfig returns the configuration in effect until Init is called.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Timestamp: true,
		Output:    os.Stderr,
	}
}

// withDefaults fills the zero values of cfg.
func (cfg Config) withDefaults() Config {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	return cfg
}

var (
	root   zerolog.Logger
	rootMu sync.RWMutex
)

//nolint:gochecknoinits // code that logs before main calls Init gets the defaults
func init() {
	apply(DefaultConfig())
}

// Init reconfigures the process-wide logger. Call it from main once the
// configuration is loaded; calling it again later is safe.
func Init(cfg Config) {
	rootMu.Lock()
	defer rootMu.Unlock()
	apply(cfg)
}

// apply rebuilds the root logger. Callers must hold rootMu.
func apply(cfg Config) {
	cfg = cfg.withDefaults()

	zerolog.SetGlobalLevel(levelFromString(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = cfg.Output
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}

	lc := zerolog.New(out).With()
	if cfg.Timestamp {
		lc = lc.Timestamp()
	}
	if cfg.Caller {
		lc = lc.Caller()
	}
	root = lc.Logger()
}

// levelNames maps accepted level strings to zerolog levels. Lookup is
// case-insensitive; "warning" is accepted as an alias for "warn".
var levelNames = map[string]zerolog.Level{
	"trace":    zerolog.TraceLevel,
	"debug":    zerolog.DebugLevel,
	"info":     zerolog.InfoLevel,
	"warn":     zerolog.WarnLevel,
	"warning":  zerolog.WarnLevel,
	"error":    zerolog.ErrorLevel,
	"fatal":    zerolog.FatalLevel,
	"panic":    zerolog.PanicLevel,
	"disabled": zerolog.Disabled,
}

// levelFromString resolves a level name, defaulting to info.
func levelFromString(level string) zerolog.Level {
	if l, ok := levelNames[strings.ToLower(level)]; ok {
		return l
	}
	return zerolog.InfoLevel
}

// Logger returns a copy of the process-wide logger for components that
// hold their own instance (the engine, supervised services).
func Logger() zerolog.Logger {
	rootMu.RLock()
	defer rootMu.RUnlock()
	return root
}

// SetLogger swaps the process-wide logger. Tests use this to capture
// output.
//
//nolint:gocritic // zerolog.Logger is a value type by design
func SetLogger(l zerolog.Logger) {
	rootMu.Lock()
	defer rootMu.Unlock()
	root = l
}

// With opens a child context on the process-wide logger.
//
//	engineLog := logging.With().Str("component", "match-engine").Logger()
func With() zerolog.Context {
	rootMu.RLock()
	defer rootMu.RUnlock()
	return root.With()
}

// Debug starts a debug-level event.
func Debug() *zerolog.Event {
	rootMu.RLock()
	defer rootMu.RUnlock()
	return root.Debug()
}

// Info starts an info-level event.
func Info() *zerolog.Event {
	rootMu.RLock()
	defer rootMu.RUnlock()
	return root.Info()
}

// Warn starts a warn-level event.
func Warn() *zerolog.Event {
	rootMu.RLock()
	defer rootMu.RUnlock()
	return root.Warn()
}

// Error starts an error-level event.
func Error() *zerolog.Event {
	rootMu.RLock()
	defer rootMu.RUnlock()
	return root.Error()
}

// Fatal starts a fatal-level event. The process exits once the event is
// sent.
func Fatal() *zerolog.Event {
	rootMu.RLock()
	defer rootMu.RUnlock()
	return root.Fatal()
}

// Err starts an error-level event carrying err, or an info-level event
// when err is nil, following zerolog's Err semantics.
func Err(err error) *zerolog.Event {
	rootMu.RLock()
	defer rootMu.RUnlock()
	return root.Err(err)
}

// GetLevel reports the global level filter.
func GetLevel() zerolog.Level {
	return zerolog.GlobalLevel()
}

// SetLevelString changes the global level filter from a level name.
func SetLevelString(level string) {
	zerolog.SetGlobalLevel(levelFromString(level))
}

// NewTestLogger returns a timestamped logger writing to w, independent of
// the process-wide logger.
//
//	var buf bytes.Buffer
//	log := logging.NewTestLogger(&buf)
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
