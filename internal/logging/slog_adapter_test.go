// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// captureHandler returns a handler writing to a fresh buffer, bypassing
// the process-wide logger.
func captureHandler() (*SlogHandler, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewSlogHandlerWithLogger(zerolog.New(&buf)), &buf
}

func TestNewSlogHandler(t *testing.T) {
	t.Parallel()

	h := NewSlogHandler()
	if h == nil {
		t.Fatal("NewSlogHandler() = nil")
	}
	if len(h.attrs) != 0 || h.prefix != "" {
		t.Errorf("fresh handler carries state: attrs=%v prefix=%q", h.attrs, h.prefix)
	}
}

func TestSlogHandlerEnabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		minLevel zerolog.Level
		level    slog.Level
		want     bool
	}{
		{"debug logger passes debug", zerolog.DebugLevel, slog.LevelDebug, true},
		{"info logger blocks debug", zerolog.InfoLevel, slog.LevelDebug, false},
		{"info logger passes info", zerolog.InfoLevel, slog.LevelInfo, true},
		{"info logger passes warn", zerolog.InfoLevel, slog.LevelWarn, true},
		{"warn logger blocks info", zerolog.WarnLevel, slog.LevelInfo, false},
		{"error logger blocks warn", zerolog.ErrorLevel, slog.LevelWarn, false},
		{"trace logger passes everything", zerolog.TraceLevel, slog.LevelDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewSlogHandlerWithLogger(zerolog.New(nil).Level(tt.minLevel))
			if got := h.Enabled(context.Background(), tt.level); got != tt.want {
				t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestSlogHandlerLevels(t *testing.T) {
	orig := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	defer zerolog.SetGlobalLevel(orig)

	tests := []struct {
		name  string
		level slog.Level
		want  string
	}{
		{"debug", slog.LevelDebug, `"level":"debug"`},
		{"info", slog.LevelInfo, `"level":"info"`},
		{"warn", slog.LevelWarn, `"level":"warn"`},
		{"error", slog.LevelError, `"level":"error"`},
		{"below debug maps to trace", slog.Level(-8), `"level":"trace"`},
		{"above error stays error", slog.Level(12), `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, buf := captureHandler()

			record := slog.NewRecord(time.Now(), tt.level, "supervision event", 0)
			if err := h.Handle(context.Background(), record); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q missing %q", buf.String(), tt.want)
			}
			if !strings.Contains(buf.String(), "supervision event") {
				t.Errorf("output %q missing message", buf.String())
			}
		})
	}
}

func TestSlogHandlerRecordAttrs(t *testing.T) {
	t.Parallel()

	h, buf := captureHandler()

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "service restarted", 0)
	record.AddAttrs(
		slog.String("service", "refresh-loop"),
		slog.Int("restarts", 3),
	)

	if err := h.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"service":"refresh-loop"`, `"restarts":3`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestSlogHandlerWithAttrs(t *testing.T) {
	t.Parallel()

	h, buf := captureHandler()
	stamped := h.WithAttrs([]slog.Attr{slog.String("tree", "artifex")})

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "started", 0)
	if err := stamped.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if !strings.Contains(buf.String(), `"tree":"artifex"`) {
		t.Errorf("pre-configured attr missing: %s", buf.String())
	}
	if len(h.attrs) != 0 {
		t.Error("WithAttrs mutated the receiver")
	}
}

func TestSlogHandlerWithAttrsChained(t *testing.T) {
	t.Parallel()

	h, _ := captureHandler()
	first := h.WithAttrs([]slog.Attr{slog.String("a", "1")}).(*SlogHandler)
	second := first.WithAttrs([]slog.Attr{slog.String("b", "2"), slog.String("c", "3")}).(*SlogHandler)

	if len(first.attrs) != 1 {
		t.Errorf("first handler attrs = %d, want 1", len(first.attrs))
	}
	if len(second.attrs) != 3 {
		t.Errorf("second handler attrs = %d, want 3", len(second.attrs))
	}
}

func TestSlogHandlerWithGroup(t *testing.T) {
	t.Parallel()

	h, buf := captureHandler()
	grouped := h.WithGroup("data").WithGroup("redis")

	slog.New(grouped).Info("reconnected", "addr", "127.0.0.1:6379")

	if !strings.Contains(buf.String(), `"data.redis.addr"`) {
		t.Errorf("nested groups not flattened outer-first: %s", buf.String())
	}
	if h.prefix != "" {
		t.Error("WithGroup mutated the receiver")
	}
}

func TestSlogHandlerWithGroupEmptyName(t *testing.T) {
	t.Parallel()

	h, _ := captureHandler()
	if h.WithGroup("") != slog.Handler(h) {
		t.Error("WithGroup(\"\") should return the receiver unchanged")
	}
}

func TestSlogHandlerGroupAttr(t *testing.T) {
	t.Parallel()

	h, buf := captureHandler()

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "decision", 0)
	record.AddAttrs(slog.Group("consensus",
		slog.Float64("final_score", 0.82),
		slog.Bool("conflict", false),
	))

	if err := h.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"consensus.final_score"`) {
		t.Errorf("group member not prefixed: %s", out)
	}
	if !strings.Contains(out, `"consensus.conflict"`) {
		t.Errorf("group member not prefixed: %s", out)
	}
}

func TestSlogHandlerUnnamedGroupInlines(t *testing.T) {
	t.Parallel()

	h, buf := captureHandler()

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "inline", 0)
	record.AddAttrs(slog.Group("", slog.String("backend", "badger")))

	if err := h.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if !strings.Contains(buf.String(), `"backend":"badger"`) {
		t.Errorf("unnamed group members should keep bare keys: %s", buf.String())
	}
}

func TestAppendAttrKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{"string", slog.String("backend", "redis"), `"backend":"redis"`},
		{"int64", slog.Int64("pool", 42), `"pool":42`},
		{"uint64", slog.Uint64("seq", 100), `"seq":100`},
		{"float64", slog.Float64("score", 0.75), `"score":0.75`},
		{"bool", slog.Bool("healthy", true), `"healthy":true`},
		{"duration", slog.Duration("elapsed", 1500 * time.Millisecond), `"elapsed":1500`},
		{"time", slog.Time("seen", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)), `"seen"`},
		{"any", slog.Any("extra", map[string]int{"a": 1}), `"extra"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, buf := captureHandler()

			record := slog.NewRecord(time.Now(), slog.LevelInfo, "kinds", 0)
			record.AddAttrs(tt.attr)
			if err := h.Handle(context.Background(), record); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q missing %q", buf.String(), tt.want)
			}
		})
	}
}

func TestLevelFromSlog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level slog.Level
		want  zerolog.Level
	}{
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
		{slog.Level(-8), zerolog.TraceLevel},
		{slog.Level(-2), zerolog.DebugLevel},
		{slog.Level(2), zerolog.InfoLevel},
		{slog.Level(12), zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		if got := levelFromSlog(tt.level); got != tt.want {
			t.Errorf("levelFromSlog(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestNewSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))

	slogger := NewSlogLogger()
	if slogger == nil {
		t.Fatal("NewSlogLogger() = nil")
	}

	slogger.Info("supervisor started")

	if !strings.Contains(buf.String(), "supervisor started") {
		t.Errorf("slog record did not reach the process-wide logger: %s", buf.String())
	}
}

func TestSlogIntegration(t *testing.T) {
	orig := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	defer zerolog.SetGlobalLevel(orig)

	h, buf := captureHandler()
	slogger := slog.New(h).With("component", "supervisor")

	slogger.Debug("backoff reset", "service", "http-server")
	slogger.Info("service up", "restarts", 0)
	slogger.Warn("service slow to stop", "service", "refresh-loop")
	slogger.Error("service failed", "attempts", 3)

	out := buf.String()
	for _, want := range []string{
		`"component":"supervisor"`,
		"backoff reset", `"service":"http-server"`,
		"service up", `"restarts":0`,
		"service slow to stop",
		"service failed", `"attempts":3`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}
