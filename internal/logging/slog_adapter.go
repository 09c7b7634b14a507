// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package logging

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
)

// SlogHandler adapts slog records onto zerolog so libraries that insist on
// an *slog.Logger (sutureslog, for the supervisor tree) share the
// process-wide log pipeline. Group names become dotted key prefixes.
type SlogHandler struct {
	logger zerolog.Logger
	attrs  []slog.Attr
	prefix string
}

// NewSlogHandler returns a handler writing through the process-wide
// logger.
func NewSlogHandler() *SlogHandler {
	return &SlogHandler{logger: Logger()}
}

// NewSlogHandlerWithLogger returns a handler writing through a specific
// zerolog logger.
//
//nolint:gocritic // zerolog.Logger is a value type by design
func NewSlogHandlerWithLogger(logger zerolog.Logger) *SlogHandler {
	return &SlogHandler{logger: logger}
}

// NewSlogLogger returns an *slog.Logger backed by the process-wide zerolog
// logger.
//
//	h := &sutureslog.Handler{Logger: logging.NewSlogLogger()}
func NewSlogLogger() *slog.Logger {
	return slog.New(NewSlogHandler())
}

// Enabled reports whether records at level would be emitted.
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.GetLevel() <= levelFromSlog(level)
}

// Handle encodes one slog record as a zerolog event.
//
//nolint:gocritic // slog.Record is passed by value per the slog.Handler contract
func (h *SlogHandler) Handle(_ context.Context, record slog.Record) error {
	evt := h.event(record.Level)

	for _, attr := range h.attrs {
		evt = appendAttr(evt, h.prefix, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		evt = appendAttr(evt, h.prefix, attr)
		return true
	})

	evt.Msg(record.Message)
	return nil
}

// WithAttrs returns a handler that stamps attrs on every record.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)

	return &SlogHandler{logger: h.logger, attrs: merged, prefix: h.prefix}
}

// WithGroup returns a handler that prefixes attribute keys with name.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &SlogHandler{logger: h.logger, attrs: h.attrs, prefix: joinKey(h.prefix, name)}
}

// event opens a zerolog event matching the slog level.
func (h *SlogHandler) event(level slog.Level) *zerolog.Event {
	switch levelFromSlog(level) {
	case zerolog.TraceLevel:
		return h.logger.Trace()
	case zerolog.DebugLevel:
		return h.logger.Debug()
	case zerolog.WarnLevel:
		return h.logger.Warn()
	case zerolog.ErrorLevel:
		return h.logger.Error()
	default:
		return h.logger.Info()
	}
}

// appendAttr adds one attribute under the given key prefix, flattening
// groups into dotted keys.
func appendAttr(evt *zerolog.Event, prefix string, attr slog.Attr) *zerolog.Event {
	value := attr.Value.Resolve()
	key := joinKey(prefix, attr.Key)

	switch value.Kind() {
	case slog.KindGroup:
		for _, member := range value.Group() {
			evt = appendAttr(evt, key, member)
		}
		return evt
	case slog.KindString:
		return evt.Str(key, value.String())
	case slog.KindInt64:
		return evt.Int64(key, value.Int64())
	case slog.KindUint64:
		return evt.Uint64(key, value.Uint64())
	case slog.KindFloat64:
		return evt.Float64(key, value.Float64())
	case slog.KindBool:
		return evt.Bool(key, value.Bool())
	case slog.KindDuration:
		return evt.Dur(key, value.Duration())
	case slog.KindTime:
		return evt.Time(key, value.Time())
	default:
		return evt.Interface(key, value.Any())
	}
}

// joinKey joins two dotted key segments, tolerating empty segments so
// unnamed groups inline their members.
func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

// levelFromSlog maps slog levels onto zerolog levels. Levels between the
// named slog levels round down; levels above error stay error.
func levelFromSlog(level slog.Level) zerolog.Level {
	switch {
	case level >= slog.LevelError:
		return zerolog.ErrorLevel
	case level >= slog.LevelWarn:
		return zerolog.WarnLevel
	case level >= slog.LevelInfo:
		return zerolog.InfoLevel
	case level >= slog.LevelDebug:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}
