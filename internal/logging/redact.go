// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package logging

import (
	"net/url"
	"strings"
)

// Redaction helpers for logging values that may carry credentials. The
// intake client talks to the upstream design-analysis service with an
// API token; anything derived from its requests goes through these
// before reaching a log event.

// sensitiveParams are query parameter names whose values are masked by
// RedactURL, matched case-insensitively.
var sensitiveParams = map[string]bool{
	"token":         true,
	"api_key":       true,
	"apikey":        true,
	"key":           true,
	"secret":        true,
	"password":      true,
	"authorization": true,
	"access_token":  true,
}

// RedactToken masks a token, showing only the first and last 4
// characters. Short tokens are fully masked.
//
// Example: "sk-live-0a1b2c3d4e5f" -> "sk-l...4e5f"
func RedactToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// RedactURL masks credentials embedded in a URL: userinfo and sensitive
// query parameter values. Unparseable input is masked entirely rather
// than logged raw.
//
// Example: "https://u:p@host/path?token=abc" -> "https://***@host/path?token=%2A%2A%2A"
func RedactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}

	if u.User != nil {
		u.User = url.User("***")
	}

	q := u.Query()
	changed := false
	for name := range q {
		if sensitiveParams[strings.ToLower(name)] {
			q.Set(name, "***")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}

	return u.String()
}

// RedactError collapses error text that mentions credential material into
// a generic message, and truncates the rest. Error strings from upstream
// HTTP clients can echo request URLs and headers verbatim.
func RedactError(msg string) string {
	lower := strings.ToLower(msg)
	for _, pattern := range []string{"password", "secret", "token", "bearer", "authorization", "cookie"} {
		if strings.Contains(lower, pattern) {
			return "upstream request error (detail redacted)"
		}
	}
	return Truncate(msg, 200)
}

// Truncate shortens a string to at most maxLen characters, marking the
// cut with an ellipsis.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
