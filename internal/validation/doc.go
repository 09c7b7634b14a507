// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library to provide a thread-safe
// singleton validator instance with user-friendly error messages. It integrates
// with the application's API error format for consistent error responses.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - Comprehensive error translation to human-readable messages
//   - APIError conversion matching the HTTP error envelope
//   - Built-in validator support (latitude, longitude, datetime, oneof, etc.)
//   - Future v11 compatibility with WithRequiredStructEnabled
//
// # Quick Start
//
//	type rankOptionsBody struct {
//	    Profile  string  `json:"profile" validate:"omitempty,oneof=canonical legacy"`
//	    TopK     int     `json:"top_k" validate:"min=0,max=100"`
//	    MinScore float64 `json:"min_score" validate:"gte=0,lt=1"`
//	}
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    var body rankOptionsBody
//	    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
//	        // handle decode error
//	    }
//
//	    if verr := validation.ValidateStruct(&body); verr != nil {
//	        apiErr := verr.ToAPIError()
//	        respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	        return
//	    }
//
//	    // proceed with valid request
//	}
//
// # Common Validation Tags
//
// String validations:
//   - required: Field must not be empty
//   - min=n: Minimum length n characters
//   - max=n: Maximum length n characters
//   - datetime=2006-01-02: Valid date in the given layout
//   - oneof=a b c: Must be one of the specified values
//
// Numeric validations:
//   - gte=n: Greater than or equal to n
//   - lte=n: Less than or equal to n
//   - gt=n: Greater than n
//   - lt=n: Less than n
//   - min=n: Minimum value n
//   - max=n: Maximum value n
//
// Coordinate validations:
//   - latitude: Valid latitude (-90 to 90)
//   - longitude: Valid longitude (-180 to 180)
//
// # Error Types
//
// ValidationError represents a single field validation failure:
//
//	type ValidationError struct {
//	    Field()   string      // Struct field name
//	    Tag()     string      // Validation tag that failed
//	    Param()   string      // Tag parameter (e.g., "100" for max=100)
//	    Value()   interface{} // Actual value that failed
//	    Error()   string      // Human-readable message
//	}
//
// RequestValidationError aggregates multiple field errors:
//
//	type RequestValidationError struct {
//	    Errors() []ValidationError
//	    Error()  string           // Combined message
//	    ToAPIError() *APIError    // Convert to API error format
//	}
//
// # API Error Integration
//
// The ToAPIError method produces errors matching the application format:
//
//	// Single field error
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "Lat must be a valid latitude (-90 to 90)",
//	    "details": {"field": "Lat", "tag": "latitude", "value": 135.2}
//	}
//
//	// Multiple field errors
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "RequestID: RequestID is required; TopK: TopK must be at most 100",
//	    "details": {
//	        "fields": [
//	            {"field": "RequestID", "tag": "required", "message": "..."},
//	            {"field": "TopK", "tag": "max", "message": "..."}
//	        ]
//	    }
//	}
//
// # Error Message Translation
//
// Human-readable messages are generated for common validation tags:
//
//	required   -> "RequestID is required"
//	datetime   -> "EventDate must be a valid date in YYYY-MM-DD form"
//	min=1      -> "RequestID must be at least 1 characters"
//	max=100    -> "TopK must be at most 100"
//	gte=0      -> "MinScore must be greater than or equal to 0"
//	lt=1       -> "MinScore must be less than 1"
//	oneof=a b  -> "Profile must be one of: a b"
//	latitude   -> "Lat must be a valid latitude (-90 to 90)"
//	longitude  -> "Lng must be a valid longitude (-180 to 180)"
//
// # Struct Tag Examples
//
// Ranking request validation:
//
//	type rankRequestBody struct {
//	    ID        string  `validate:"omitempty,max=128"`
//	    Style     string  `validate:"omitempty,max=64"`
//	    BudgetYen int64   `validate:"min=0"`
//	    EventDate string  `validate:"omitempty,datetime=2006-01-02"`
//	}
//
// Geographic points:
//
//	type geoPointBody struct {
//	    Lat float64 `validate:"latitude"`
//	    Lng float64 `validate:"longitude"`
//	}
//
// # Thread Safety
//
// The singleton validator is initialized once and safe for concurrent use:
//
//	validate := validation.GetValidator()  // Thread-safe
//	err := validation.ValidateStruct(&req) // Thread-safe
//
// # Performance
//
// The validator caches struct reflection information:
//   - First validation of a struct type: ~1ms (reflection + caching)
//   - Subsequent validations: ~10us (cached)
//   - Memory: ~500 bytes per cached struct type
//
// # See Also
//
//   - internal/api: Request handlers using validation
//   - github.com/go-playground/validator/v10: Underlying library
package validation
