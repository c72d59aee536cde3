// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for Fedisearch.

It provides a rich error type that bridges the gap between low-level
crawler/storage errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing a machine-readable ErrorCode and user-friendly messages.
  - Kinds: The four failure categories of the system (Unknown, Database, Connection, Network).
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"net/http"
)

// Error codes. The first four are the exhaustive failure kinds of the core;
// the rest cover the HTTP surface.
const (
	CodeUnknown    = "UNKNOWN"
	CodeDatabase   = "DATABASE_ERROR"
	CodeConnection = "CONNECTION_ERROR"
	CodeNetwork    = "NETWORK_ERROR"

	CodeValidation = "VALIDATION_ERROR"
)

// AppError is the canonical error type for Fedisearch.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "DATABASE_ERROR").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Failure Kinds

// Unknown wraps a programmer error or assertion failure.
func Unknown(cause error) *AppError {
	return &AppError{
		Code:       CodeUnknown,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Database wraps an SQL-level failure. The action names the operation that
// failed, e.g. "bulk_upsert_posts".
func Database(action string, cause error) *AppError {
	return &AppError{
		Code:       CodeDatabase,
		Message:    "Database operation failed: " + action,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Connection wraps pool exhaustion or a connect timeout.
func Connection(cause error) *AppError {
	return &AppError{
		Code:       CodeConnection,
		Message:    "Database connection unavailable",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Network wraps an upstream HTTP transport or response-decoding failure.
func Network(action string, cause error) *AppError {
	return &AppError{
		Code:       CodeNetwork,
		Message:    "Upstream request failed: " + action,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Client Errors (4xx)

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// # Helpers

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// CodeOf returns the error code of err, or CodeUnknown when err carries none.
func CodeOf(err error) string {
	if ae := As(err); ae != nil {
		return ae.Code
	}
	return CodeUnknown
}

// IsNetwork reports whether err is a Network-kind failure. The crawler uses
// this to decide between retrying a page and aborting the pass.
func IsNetwork(err error) bool {
	return CodeOf(err) == CodeNetwork
}
