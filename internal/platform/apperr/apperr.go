// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the error taxonomy shared by the publishing pipeline,
the document store, and the HTTP layer.

An [AppError] carries a machine-readable Code (what the caller can branch on)
and the HTTP status the transport maps it to. Orchestrators return AppErrors so
that a caller can tell an unreachable backend (BACKEND_UNAVAILABLE) apart from a
rejected input (NO_VALID_ASSETS, VALIDATION_ERROR) or a lost race (CONFLICT).
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the canonical error type for the Yomira publishing API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICT").
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

// Codes for the publishing pipeline.
const (
	CodeNotFound                = "NOT_FOUND"
	CodeConflict                = "CONFLICT"
	CodeNoValidAssets           = "NO_VALID_ASSETS"
	CodeBackendUnavailable      = "BACKEND_UNAVAILABLE"
	CodeCommitFailedAfterDelete = "COMMIT_FAILED_AFTER_DELETE"
	CodeCanceled                = "CANCELED"
	CodeValidation              = "VALIDATION_ERROR"
	CodeForbidden               = "FORBIDDEN"
)

// StatusClientClosedRequest is the de-facto status for requests the client abandoned.
const StatusClientClosedRequest = 499

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

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Comic") // Returns "Comic not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for a lost optimistic-concurrency race.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// Unprocessable creates a 422 [AppError] for semantically invalid input.
func Unprocessable(msg string) *AppError {
	return &AppError{
		Code:       "UNPROCESSABLE",
		Message:    msg,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NoValidAssets creates a 422 [AppError] for an upload where every file failed.
func NoValidAssets(cause error) *AppError {
	return &AppError{
		Code:       CodeNoValidAssets,
		Message:    "None of the submitted pages could be uploaded",
		HTTPStatus: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

// CommitFailedAfterDelete creates a 404 [AppError] for a chapter whose assets
// were purged but whose comic disappeared before the metadata update.
func CommitFailedAfterDelete() *AppError {
	return &AppError{
		Code:       CodeCommitFailedAfterDelete,
		Message:    "Comic not found after deletion",
		HTTPStatus: http.StatusNotFound,
	}
}

// Canceled creates a 499 [AppError] for an operation abandoned by its caller.
func Canceled(cause error) *AppError {
	return &AppError{
		Code:       CodeCanceled,
		Message:    "Operation canceled",
		HTTPStatus: StatusClientClosedRequest,
		Cause:      cause,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// BackendUnavailable creates a 503 [AppError] for an unreachable dependency
// (document store, asset provider). The cause is logged, never returned.
func BackendUnavailable(backend string, cause error) *AppError {
	return &AppError{
		Code:       CodeBackendUnavailable,
		Message:    backend + " is unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
