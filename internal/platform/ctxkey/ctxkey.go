// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey holds the context keys shared by middleware, handlers and
// the chapter pipelines. Read and write them through package ctxutil.
package ctxkey

// key is unexported so values set here cannot be read or overwritten with a
// plain string key from another package.
type key string

const (
	// KeyRequestID carries the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyOperationID carries the id of a running upload or delete, the same
	// value returned in X-Operation-ID and polled under /operations/{id}.
	KeyOperationID key = "operation_id"

	// KeyUser carries the verified [sec.AuthClaims].
	KeyUser key = "user"

	// KeyLogger carries the request-scoped *slog.Logger.
	KeyLogger key = "logger"
)
