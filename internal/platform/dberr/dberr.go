// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
)

// Backend is the name reported to clients when the document store is unreachable.
const Backend = "Document store"

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
//
// Missing rows (pgx or database/sql) become NOT_FOUND for resource; anything
// else becomes BACKEND_UNAVAILABLE with the driver error kept as the cause.
// Errors that already are AppErrors pass through untouched.
func Wrap(err error, resource, action string) error {
	if err == nil {
		return nil
	}

	// 1. Already classified
	if apperr.IsAppError(err) {
		return err
	}

	// 2. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	// 3. Everything else is an infrastructure failure
	return apperr.BackendUnavailable(Backend, fmt.Errorf("%s: %w", action, err))
}
