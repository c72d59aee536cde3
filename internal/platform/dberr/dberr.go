// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/buivan/fedisearch/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the
// error kind: connection-level failures map to Connection, everything else at
// the SQL level maps to Database.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Pool checkout deadline or cancelled acquire
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Connection(err)
	}

	// 2. SQLSTATE class 08 covers broken and refused connections
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgerrcode.IsConnectionException(pgErr.Code) {
			return apperr.Connection(err)
		}
		return apperr.Database(action, err)
	}

	// 3. Everything else at the driver level is an SQL failure
	return apperr.Database(action, err)
}
