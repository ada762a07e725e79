// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"carepath/internal/result"
)

// PostgreSQL error codes the action layer cares about.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
)

// backendError wraps a driver error for op, keeping the SQLSTATE when the
// server reported one.
func backendError(op string, err error) error {
	be := &result.BackendError{Op: op, Err: err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		be.Code = pgErr.Code
	}
	return be
}

// IsCode reports whether err carries the given SQLSTATE.
func IsCode(err error, code string) bool {
	var be *result.BackendError
	if errors.As(err, &be) && be.Code == code {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
