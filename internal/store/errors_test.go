// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"carepath/internal/result"
)

func TestBackendErrorKeepsSQLState(t *testing.T) {
	cause := fmt.Errorf("exec: %w", &pgconn.PgError{Code: CodeUniqueViolation, Message: "duplicate key"})
	err := backendError("create program", cause)

	var be *result.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected *result.BackendError, got %T", err)
	}
	if be.Code != CodeUniqueViolation {
		t.Errorf("code: got %q, want %q", be.Code, CodeUniqueViolation)
	}
	if be.Op != "create program" {
		t.Errorf("op: got %q", be.Op)
	}
	if !IsCode(err, CodeUniqueViolation) {
		t.Error("IsCode should match the wrapped SQLSTATE")
	}
	if IsCode(err, CodeForeignKeyViolation) {
		t.Error("IsCode matched the wrong SQLSTATE")
	}
}

func TestBackendErrorWithoutSQLState(t *testing.T) {
	err := backendError("list programs", errors.New("connection reset"))

	var be *result.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected *result.BackendError, got %T", err)
	}
	if be.Code != "" {
		t.Errorf("expected empty code, got %q", be.Code)
	}
	if IsCode(err, CodeUniqueViolation) {
		t.Error("IsCode should not match without a SQLSTATE")
	}
}
