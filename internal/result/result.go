// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package result defines the envelope every admin action returns and the
// error taxonomy that is folded into it.
package result

import (
	"errors"
	"log/slog"
	"net/http"
)

// Public messages. Internal error text never reaches the caller.
const (
	MsgValidation   = "Validation failed."
	MsgUnauthorized = "You must be signed in."
	MsgForbidden    = "You are not authorized to perform this action."
	MsgNotFound     = "Resource not found."
	MsgBackend      = "A database error occurred. Please try again."
	MsgUnexpected   = "An unexpected error occurred."
)

// ErrorInfo is the error half of the envelope.
type ErrorInfo struct {
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

// Result is the uniform action response. Exactly one of Data or Error is
// meaningful, selected by Success.
type Result[T any] struct {
	Success bool       `json:"success"`
	Data    T          `json:"data,omitzero"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Status  int        `json:"status,omitempty"`
}

// OK wraps data in a successful envelope.
func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data, Status: http.StatusOK}
}

// Fail folds err into a failed envelope with a public message and status.
// Backend and unknown errors are logged here and their text is dropped.
func Fail[T any](err error) Result[T] {
	info, status := classify(err)
	return Result[T]{Error: info, Status: status}
}

func classify(err error) (*ErrorInfo, int) {
	var (
		verr *ValidationError
		aerr *AuthorizationError
		berr *BackendError
	)

	switch {
	case errors.As(err, &verr):
		return &ErrorInfo{Message: MsgValidation, Details: verr.Fields}, http.StatusBadRequest
	case errors.As(err, &aerr):
		if aerr.Reason == Forbidden {
			return &ErrorInfo{Message: MsgForbidden}, http.StatusForbidden
		}
		return &ErrorInfo{Message: MsgUnauthorized}, http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return &ErrorInfo{Message: MsgNotFound}, http.StatusNotFound
	case errors.As(err, &berr):
		slog.Error("backend operation failed", "op", berr.Op, "code", berr.Code, "error", berr.Err)
		return &ErrorInfo{Message: MsgBackend}, http.StatusInternalServerError
	default:
		slog.Error("unexpected action error", "error", err)
		return &ErrorInfo{Message: MsgUnexpected}, http.StatusInternalServerError
	}
}
