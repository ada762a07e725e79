// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package result

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("resource not found")

// ValidationError carries per-field messages produced by request validation.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add appends a message for the given field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors reports whether any field has a message.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// First returns the first message for a field, or "".
func (e *ValidationError) First(field string) string {
	if e == nil || len(e.Fields[field]) == 0 {
		return ""
	}
	return e.Fields[field][0]
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AuthReason distinguishes the two ways the authorization gate can refuse.
type AuthReason int

const (
	// Unauthenticated means there is no signed-in, fully verified user.
	Unauthenticated AuthReason = iota
	// Forbidden means the user is signed in but lacks the admin role.
	Forbidden
)

// AuthorizationError is returned by the admin gate.
type AuthorizationError struct {
	Reason AuthReason
}

func (e *AuthorizationError) Error() string {
	if e.Reason == Forbidden {
		return "authorization: admin role required"
	}
	return "authorization: not signed in"
}

// BackendError wraps a failed store operation. Code holds the SQLSTATE when
// the driver reported one.
type BackendError struct {
	Op   string
	Code string
	Err  error
}

func (e *BackendError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: [%s] %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
