// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID string `json:"id"`
}

func TestOKEnvelopeJSON(t *testing.T) {
	b, err := json.Marshal(OK(item{ID: "p1"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"id":"p1"},"status":200}`, string(b))
}

func TestFailEnvelopeJSONOmitsData(t *testing.T) {
	b, err := json.Marshal(Fail[item](ErrNotFound))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":{"message":"Resource not found."},"status":404}`, string(b))
}

func TestFailClassification(t *testing.T) {
	verr := NewValidationError()
	verr.Add("title", "Title is required.")

	tests := []struct {
		name    string
		err     error
		message string
		status  int
		details bool
	}{
		{name: "validation", err: verr, message: MsgValidation, status: http.StatusBadRequest, details: true},
		{name: "unauthenticated", err: &AuthorizationError{Reason: Unauthenticated}, message: MsgUnauthorized, status: http.StatusUnauthorized},
		{name: "forbidden", err: &AuthorizationError{Reason: Forbidden}, message: MsgForbidden, status: http.StatusForbidden},
		{name: "not found wrapped", err: fmt.Errorf("find program: %w", ErrNotFound), message: MsgNotFound, status: http.StatusNotFound},
		{name: "backend", err: &BackendError{Op: "insert program", Code: "23503", Err: errors.New("fk violation")}, message: MsgBackend, status: http.StatusInternalServerError},
		{name: "unknown", err: errors.New("boom"), message: MsgUnexpected, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Fail[item](tt.err)
			assert.False(t, r.Success)
			require.NotNil(t, r.Error)
			assert.Equal(t, tt.message, r.Error.Message)
			assert.Equal(t, tt.status, r.Status)
			if tt.details {
				assert.Equal(t, []string{"Title is required."}, r.Error.Details["title"])
			} else {
				assert.Empty(t, r.Error.Details)
			}
		})
	}
}

func TestFailNeverLeaksInternalText(t *testing.T) {
	r := Fail[item](&BackendError{Op: "select programs", Err: errors.New("password authentication failed for user carepath")})
	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "password authentication")
}

func TestBackendErrorUnwrap(t *testing.T) {
	cause := errors.New("conn reset")
	err := fmt.Errorf("list: %w", &BackendError{Op: "list programs", Err: cause})
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "list programs")
}

func TestValidationErrorHelpers(t *testing.T) {
	var nilErr *ValidationError
	assert.False(t, nilErr.HasErrors())
	assert.Equal(t, "", nilErr.First("title"))

	var v ValidationError
	v.Add("durationDays", "Duration is required.")
	v.Add("durationDays", "Duration must be at least 1.")
	assert.True(t, v.HasErrors())
	assert.Equal(t, "Duration is required.", v.First("durationDays"))
	assert.Contains(t, v.Error(), "durationDays")
}
