// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"carepath/internal/models"
	"carepath/internal/result"
)

// maxJSONBody caps API request bodies.
const maxJSONBody = 64 << 10

// APICategories returns the category list envelope.
func (a *Admin) APICategories(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, a.actions.GetCategories(r.Context()))
}

// APIPrograms returns the program list envelope, newest first.
func (a *Admin) APIPrograms(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, a.actions.GetPrograms(r.Context()))
}

// APICreateProgram creates a program from a JSON body.
func (a *Admin) APICreateProgram(w http.ResponseWriter, r *http.Request) {
	var params models.CreateProgramParams
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(&params); err != nil {
		verr := result.NewValidationError()
		verr.Add("body", "Request body must be a JSON object.")
		writeResult(w, r, result.Fail[models.Program](verr))
		return
	}

	res := a.actions.CreateProgram(r.Context(), params)
	switch {
	case res.Success:
		a.metrics.RecordSubmission("success")
	case res.Status == http.StatusBadRequest:
		a.metrics.RecordSubmission("invalid")
	default:
		a.metrics.RecordSubmission("failed")
	}
	writeResult(w, r, res)
}

// writeResult encodes the envelope with the status it carries.
func writeResult[T any](w http.ResponseWriter, r *http.Request, res result.Result[T]) {
	status := res.Status
	if status == 0 {
		status = http.StatusOK
		if !res.Success {
			status = http.StatusInternalServerError
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.WarnContext(r.Context(), "encode api response", "error", err)
	}
}
