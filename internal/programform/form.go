// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package programform implements the create-program submission workflow:
// validate locally, submit once, then either invalidate the program list or
// surface the server's errors against the retained form values.
package programform

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"carepath/internal/models"
	"carepath/internal/result"
	"carepath/internal/schema"
)

// ProgramsRoute is the view invalidated after a successful create.
const ProgramsRoute = "/admin/programs"

// Banner texts.
const (
	FallbackMessage  = "Failed to create program"
	TransportMessage = "An unexpected error occurred. Please try again."
)

// DefaultDurationDays is the duration a new form starts with.
const DefaultDurationDays = 30

// ErrInFlight is returned by Submit while a previous submission is pending.
var ErrInFlight = errors.New("programform: submission already in flight")

// State is the workflow state of a Form.
type State int

const (
	Idle State = iota
	Submitting
	Success
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Submitter sends a validated request to the server. A non-nil error means
// the request never produced an envelope (transport failure); rejections
// come back as a failed Result.
type Submitter interface {
	CreateProgram(ctx context.Context, params models.CreateProgramParams) (result.Result[models.Program], error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, params models.CreateProgramParams) (result.Result[models.Program], error)

// CreateProgram calls f.
func (f SubmitterFunc) CreateProgram(ctx context.Context, params models.CreateProgramParams) (result.Result[models.Program], error) {
	return f(ctx, params)
}

// Invalidator marks a route's cached data stale.
type Invalidator interface {
	Invalidate(ctx context.Context, route string) error
}

// DefaultValues returns the values a new form is opened with.
func DefaultValues() models.CreateProgramParams {
	d := DefaultDurationDays
	return models.CreateProgramParams{DurationDays: &d}
}

// View is a point-in-time copy of a Form for rendering.
type View struct {
	State       State
	Values      models.CreateProgramParams
	FieldErrors map[string]string
	Banner      string
	Created     *models.Program
}

// Submitting reports whether the submit control should be disabled.
func (v View) Submitting() bool { return v.State == Submitting }

// Form is one create-program form instance. It allows a single in-flight
// submission and is safe for concurrent use.
type Form struct {
	submitter   Submitter
	invalidator Invalidator

	mu          sync.Mutex
	state       State
	values      models.CreateProgramParams
	fieldErrors map[string]string
	banner      string
	created     *models.Program
}

// New creates an idle form holding DefaultValues. invalidator may be nil.
func New(submitter Submitter, invalidator Invalidator) *Form {
	return &Form{
		submitter:   submitter,
		invalidator: invalidator,
		values:      DefaultValues(),
		fieldErrors: map[string]string{},
	}
}

// Submit runs one submission attempt with values and returns the resulting
// state. Validation failures leave the form Idle with field errors and do
// not reach the submitter. The only error returned is ErrInFlight.
func (f *Form) Submit(ctx context.Context, values models.CreateProgramParams) (State, error) {
	f.mu.Lock()
	if f.state == Submitting {
		f.mu.Unlock()
		return Submitting, ErrInFlight
	}
	f.values = values
	f.fieldErrors = map[string]string{}
	f.banner = ""
	f.created = nil

	params, err := schema.CreateProgram(values)
	if err != nil {
		var verr *result.ValidationError
		if errors.As(err, &verr) {
			f.applyDetails(verr)
			f.state = Idle
		} else {
			f.banner = TransportMessage
			f.state = Failed
		}
		st := f.state
		f.mu.Unlock()
		return st, nil
	}
	f.state = Submitting
	f.mu.Unlock()

	res, err := f.submitter.CreateProgram(ctx, params)

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case err != nil:
		slog.Error("create program request failed", "error", err)
		f.banner = TransportMessage
		f.state = Failed
	case res.Success && res.Data.ID != uuid.Nil:
		created := res.Data
		f.created = &created
		f.values = DefaultValues()
		f.state = Success
		if f.invalidator != nil {
			if ierr := f.invalidator.Invalidate(ctx, ProgramsRoute); ierr != nil {
				slog.Warn("invalidate programs route", "error", ierr)
			}
		}
	default:
		f.banner = FallbackMessage
		if res.Error != nil {
			if res.Error.Message != "" {
				f.banner = res.Error.Message
			}
			f.applyDetails(&result.ValidationError{Fields: res.Error.Details})
		}
		f.state = Failed
	}
	return f.state, nil
}

// applyDetails keeps the first message per field. Caller holds mu.
func (f *Form) applyDetails(v *result.ValidationError) {
	if !v.HasErrors() {
		return
	}
	for field := range v.Fields {
		if msg := v.First(field); msg != "" {
			f.fieldErrors[field] = msg
		}
	}
}

// State returns the current workflow state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// View returns a copy of the form for rendering.
func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	errs := make(map[string]string, len(f.fieldErrors))
	for k, v := range f.fieldErrors {
		errs[k] = v
	}
	return View{
		State:       f.state,
		Values:      f.values,
		FieldErrors: errs,
		Banner:      f.banner,
		Created:     f.created,
	}
}
