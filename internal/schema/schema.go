// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package schema validates admin requests before they reach the store.
// Field errors are keyed by the JSON name the client submitted.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"carepath/internal/models"
	"carepath/internal/result"
)

// tagDurationRequired is reported when a fixed-length program has no duration.
const tagDurationRequired = "required_unless_self_paced"

// Human labels for JSON field names.
var labels = map[string]string{
	"title":        "Title",
	"description":  "Description",
	"categoryId":   "Category",
	"durationDays": "Duration",
	"isSelfPaced":  "Self-paced",
}

// Validator wraps a configured validator.Validate. It is safe for
// concurrent use.
type Validator struct {
	v *validator.Validate
}

// New builds a Validator with JSON field naming and the program rules.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(programDuration, models.CreateProgramParams{})
	return &Validator{v: v}
}

var defaultValidator = sync.OnceValue(New)

// CreateProgram validates with the shared default Validator.
func CreateProgram(p models.CreateProgramParams) (models.CreateProgramParams, error) {
	return defaultValidator().CreateProgram(p)
}

// CreateProgram normalizes and validates a create-program request. Text
// fields are trimmed and a self-paced program has its duration cleared.
// On failure the error is a *result.ValidationError.
func (s *Validator) CreateProgram(p models.CreateProgramParams) (models.CreateProgramParams, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.CategoryID = strings.TrimSpace(p.CategoryID)
	if p.IsSelfPaced {
		p.DurationDays = nil
	}

	if err := s.v.Struct(p); err != nil {
		return p, translate(err)
	}
	return p, nil
}

func programDuration(sl validator.StructLevel) {
	p := sl.Current().Interface().(models.CreateProgramParams)
	if !p.IsSelfPaced && p.DurationDays == nil {
		sl.ReportError(p.DurationDays, "durationDays", "DurationDays", tagDurationRequired, "")
	}
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate request: %w", err)
	}

	out := result.NewValidationError()
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	label, ok := labels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return label + " is required."
	case tagDurationRequired:
		return "Duration is required unless the program is self-paced."
	case "uuid":
		return label + " must be a valid identifier."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s day(s).", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s is too long (max %s characters).", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s days.", label, fe.Param())
	default:
		return label + " is invalid."
	}
}
