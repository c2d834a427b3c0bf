package usecase

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTargetNotFound indicates the target does not exist on the platform.
	// A domain condition, not a transport failure; surfaced as a field error.
	ErrTargetNotFound = errors.New("target not found on platform")
	// ErrServiceUnavailable indicates a transport failure during a
	// validation round-trip. The operator may retry.
	ErrServiceUnavailable = errors.New("validation service unavailable")
	// ErrIncompatibleSite indicates a cookie-target association across
	// different sites.
	ErrIncompatibleSite = errors.New("cookie and platform belong to different sites")
)

// FieldErrorKind classifies a per-field validation failure.
type FieldErrorKind string

const (
	FieldRequired FieldErrorKind = "required"
	FieldInvalid  FieldErrorKind = "invalid"
)

// FieldError is one inline-surfaceable validation failure.
type FieldError struct {
	Field   string
	Kind    FieldErrorKind
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Field, e.Message, e.Kind)
}

// FieldErrors aggregates per-field validation failures for one draft.
type FieldErrors struct {
	Fields []FieldError
}

func (e *FieldErrors) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *FieldErrors) add(field string, kind FieldErrorKind, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Kind: kind, Message: message})
}

// Field returns the first error recorded for the named field, if any.
func (e *FieldErrors) Field(name string) (FieldError, bool) {
	for _, f := range e.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return FieldError{}, false
}

func (e *FieldErrors) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
