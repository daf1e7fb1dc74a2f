package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrInvalidCredentials is returned when a username/password pair does not match an account.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError collects field level problems found while validating a payload.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Add records a message for field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// OrNil returns nil when no field has been flagged, so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NewValidationError builds a ValidationError with a single field message.
func NewValidationError(field, msg string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

// QueryParamError reports a malformed query string parameter.
type QueryParamError struct {
	Param  string
	Reason string
	// Summary overrides the default "Invalid <param> value" headline.
	Summary string
}

func (e *QueryParamError) Error() string {
	return fmt.Sprintf("invalid %s value: %s", e.Param, e.Reason)
}

// Headline is the short message shown to clients.
func (e *QueryParamError) Headline() string {
	if e.Summary != "" {
		return e.Summary
	}
	return fmt.Sprintf("Invalid %s value", e.Param)
}
