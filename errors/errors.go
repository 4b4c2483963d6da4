// Package errors provides an API for errors across the application.
package errors

import "strings"

// RequestError carries the HTTP status code its cause should map to.
type RequestError struct {
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Violation is a single structured validation failure.
type Violation struct {
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

// ValidationError enumerates every violation found in a payload.
// It always maps to HTTP 400 with a body listing all violations.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	mm := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		mm[i] = strings.Join(v.Path, ".") + ": " + v.Message
	}
	return strings.Join(mm, "; ")
}
