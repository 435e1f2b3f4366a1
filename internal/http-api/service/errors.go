package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"yamdb/internal/http-api/repository"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid input")
)

// ValidationError carries per-field messages for a 400 response.
type ValidationError struct {
	Fields map[string][]string
	kind   error
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return e.kind }

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {msg}}, kind: ErrInvalid}
}

// conflictError is a field error caused by existing state, like a duplicate.
func conflictError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {msg}}, kind: ErrConflict}
}

// notFound rewrites a repository miss as "<what> not found"; other errors pass through.
func notFound(what string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return err
}
