// Package domain holds the error taxonomy shared by the core and the HTTP shell.
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is implemented by errors that map to an HTTP status code.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinels for errors.Is checks.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage failure")
)

type (
	// ValidationError reports missing or empty required input.
	ValidationError struct {
		Message string
	}

	// NotFoundError reports a referenced id that does not exist.
	NotFoundError struct {
		Resource string // folder, category, attachment
		ID       string
	}

	// StorageError reports a blob write/read/delete failure, as opposed to a
	// metadata store failure.
	StorageError struct {
		Op   string // put, get, delete
		Path string
		Err  error
	}
)

func (e *ValidationError) Error() string { return e.Message }

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }
func (e *NotFoundError) StatusCode() int   { return http.StatusNotFound }
func (e *StorageError) StatusCode() int    { return http.StatusBadGateway }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *StorageError) Is(target error) bool    { return target == ErrStorage }

// Invalid builds a ValidationError.
func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a NotFoundError for the given resource kind and id.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// Storage builds a StorageError wrapping err.
func Storage(op, path string, err error) error {
	return &StorageError{Op: op, Path: path, Err: err}
}

// StatusCode returns the HTTP status for err, defaulting to 500.
func StatusCode(err error) int {
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}
