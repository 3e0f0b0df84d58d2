// Package jsonutil provides helper functions for JSON API responses.
//
// Every error body has the shape {"error": message}; validation failures add
// a "fields" object mapping each offending field to its message. Handlers that get an
// error back from the core pass it to FromError, which picks the status code
// from the domain error taxonomy.
package jsonutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dalemusser/stratafolders/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// OK writes a 200 OK JSON response.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 Created JSON response.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// NoContent writes a 204 No Content response (no body).
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes {"error": message} with the given status code.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// BadRequest writes a 400 Bad Request error response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// Invalid writes a 400 with {"error": message, "fields": fields}.
func Invalid(w http.ResponseWriter, message string, fields map[string]string) {
	JSON(w, http.StatusBadRequest, struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields,omitempty"`
	}{message, fields})
}

// Unauthorized writes a 401 Unauthorized error response.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// NotFound writes a 404 Not Found error response.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// InternalError writes a 500 Internal Server Error response.
// Do not expose internal details to clients; log the actual error separately.
func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}

// FromError writes err using its taxonomy status code. Validation and
// not-found messages are passed through; storage and unclassified failures
// get a generic message. It returns the status written.
func FromError(w http.ResponseWriter, err error) int {
	code := domain.StatusCode(err)
	switch code {
	case http.StatusBadRequest, http.StatusNotFound:
		Error(w, code, err.Error())
	case http.StatusBadGateway:
		Error(w, code, "file storage unavailable")
	default:
		InternalError(w, "internal server error")
	}
	return code
}

// Decode reads and decodes JSON from the request body into v. Unknown fields
// are rejected so typos do not silently blank a field on full-replace updates.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON payload: %w", err)
	}
	return nil
}

// PathID parses the chi URL parameter name as an ObjectID. A malformed id
// cannot match any document, so it is answered with 404 and ok is false.
func PathID(w http.ResponseWriter, r *http.Request, name, resource string) (primitive.ObjectID, bool) {
	raw := chi.URLParam(r, name)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		FromError(w, domain.NotFound(resource, raw))
		return primitive.NilObjectID, false
	}
	return id, true
}
