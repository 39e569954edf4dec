// Package respond provides the JSON response envelope and the mapping from
// domain errors to HTTP error responses. It lives below the handler
// packages so they share one envelope without import cycles.
package respond

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/obra-coop/obranet/internal/models"
)

// Response is the standard API response wrapper.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Error is an API error payload with a stable code.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

// Stable error codes.
const (
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeBadRequest         = "BAD_REQUEST"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodePreconditionFailed = "PRECONDITION_FAILED"
	CodeConflict           = "CONFLICT"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// JSON writes a JSON data response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Response{Data: data}); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

// OK writes a 200 OK response.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 Created response.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Err writes a JSON error response.
func Err(w http.ResponseWriter, e *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	if err := json.NewEncoder(w).Encode(Response{Error: e}); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

// BadRequest writes a 400 with the given message.
func BadRequest(w http.ResponseWriter, message string) {
	Err(w, &Error{Code: CodeBadRequest, Message: message, Status: http.StatusBadRequest})
}

// Unauthorized writes a 401.
func Unauthorized(w http.ResponseWriter) {
	Err(w, &Error{Code: CodeUnauthorized, Message: "invalid or missing credentials", Status: http.StatusUnauthorized})
}

// RateLimited writes a 429.
func RateLimited(w http.ResponseWriter) {
	Err(w, &Error{Code: CodeRateLimited, Message: "too many requests", Status: http.StatusTooManyRequests})
}

// DomainError maps a service error onto the HTTP taxonomy and writes it.
// Unknown errors become 500 and are logged server-side only.
func DomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		Err(w, &Error{Code: CodeNotFound, Message: "resource not found", Status: http.StatusNotFound})
	case errors.Is(err, models.ErrForbidden):
		Err(w, &Error{Code: CodeForbidden, Message: "access denied", Status: http.StatusForbidden})
	case errors.Is(err, models.ErrUnauthenticated):
		Unauthorized(w)
	case errors.Is(err, models.ErrInvalidTransition):
		Err(w, &Error{Code: CodeInvalidTransition, Message: err.Error(), Status: http.StatusUnprocessableEntity})
	case errors.Is(err, models.ErrPreconditionFailed):
		Err(w, &Error{Code: CodePreconditionFailed, Message: err.Error(), Status: http.StatusConflict})
	case errors.Is(err, models.ErrConflict):
		Err(w, &Error{Code: CodeConflict, Message: "conflicting state", Status: http.StatusConflict})
	default:
		log.Printf("internal error: %v", err)
		Err(w, &Error{Code: CodeInternalError, Message: "internal server error", Status: http.StatusInternalServerError})
	}
}

// Decode reads a JSON request body into dst, rejecting unknown fields.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
