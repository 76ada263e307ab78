package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Stable error codes returned in the "error" field of error responses.
const (
	ErrorCodeValidation         = "validation_error"
	ErrorCodeDuplicateIdentity  = "duplicate_identity"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeAccountLocked      = "account_locked"
	ErrorCodeAccountDeactivated = "account_deactivated"
	ErrorCodeMissingToken       = "missing_token"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeTokenExpired       = "token_expired"
	ErrorCodeForbidden          = "forbidden"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeConflict           = "conflict"
	ErrorCodeServerError        = "server_error"
)

// Error is the wire shape of every failed response. It implements the
// error interface so the same values serve the server handlers and any
// Go client of this API.
type Error struct {
	// StatusCode is the HTTP status code for this error.
	StatusCode int `json:"-"`

	// Code is the stable machine-readable error code.
	Code string `json:"error"`

	// Message is a human-readable description safe to show to users.
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithMessage returns a copy carrying a more specific human message.
// The status and code stay stable.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

// WriteError writes this Error to an HTTP response writer.
func (e *Error) WriteError(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

var (
	// ErrValidation is returned for malformed or missing input, caught
	// before touching storage.
	ErrValidation = &Error{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeValidation,
		Message:    "the request is malformed or missing required fields",
	}

	// ErrDuplicateIdentity is returned when the email or username is
	// already registered.
	ErrDuplicateIdentity = &Error{
		StatusCode: http.StatusConflict,
		Code:       ErrorCodeDuplicateIdentity,
		Message:    "email or username is already registered",
	}

	// ErrInvalidCredentials covers both "no such account" and "wrong
	// password" so callers cannot enumerate registered emails.
	ErrInvalidCredentials = &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidCredentials,
		Message:    "invalid email or password",
	}

	// ErrAccountLocked is the one credential failure whose reason is
	// disclosed: locking is already observable behaviour and the user
	// needs to know to wait.
	ErrAccountLocked = &Error{
		StatusCode: http.StatusLocked,
		Code:       ErrorCodeAccountLocked,
		Message:    "account temporarily locked due to too many failed login attempts, please try again later",
	}

	ErrAccountDeactivated = &Error{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodeAccountDeactivated,
		Message:    "account has been deactivated, please contact support",
	}

	ErrMissingToken = &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeMissingToken,
		Message:    "no bearer token provided",
	}

	ErrInvalidToken = &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidToken,
		Message:    "token is invalid",
	}

	ErrTokenExpired = &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeTokenExpired,
		Message:    "token has expired, please log in again",
	}

	ErrForbidden = &Error{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodeForbidden,
		Message:    "you do not have permission to perform this action",
	}

	ErrNotFound = &Error{
		StatusCode: http.StatusNotFound,
		Code:       ErrorCodeNotFound,
		Message:    "resource not found",
	}

	ErrConflict = &Error{
		StatusCode: http.StatusConflict,
		Code:       ErrorCodeConflict,
		Message:    "the request conflicts with the current state of the resource",
	}

	// ErrServerError is returned for unexpected storage or connectivity
	// failures, without leaking internal detail.
	ErrServerError = &Error{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeServerError,
		Message:    "internal server error",
	}
)
