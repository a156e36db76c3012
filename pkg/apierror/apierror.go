package apierror

import (
	"fmt"
	"net/http"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

func NotFound(message string, details string) *APIError {
	return New("NOT_FOUND", message, details, http.StatusNotFound)
}

func AlreadyExists(message string, details string) *APIError {
	return New("ALREADY_EXISTS", message, details, http.StatusConflict)
}

func BadRequest(message string, details string) *APIError {
	return New("BAD_REQUEST", message, details, http.StatusBadRequest)
}

// AuthenticationFailed reports a credential mismatch on login.
func AuthenticationFailed() *APIError {
	return New("AUTHENTICATION_FAILED", "invalid credentials", "", http.StatusUnauthorized)
}

// InvalidAuth reports any token failure. The message is deliberately uniform
// so callers cannot tell a bad signature from an expired or malformed token.
func InvalidAuth() *APIError {
	return New("INVALID_AUTH", "invalid jwt authentication", "", http.StatusUnauthorized)
}
