package httpauth

import (
	"fmt"
	"net/http"

	"github.com/sss-sync/console/pkg/auth"
)

// Backend messages for rejected credentials.
const (
	MessageUserNotFound    = "USER_NOT_FOUND"
	MessageInvalidPassword = "INVALID_PASSWORD"
)

// APIError is a non-success response from the backend.
type APIError struct {
	// Status is the HTTP status code.
	Status int
	// Code is the envelope code, 0 when the body was not an envelope.
	Code int
	// Message is the envelope message or the raw body.
	Message string
	// RequestID is the X-Request-ID sent with the call.
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("httpauth: login failed: status %d, code %d: %s", e.Status, e.Code, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("httpauth: login failed: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("httpauth: login failed: status %d", e.Status)
}

// Unauthorized reports whether the backend rejected the credentials.
func (e *APIError) Unauthorized() bool {
	switch {
	case e.Status == http.StatusUnauthorized, e.Code == http.StatusUnauthorized:
		return true
	case e.Message == MessageUserNotFound, e.Message == MessageInvalidPassword:
		return true
	}
	return false
}

// Unwrap exposes auth.ErrInvalidCredentials for rejected credentials.
func (e *APIError) Unwrap() error {
	if e.Unauthorized() {
		return auth.ErrInvalidCredentials
	}
	return nil
}
