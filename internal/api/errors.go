package api

import (
	"errors"
	"fmt"
)

// Error is the uniform failure shape of every API call: network failures and
// non-2xx statuses both surface as *Error. Callers branch on Status or
// Payload and show Message to the user.
type Error struct {
	// Message is the human-readable message: the server's detail/message
	// field when present, else "HTTP <status>".
	Message string

	// Status is the HTTP status code, 0 for network failures.
	Status int

	// Payload is the decoded JSON error body, or the raw text when the body
	// was not JSON.
	Payload any
}

func (e *Error) Error() string {
	return e.Message
}

// newHTTPError builds an *Error from a non-2xx response body following the
// precedence detail > message > "HTTP <status>".
func newHTTPError(status int, payload any) *Error {
	msg := fmt.Sprintf("HTTP %d", status)
	if m, ok := payload.(map[string]any); ok {
		if s, ok := m["detail"].(string); ok && s != "" {
			msg = s
		} else if s, ok := m["message"].(string); ok && s != "" {
			msg = s
		}
	}
	return &Error{Message: msg, Status: status, Payload: payload}
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an
// API error.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether err is the fatal 401 error. By the time the
// caller sees it, the session has already been torn down.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == 401
}
