package apiclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rushtracker/rushtracker/pkg/session"
)

var (
	// ErrUnauthorized means the API rejected the token; the session has already been cleared
	ErrUnauthorized = errors.New("session expired, please log in again")
	// ErrNotFound is returned for 404 responses
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx response, or a 2xx response whose envelope reports failure
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// Unwrap lets callers match 401 and 404 with errors.Is
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// Message returns the best user-facing text for err: the server's message when it sent one,
// otherwise fallback
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, session.ErrNoSession) {
		return ErrUnauthorized.Error()
	}
	return fallback
}
