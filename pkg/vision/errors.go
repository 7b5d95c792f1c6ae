package vision

import (
	"errors"
	"fmt"
)

// Sentinel errors for vision service operations.
var (
	// ErrNotFound indicates the requested resource (project, iteration,
	// deployment) does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidCredentials indicates authentication failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrThrottled indicates the request was rate limited by the service.
	ErrThrottled = errors.New("request throttled")

	// ErrServiceUnavailable indicates the service could not complete the
	// request (5xx response or no response at all).
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrBadRequest indicates the service rejected the request payload.
	ErrBadRequest = errors.New("bad request")
)

// APIError wraps a failed vision service call with context.
//
// Any failure to reach or get a valid response from a remote endpoint is
// surfaced as an APIError; callers are expected to abort, not retry.
type APIError struct {
	// Op is the operation that failed (e.g., "GetIteration", "Detect").
	Op string

	// Service is the client kind (e.g., "customvision-training", "face").
	Service string

	// StatusCode is the HTTP status code, or zero when the call never
	// produced a response.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: HTTP %d: %v", e.Service, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidCredentials returns true if the error indicates authentication failed.
func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

// IsThrottled returns true if the error indicates the request was rate limited.
func IsThrottled(err error) bool {
	return errors.Is(err, ErrThrottled)
}

// IsUnavailable returns true if the error indicates the service could not
// complete the request.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

// statusErr maps an HTTP status code to the matching sentinel error.
func statusErr(code int) error {
	switch {
	case code == 401 || code == 403:
		return ErrInvalidCredentials
	case code == 404:
		return ErrNotFound
	case code == 429:
		return ErrThrottled
	case code >= 500:
		return ErrServiceUnavailable
	case code >= 400:
		return ErrBadRequest
	default:
		return fmt.Errorf("unexpected status %d", code)
	}
}
