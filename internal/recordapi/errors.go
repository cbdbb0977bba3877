package recordapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the record API client.
var (
	// ErrNotFound indicates the endpoint or resource was not found.
	ErrNotFound = errors.New("not found in record API")

	// ErrAuthError indicates an authentication error (missing/invalid API key).
	ErrAuthError = errors.New("record API authentication error")

	// ErrRateLimited indicates the server rejected the request rate.
	ErrRateLimited = errors.New("record API rate limit exceeded")

	// ErrAPIError indicates a general API error.
	ErrAPIError = errors.New("record API error")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with record API")

	// ErrInvalidResponse indicates a body that is not the expected JSON array.
	ErrInvalidResponse = errors.New("invalid response from record API")
)

// APIError is an unexpected HTTP status from the record API.
type APIError struct {
	StatusCode int
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("record API error (status %d, %s): %s", e.StatusCode, e.Path, e.Message)
	}
	return fmt.Sprintf("record API error (status %d, %s)", e.StatusCode, e.Path)
}

func (e *APIError) Unwrap() error {
	return ErrAPIError
}

// IsNotFound returns true if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsAuthError returns true if the error indicates an authentication problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthError) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response, path string) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuthError, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode >= 400:
		return &APIError{StatusCode: resp.StatusCode, Path: path, Message: http.StatusText(resp.StatusCode)}
	}
	return nil
}
