package fetcher

import (
	"fmt"
)

// ErrorType represents the category of error that occurred during a fetch operation
type ErrorType string

const (
	// ErrorTypeNetwork indicates a network-level error (connection refused, DNS, etc.)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeTimeout indicates the request timed out
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeRateLimit indicates the request was rejected due to rate limiting (HTTP 429)
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeBlocked indicates the request was refused by an anti-bot check (HTTP 403)
	ErrorTypeBlocked ErrorType = "blocked"
	// ErrorTypeServer indicates a server error (HTTP 5xx)
	ErrorTypeServer ErrorType = "server"
	// ErrorTypeClient indicates a client error (HTTP 4xx except 429/403)
	ErrorTypeClient ErrorType = "client"
	// ErrorTypeMalformed indicates a 200 response whose body is missing the metric field
	ErrorTypeMalformed ErrorType = "malformed"
	// ErrorTypeExhausted indicates the retry budget ran out without a success
	ErrorTypeExhausted ErrorType = "exhausted"
)

// FetchError represents a structured error from a fetch operation
type FetchError struct {
	Type       ErrorType
	Retryable  bool
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// NewNetworkError creates a network error
func NewNetworkError(cause error) *FetchError {
	return &FetchError{
		Type:      ErrorTypeNetwork,
		Retryable: true,
		Message:   "network request failed",
		Cause:     cause,
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(cause error) *FetchError {
	return &FetchError{
		Type:      ErrorTypeTimeout,
		Retryable: true,
		Message:   "request timed out",
		Cause:     cause,
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(statusCode int) *FetchError {
	return &FetchError{
		Type:       ErrorTypeRateLimit,
		Retryable:  true,
		StatusCode: statusCode,
		Message:    "rate limit exceeded",
	}
}

// NewBlockedError creates an anti-bot block error
func NewBlockedError(statusCode int) *FetchError {
	return &FetchError{
		Type:       ErrorTypeBlocked,
		Retryable:  true,
		StatusCode: statusCode,
		Message:    "request blocked, possible anti-bot check",
	}
}

// NewServerError creates a server error
func NewServerError(statusCode int) *FetchError {
	return &FetchError{
		Type:       ErrorTypeServer,
		Retryable:  true,
		StatusCode: statusCode,
		Message:    "server returned an error",
	}
}

// NewClientError creates a client error
func NewClientError(statusCode int, message string) *FetchError {
	return &FetchError{
		Type:       ErrorTypeClient,
		Retryable:  false,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewMalformedError creates a malformed-response error. A missing metric field
// means the upstream schema changed, so this is never retried.
func NewMalformedError(message string) *FetchError {
	return &FetchError{
		Type:      ErrorTypeMalformed,
		Retryable: false,
		Message:   message,
	}
}

// NewExhaustedError creates a retries-exhausted error wrapping the last attempt's failure
func NewExhaustedError(attempts int, cause error) *FetchError {
	return &FetchError{
		Type:      ErrorTypeExhausted,
		Retryable: false,
		Message:   fmt.Sprintf("no success after %d attempts", attempts),
		Cause:     cause,
	}
}

// ClassifyStatus classifies a non-200 HTTP status code into an appropriate FetchError
func ClassifyStatus(statusCode int) *FetchError {
	switch {
	case statusCode == 429:
		return NewRateLimitError(statusCode)
	case statusCode == 403:
		return NewBlockedError(statusCode)
	case statusCode >= 500:
		return NewServerError(statusCode)
	default:
		return NewClientError(statusCode, fmt.Sprintf("unexpected status code: %d", statusCode))
	}
}
