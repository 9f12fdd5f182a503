// Package errors provides domain-specific error types for modelkit
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Standard errors that can be used with errors.Is()
var (
	// ErrInvalidConfig indicates a configuration error
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrAuthentication indicates authentication failure
	ErrAuthentication = errors.New("authentication failed")

	// ErrRateLimit indicates provider rate limiting
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrTimeout indicates the provider call exceeded its deadline
	ErrTimeout = errors.New("request timed out")

	// ErrNetwork indicates a transport-level failure
	ErrNetwork = errors.New("network error")

	// ErrMalformedResponse indicates the provider returned an unusable reply
	ErrMalformedResponse = errors.New("malformed response")

	// ErrModelUnavailable indicates the model is not available
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrProviderUnavailable indicates the provider is not available
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// Category labels used when reporting provider failures.
const (
	CategoryAuth      = "auth"
	CategoryRateLimit = "rate_limit"
	CategoryTimeout   = "timeout"
	CategoryNetwork   = "network"
	CategoryMalformed = "malformed_response"
	CategoryUnknown   = "unknown"
)

// ProviderError wraps provider-related errors with context
type ProviderError struct {
	// Provider is the name of the provider (e.g., "claude", "openai")
	Provider string

	// Operation being performed (e.g., "generate_response", "parse_response")
	Op string

	// Underlying error
	Err error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// New creates a new ProviderError
func New(provider, op string, err error) error {
	return &ProviderError{
		Provider: provider,
		Op:       op,
		Err:      err,
	}
}

// Wrap adds provider context to an existing error
func Wrap(err error, provider, op string) error {
	if err == nil {
		return nil
	}
	return &ProviderError{
		Provider: provider,
		Op:       op,
		Err:      err,
	}
}

// Is enables custom error matching
func (e *ProviderError) Is(target error) bool {
	if errors.Is(e.Err, target) {
		return true
	}

	t, ok := target.(*ProviderError)
	if !ok {
		return false
	}

	if t.Provider != "" && t.Provider != e.Provider {
		return false
	}
	if t.Op != "" && t.Op != e.Op {
		return false
	}

	if t.Provider != "" || t.Op != "" {
		return true
	}

	return errors.Is(e.Err, t.Err)
}

// Category maps an error to its failure category label.
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuthentication):
		return CategoryAuth
	case errors.Is(err, ErrRateLimit):
		return CategoryRateLimit
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return CategoryTimeout
	case errors.Is(err, ErrNetwork):
		return CategoryNetwork
	case errors.Is(err, ErrMalformedResponse):
		return CategoryMalformed
	default:
		return CategoryUnknown
	}
}

// IsTransient reports whether the error belongs to a failure class worth
// retrying. Authentication and malformed-response failures are permanent.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrNetwork)
}
