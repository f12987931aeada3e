package legacyapi

import (
	"errors"
	"fmt"
)

// ErrorCategory is the normalized failure taxonomy for the legacy API.
type ErrorCategory string

const (
	// ErrorTimeout indicates the upstream took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the upstream returned a body we cannot read
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorAuthentication indicates the service token was rejected
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorOutage indicates the upstream is unreachable or failing
	ErrorOutage ErrorCategory = "outage"

	// ErrorCircuitOpen indicates calls are short-circuited after repeated failures
	ErrorCircuitOpen ErrorCategory = "circuit_open"

	// ErrorNotFound indicates the requested record doesn't exist
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorRateLimited indicates too many requests
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorRejected indicates the upstream refused a write as invalid
	ErrorRejected ErrorCategory = "rejected"
)

// ProviderError wraps a legacy API failure with its category.
type ProviderError struct {
	Category   ErrorCategory
	Endpoint   string
	Message    string
	Underlying error
	Retryable  bool
}

func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("legacy api %s [%s]: %s: %v", e.Endpoint, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("legacy api %s [%s]: %s", e.Endpoint, e.Category, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// NewProviderError derives Retryable from the category.
func NewProviderError(category ErrorCategory, endpoint, message string, underlying error) *ProviderError {
	retryable := category == ErrorTimeout ||
		category == ErrorOutage ||
		category == ErrorCircuitOpen ||
		category == ErrorRateLimited

	return &ProviderError{
		Category:   category,
		Endpoint:   endpoint,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsRetryable reports whether err is a transient upstream failure.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// GetCategory extracts the category, or "" for foreign errors.
func GetCategory(err error) ErrorCategory {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ""
}
