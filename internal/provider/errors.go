package provider

import (
	"errors"
	"fmt"
)

// NetworkError wraps a transport-level failure (connection refused,
// reset, timeout). Always retryable.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProviderError is a non-2xx response from a transcription API.
// 429 and 5xx are retryable; other 4xx are not.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// UnsupportedOptionError is raised pre-flight when the selected adapter
// cannot honor a requested option. Fatal for the run; never dropped.
type UnsupportedOptionError struct {
	Provider string
	Option   Option
}

func (e *UnsupportedOptionError) Error() string {
	return fmt.Sprintf("provider %s does not support option %q", e.Provider, e.Option)
}

// UnknownProviderError is returned by the registry for identifiers that
// were never registered. Selecting a provider never silently defaults.
type UnknownProviderError struct {
	Name      string
	Available []string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider: %s (available: %v)", e.Name, e.Available)
}

// IsRetryable reports whether a segment call that failed with err is
// worth another attempt.
func IsRetryable(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.StatusCode == 429 || provErr.StatusCode >= 500
	}
	return false
}
