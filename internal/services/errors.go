package services

import "fmt"

// ConfigurationError is returned when a provider secret is missing. It cannot
// heal without operator action.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string { return "LLM configuration missing on server" }

// ProviderError carries a non-success response from the completion provider verbatim.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string { return fmt.Sprintf("LLM API Error: %d", e.StatusCode) }

// InternalError hides any other failure from the caller. Cause is for logs only.
type InternalError struct {
	Cause error
}

func (e *InternalError) Error() string { return "Internal Server Error" }

func (e *InternalError) Unwrap() error { return e.Cause }
