package anthropic

import "fmt"

// ErrorType is the closed set of error conditions the API declares.
type ErrorType string

// API error types.
const (
	ErrInvalidRequest  ErrorType = "invalid_request_error"
	ErrAuthentication  ErrorType = "authentication_error"
	ErrPermission      ErrorType = "permission_error"
	ErrNotFound        ErrorType = "not_found_error"
	ErrRequestTooLarge ErrorType = "request_too_large"
	ErrRateLimit       ErrorType = "rate_limit_error"
	ErrAPI             ErrorType = "api_error"
	ErrOverloaded      ErrorType = "overloaded_error"
)

// APIError is an error the API declared itself, as opposed to a transport
// or decoding failure. Unknown types pass through so that new error classes
// do not break decoding.
type APIError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("anthropic: %s", e.Type)
	}
	return fmt.Sprintf("anthropic: %s: %s", e.Type, e.Message)
}

// Retryable reports whether the error is a transient throttling condition
// that a transport may retry. Everything else is final.
func (e *APIError) Retryable() bool {
	return e.Type == ErrRateLimit || e.Type == ErrOverloaded
}
