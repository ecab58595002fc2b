// File: internal/services/ai/errors.go
package ai

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeConfig   ErrorType = "CONFIG"
	ErrTypeNetwork  ErrorType = "NETWORK"
	ErrTypeProvider ErrorType = "PROVIDER"
)

type AIError struct {
	Type      ErrorType
	Code      int
	Message   string
	Model     string
	Operation string
	Cause     error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("AI %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("AI %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AIError) Unwrap() error {
	return e.Cause
}

func NewConfigError(msg string, cause error) *AIError {
	return &AIError{Type: ErrTypeConfig, Message: msg, Operation: "config", Cause: cause}
}

func NewNetworkError(operation, msg string, cause error) *AIError {
	return &AIError{Type: ErrTypeNetwork, Operation: operation, Message: msg, Cause: cause}
}

func NewProviderError(operation, msg string, cause error) *AIError {
	return &AIError{Type: ErrTypeProvider, Operation: operation, Message: msg, Cause: cause}
}

// IsConnectionFailure reports whether err means the backend could not be
// reached or configured.
func IsConnectionFailure(err error) bool {
	var aiErr *AIError
	if !errors.As(err, &aiErr) {
		return false
	}
	return aiErr.Type == ErrTypeNetwork || aiErr.Type == ErrTypeConfig
}
