// File: internal/services/chat/errors.go
package chat

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeStorage    ErrorType = "STORAGE"
)

// Stable codes returned to clients alongside the error message.
const (
	CodeMissingMessage = "missing_message"
	CodeMissingTitle   = "missing_title"
	CodeThreadNotFound = "thread_not_found"
	CodeStreamNotFound = "stream_not_found"
	CodeStorage        = "internal_error"
)

type ChatError struct {
	Type      ErrorType
	Code      string
	Operation string
	Message   string
	ThreadID  uint
	UserID    uint
	Cause     error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Cause
}

func NewValidationError(operation, code, msg string) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Code: code, Operation: operation, Message: msg}
}

// NewNotFoundError is used for absent threads and for threads owned by
// another user alike, so the two cannot be told apart.
func NewNotFoundError(operation string, userID, threadID uint) *ChatError {
	return &ChatError{
		Type:      ErrTypeNotFound,
		Code:      CodeThreadNotFound,
		Operation: operation,
		Message:   "Thread not found",
		UserID:    userID,
		ThreadID:  threadID,
	}
}

func NewStorageError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeStorage, Code: CodeStorage, Operation: operation, Message: msg, Cause: cause}
}

func IsValidation(err error) bool {
	return hasType(err, ErrTypeValidation)
}

func IsNotFound(err error) bool {
	return hasType(err, ErrTypeNotFound)
}

func hasType(err error, t ErrorType) bool {
	var chatErr *ChatError
	return errors.As(err, &chatErr) && chatErr.Type == t
}
