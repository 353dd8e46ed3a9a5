package models

import "errors"

var (
	ErrPaymentNotFound     = errors.New("payment record not found")
	ErrPaymentNotCompleted = errors.New("payment not completed successfully")
	ErrDocumentNotFound    = errors.New("document files not found")
)

// ValidationError reports bad or missing request input. Handlers map it to
// a 400 response with the message intact.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}
