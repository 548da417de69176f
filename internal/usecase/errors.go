package usecase

import (
	"errors"
	"fmt"
)

const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeNotConnected  = "NOT_CONNECTED"
	CodeConflict      = "CONFLICT"
	CodeNotConfigured = "NOT_CONFIGURED"
	CodeAccessDenied  = "ACCESS_DENIED"
	CodeRateLimited   = "RATE_LIMITED"
	CodeExternal      = "EXTERNAL_ERROR"
	CodeStorage       = "STORAGE_ERROR"
)

// DomainError is a failure the operator can act on: bad input, missing
// records, missing configuration.
type DomainError struct {
	Code         string
	Message      string
	Details      string
	Instructions []string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError wraps an infrastructure failure. Details is safe to show.
type TechnicalError struct {
	Code    string
	Message string
	Details string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// RateLimitError rejects a send that does not fit the current window.
type RateLimitError struct {
	Decision RateLimitDecision
}

func (e *RateLimitError) Error() string {
	return e.Decision.Message
}

func validationError(msg string) error {
	return &DomainError{Code: CodeValidation, Message: msg}
}

func notFoundError(msg string) error {
	return &DomainError{Code: CodeNotFound, Message: msg}
}

func storageError(op string, err error) error {
	return &TechnicalError{Code: CodeStorage, Message: "failed to " + op, Err: err}
}

// StatusCoder is implemented by integration errors that carry an HTTP status.
type StatusCoder interface {
	StatusCode() int
}

func statusCodeOf(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}
