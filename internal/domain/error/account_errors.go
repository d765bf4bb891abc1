// Package error defines domain-specific errors for the recurring engine.
package error

import "errors"

// Account domain errors.
var (
	// ErrAccountNotFound is returned when an account is not found.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountNotOwnedByUser is returned when the account does not belong to the user.
	ErrAccountNotOwnedByUser = errors.New("account does not belong to user")

	// ErrAccountNameRequired is returned when an account is created without a name.
	ErrAccountNameRequired = errors.New("account name is required")
)

// AccountErrorCode defines error codes for account errors.
// Format: ACC-XXYYYY where XX is category and YYYY is specific error.
type AccountErrorCode string

const (
	ErrCodeAccountNotFound     AccountErrorCode = "ACC-010001"
	ErrCodeAccountNotOwned     AccountErrorCode = "ACC-010002"
	ErrCodeAccountNameRequired AccountErrorCode = "ACC-010003"
)

// AccountError represents an account error with code and message.
type AccountError struct {
	Code    AccountErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AccountError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AccountError) Unwrap() error {
	return e.Err
}

// NewAccountError creates a new AccountError with the given code and message.
func NewAccountError(code AccountErrorCode, message string, err error) *AccountError {
	return &AccountError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
