// Package error defines domain-specific errors for the recurring engine.
package error

import "errors"

// Recurring template domain errors.
var (
	// ErrTemplateNotFound is returned when a recurring template is not found.
	ErrTemplateNotFound = errors.New("recurring template not found")

	// ErrNotAuthorizedToModifyTemplate is returned when a user does not own the template.
	ErrNotAuthorizedToModifyTemplate = errors.New("not authorized to modify recurring template")

	// ErrInvalidDayOfMonth is returned when the day of month is outside 1-31.
	ErrInvalidDayOfMonth = errors.New("day of month must be between 1 and 31")

	// ErrInvalidTemplateAmount is returned when the template amount is not positive.
	ErrInvalidTemplateAmount = errors.New("template amount must be positive")

	// ErrEndDateBeforeStartDate is returned when the end date precedes the start date.
	ErrEndDateBeforeStartDate = errors.New("end date must not precede start date")

	// ErrEligibilityQueryFailed is returned when candidate templates cannot be selected.
	// It is the only error that aborts a whole materialization run.
	ErrEligibilityQueryFailed = errors.New("failed to select eligible templates")
)

// RecurringErrorCode defines error codes for recurring template errors.
// Format: REC-XXYYYY where XX is category and YYYY is specific error.
type RecurringErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidDayOfMonth      RecurringErrorCode = "REC-010001"
	ErrCodeInvalidTemplateAmount  RecurringErrorCode = "REC-010002"
	ErrCodeEndDateBeforeStartDate RecurringErrorCode = "REC-010003"
	ErrCodeTemplateNotFound       RecurringErrorCode = "REC-010004"
	ErrCodeNotAuthorizedTemplate  RecurringErrorCode = "REC-010005"
	ErrCodeTemplateAccountInvalid RecurringErrorCode = "REC-010006"

	// Processing errors (02XXXX)
	ErrCodeEligibilityQueryFailed RecurringErrorCode = "REC-020001"
)

// RecurringError represents a recurring template error with code and message.
type RecurringError struct {
	Code    RecurringErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *RecurringError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *RecurringError) Unwrap() error {
	return e.Err
}

// NewRecurringError creates a new RecurringError with the given code and message.
func NewRecurringError(code RecurringErrorCode, message string, err error) *RecurringError {
	return &RecurringError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
