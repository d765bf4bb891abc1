// Package error defines domain-specific errors for the recurring engine.
package error

import "errors"

// Authentication domain errors.
var (
	// ErrInvalidToken is returned when a JWT token is invalid or expired.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrMissingToken is returned when no token is provided.
	ErrMissingToken = errors.New("missing authentication token")
)

// AuthErrorCode defines error codes for authentication errors.
// Format: AUTH-XXYYYY where XX is category and YYYY is specific error.
type AuthErrorCode string

const (
	ErrCodeMissingToken    AuthErrorCode = "AUTH-010001"
	ErrCodeInvalidToken    AuthErrorCode = "AUTH-010002"
	ErrCodeTooManyRequests AuthErrorCode = "AUTH-010003"
)
