// Package error defines domain-specific errors for the recurring engine.
package error

import "errors"

// Transaction domain errors.
var (
	// ErrTransactionNotFound is returned when a transaction is not found in the system.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrTransactionAlreadyMaterialized is returned when a transaction already
	// exists for the same (template, year, month). The storage layer enforces
	// this with a unique constraint; an insert conflict maps to this error.
	ErrTransactionAlreadyMaterialized = errors.New("transaction already materialized for month")
)

// TransactionErrorCode defines error codes for transaction errors.
// Format: TXN-XXYYYY where XX is category and YYYY is specific error.
type TransactionErrorCode string

const (
	ErrCodeTransactionNotFound            TransactionErrorCode = "TXN-010001"
	ErrCodeTransactionAlreadyMaterialized TransactionErrorCode = "TXN-010002"
)
