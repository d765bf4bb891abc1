// Package dto defines data transfer objects for API requests and responses.
package dto

import "time"

// ProcessRecurringResponse represents the response of a materialization run.
type ProcessRecurringResponse struct {
	TransactionsCreated int       `json:"transactions_created"`
	RanAt               time.Time `json:"ran_at"`
}
