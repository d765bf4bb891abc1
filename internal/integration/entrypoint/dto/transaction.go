// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/finflow/recurring-engine/internal/application/usecase/transaction"
)

// TransactionResponse represents a materialized transaction in API responses.
type TransactionResponse struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	AccountID           string    `json:"account_id"`
	Date                string    `json:"date"`
	Amount              string    `json:"amount"`
	Merchant            string    `json:"merchant"`
	Description         string    `json:"description"`
	Category            string    `json:"category"`
	RecurringTemplateID string    `json:"recurring_template_id"`
	RecurrenceMonth     int       `json:"recurrence_month"`
	RecurrenceYear      int       `json:"recurrence_year"`
	CreatedAt           time.Time `json:"created_at"`
}

// TransactionListResponse represents the response for listing transactions.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// ToTransactionResponse converts a TransactionOutput to a TransactionResponse DTO.
func ToTransactionResponse(t *transaction.TransactionOutput) TransactionResponse {
	return TransactionResponse{
		ID:                  t.ID.String(),
		UserID:              t.UserID.String(),
		AccountID:           t.AccountID.String(),
		Date:                t.Date.Format("2006-01-02"),
		Amount:              t.Amount.String(),
		Merchant:            t.Merchant,
		Description:         t.Description,
		Category:            t.Category,
		RecurringTemplateID: t.RecurringTemplateID.String(),
		RecurrenceMonth:     int(t.RecurrenceMonth),
		RecurrenceYear:      t.RecurrenceYear,
		CreatedAt:           t.CreatedAt,
	}
}
