// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction represents a concrete transaction materialized from a
// recurring template for one calendar month.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	AccountID   uuid.UUID
	Date        time.Time
	Amount      decimal.Decimal // Negative for expenses, positive for income
	Merchant    string
	Description string
	Category    string
	// RecurringTemplateID links back to the template that produced this
	// transaction. Together with RecurrenceYear/RecurrenceMonth it carries
	// the at-most-one-per-month guarantee.
	RecurringTemplateID uuid.UUID
	RecurrenceMonth     time.Month
	RecurrenceYear      int
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           *time.Time // Soft-delete support
}

// NewTransaction creates a new materialized Transaction entity for the given
// template and target date.
func NewTransaction(template *RecurringTemplate, date time.Time) *Transaction {
	now := time.Now().UTC()

	return &Transaction{
		ID:                  uuid.New(),
		UserID:              template.UserID,
		AccountID:           template.AccountID,
		Date:                date,
		Amount:              template.SignedAmount(),
		Merchant:            template.Merchant,
		Description:         template.Description,
		Category:            template.Category,
		RecurringTemplateID: template.ID,
		RecurrenceMonth:     date.Month(),
		RecurrenceYear:      date.Year(),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}
