// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecurringTemplate represents a recurring-transaction definition that
// generates one concrete transaction per calendar month.
type RecurringTemplate struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	AccountID   uuid.UUID
	Merchant    string
	Description string
	Category    string
	Tags        []string
	Amount      decimal.Decimal // Unsigned magnitude; sign applied at materialization
	IsExpense   bool
	DayOfMonth  int // Target day 1-31, clamped to the month's length
	StartDate   time.Time
	EndDate     *time.Time
	IsActive    bool
	// LastProcessed is the watermark of the most recent month successfully
	// materialized, nil if the template has never been processed.
	LastProcessed *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time // Soft-delete support
}

// NewRecurringTemplate creates a new RecurringTemplate entity.
func NewRecurringTemplate(
	userID uuid.UUID,
	accountID uuid.UUID,
	merchant string,
	description string,
	category string,
	tags []string,
	amount decimal.Decimal,
	isExpense bool,
	dayOfMonth int,
	startDate time.Time,
	endDate *time.Time,
) *RecurringTemplate {
	now := time.Now().UTC()

	return &RecurringTemplate{
		ID:          uuid.New(),
		UserID:      userID,
		AccountID:   accountID,
		Merchant:    merchant,
		Description: description,
		Category:    category,
		Tags:        tags,
		Amount:      amount,
		IsExpense:   isExpense,
		DayOfMonth:  dayOfMonth,
		StartDate:   startDate,
		EndDate:     endDate,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SignedAmount returns the amount with the expense sign applied.
func (t *RecurringTemplate) SignedAmount() decimal.Decimal {
	if t.IsExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}
