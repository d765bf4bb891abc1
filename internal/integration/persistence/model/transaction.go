// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/finflow/recurring-engine/internal/domain/entity"
)

// TransactionModel represents the transactions table in the database.
// The composite unique index over (recurring_template_id, recurrence_year,
// recurrence_month) enforces at most one materialized transaction per
// template per calendar month at the storage layer.
type TransactionModel struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Date                time.Time       `gorm:"type:date;not null;index"`
	Amount              decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Merchant            string          `gorm:"type:varchar(255);not null"`
	Description         string          `gorm:"type:varchar(255)"`
	Category            string          `gorm:"type:varchar(100)"`
	RecurringTemplateID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_transactions_recurring_month"`
	RecurrenceYear      int             `gorm:"not null;uniqueIndex:idx_transactions_recurring_month"`
	RecurrenceMonth     int             `gorm:"not null;uniqueIndex:idx_transactions_recurring_month"`
	CreatedAt           time.Time       `gorm:"not null"`
	UpdatedAt           time.Time       `gorm:"not null"`
	DeletedAt           gorm.DeletedAt  `gorm:"index"` // Soft-delete support

	// Relationships (not loaded by default, use Preload)
	RecurringTemplate *RecurringTemplateModel `gorm:"foreignKey:RecurringTemplateID;references:ID"`
	Account           *AccountModel           `gorm:"foreignKey:AccountID;references:ID"`
}

// TableName returns the table name for the TransactionModel.
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToEntity converts a TransactionModel to a domain Transaction entity.
func (m *TransactionModel) ToEntity() *entity.Transaction {
	var deletedAt *time.Time
	if m.DeletedAt.Valid {
		deletedAt = &m.DeletedAt.Time
	}

	return &entity.Transaction{
		ID:                  m.ID,
		UserID:              m.UserID,
		AccountID:           m.AccountID,
		Date:                m.Date,
		Amount:              m.Amount,
		Merchant:            m.Merchant,
		Description:         m.Description,
		Category:            m.Category,
		RecurringTemplateID: m.RecurringTemplateID,
		RecurrenceMonth:     time.Month(m.RecurrenceMonth),
		RecurrenceYear:      m.RecurrenceYear,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
		DeletedAt:           deletedAt,
	}
}

// TransactionFromEntity creates a TransactionModel from a domain Transaction entity.
func TransactionFromEntity(transaction *entity.Transaction) *TransactionModel {
	var deletedAt gorm.DeletedAt
	if transaction.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *transaction.DeletedAt, Valid: true}
	}

	return &TransactionModel{
		ID:                  transaction.ID,
		UserID:              transaction.UserID,
		AccountID:           transaction.AccountID,
		Date:                transaction.Date,
		Amount:              transaction.Amount,
		Merchant:            transaction.Merchant,
		Description:         transaction.Description,
		Category:            transaction.Category,
		RecurringTemplateID: transaction.RecurringTemplateID,
		RecurrenceYear:      transaction.RecurrenceYear,
		RecurrenceMonth:     int(transaction.RecurrenceMonth),
		CreatedAt:           transaction.CreatedAt,
		UpdatedAt:           transaction.UpdatedAt,
		DeletedAt:           deletedAt,
	}
}
