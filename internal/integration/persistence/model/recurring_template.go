// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/finflow/recurring-engine/internal/domain/entity"
)

// RecurringTemplateModel represents the recurring_templates table in the database.
type RecurringTemplateModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Merchant      string          `gorm:"type:varchar(255);not null"`
	Description   string          `gorm:"type:varchar(255)"`
	Category      string          `gorm:"type:varchar(100)"`
	Tags          pq.StringArray  `gorm:"type:text[]"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	IsExpense     bool            `gorm:"not null"`
	DayOfMonth    int             `gorm:"not null"`
	StartDate     time.Time       `gorm:"type:date;not null"`
	EndDate       *time.Time      `gorm:"type:date"`
	IsActive      bool            `gorm:"default:true;index"`
	LastProcessed *time.Time      `gorm:"type:date;index"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
	DeletedAt     gorm.DeletedAt  `gorm:"index"` // Soft-delete support

	// Relationships (not loaded by default, use Preload)
	Account *AccountModel `gorm:"foreignKey:AccountID;references:ID"`
}

// TableName returns the table name for the RecurringTemplateModel.
func (RecurringTemplateModel) TableName() string {
	return "recurring_templates"
}

// ToEntity converts a RecurringTemplateModel to a domain RecurringTemplate entity.
func (m *RecurringTemplateModel) ToEntity() *entity.RecurringTemplate {
	var deletedAt *time.Time
	if m.DeletedAt.Valid {
		deletedAt = &m.DeletedAt.Time
	}

	return &entity.RecurringTemplate{
		ID:            m.ID,
		UserID:        m.UserID,
		AccountID:     m.AccountID,
		Merchant:      m.Merchant,
		Description:   m.Description,
		Category:      m.Category,
		Tags:          m.Tags,
		Amount:        m.Amount,
		IsExpense:     m.IsExpense,
		DayOfMonth:    m.DayOfMonth,
		StartDate:     m.StartDate,
		EndDate:       m.EndDate,
		IsActive:      m.IsActive,
		LastProcessed: m.LastProcessed,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		DeletedAt:     deletedAt,
	}
}

// RecurringTemplateFromEntity creates a RecurringTemplateModel from a domain entity.
func RecurringTemplateFromEntity(template *entity.RecurringTemplate) *RecurringTemplateModel {
	var deletedAt gorm.DeletedAt
	if template.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *template.DeletedAt, Valid: true}
	}

	return &RecurringTemplateModel{
		ID:            template.ID,
		UserID:        template.UserID,
		AccountID:     template.AccountID,
		Merchant:      template.Merchant,
		Description:   template.Description,
		Category:      template.Category,
		Tags:          template.Tags,
		Amount:        template.Amount,
		IsExpense:     template.IsExpense,
		DayOfMonth:    template.DayOfMonth,
		StartDate:     template.StartDate,
		EndDate:       template.EndDate,
		IsActive:      template.IsActive,
		LastProcessed: template.LastProcessed,
		CreatedAt:     template.CreatedAt,
		UpdatedAt:     template.UpdatedAt,
		DeletedAt:     deletedAt,
	}
}
