// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/finflow/recurring-engine/internal/application/usecase/template"
)

// CreateTemplateRequest represents the request body for template creation.
type CreateTemplateRequest struct {
	AccountID   string   `json:"account_id" binding:"required,uuid"`
	Merchant    string   `json:"merchant" binding:"required,min=1,max=255"`
	Description string   `json:"description,omitempty" binding:"omitempty,max=1000"`
	Category    string   `json:"category,omitempty" binding:"omitempty,max=100"`
	Tags        []string `json:"tags,omitempty"`
	Amount      float64  `json:"amount" binding:"required,gt=0"`
	IsExpense   bool     `json:"is_expense"`
	DayOfMonth  int      `json:"day_of_month" binding:"required,min=1,max=31"`
	StartDate   string   `json:"start_date" binding:"required"`
	EndDate     *string  `json:"end_date,omitempty"`
}

// UpdateTemplateRequest represents the request body for template update.
// Absent fields are left unchanged.
type UpdateTemplateRequest struct {
	Merchant    *string  `json:"merchant,omitempty" binding:"omitempty,min=1,max=255"`
	Description *string  `json:"description,omitempty" binding:"omitempty,max=1000"`
	Category    *string  `json:"category,omitempty" binding:"omitempty,max=100"`
	Tags        []string `json:"tags,omitempty"`
	Amount      *float64 `json:"amount,omitempty" binding:"omitempty,gt=0"`
	IsExpense   *bool    `json:"is_expense,omitempty"`
	DayOfMonth  *int     `json:"day_of_month,omitempty" binding:"omitempty,min=1,max=31"`
	EndDate     *string  `json:"end_date,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

// TemplateResponse represents a recurring template in API responses.
type TemplateResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	AccountID     string     `json:"account_id"`
	Merchant      string     `json:"merchant"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Tags          []string   `json:"tags"`
	Amount        string     `json:"amount"`
	IsExpense     bool       `json:"is_expense"`
	DayOfMonth    int        `json:"day_of_month"`
	StartDate     string     `json:"start_date"`
	EndDate       *string    `json:"end_date,omitempty"`
	IsActive      bool       `json:"is_active"`
	LastProcessed *string    `json:"last_processed,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TemplateListResponse represents the response for listing templates.
type TemplateListResponse struct {
	Templates []TemplateResponse `json:"templates"`
}

// ToTemplateResponse converts a TemplateOutput to a TemplateResponse DTO.
func ToTemplateResponse(t *template.TemplateOutput) TemplateResponse {
	response := TemplateResponse{
		ID:          t.ID.String(),
		UserID:      t.UserID.String(),
		AccountID:   t.AccountID.String(),
		Merchant:    t.Merchant,
		Description: t.Description,
		Category:    t.Category,
		Tags:        t.Tags,
		Amount:      t.Amount.String(),
		IsExpense:   t.IsExpense,
		DayOfMonth:  t.DayOfMonth,
		StartDate:   t.StartDate.Format("2006-01-02"),
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}

	if t.EndDate != nil {
		endDate := t.EndDate.Format("2006-01-02")
		response.EndDate = &endDate
	}
	if t.LastProcessed != nil {
		lastProcessed := t.LastProcessed.Format("2006-01-02")
		response.LastProcessed = &lastProcessed
	}

	return response
}
