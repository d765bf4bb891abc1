// Package template contains recurring-template management use cases.
package template

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finflow/recurring-engine/internal/application/adapter"
	domainerror "github.com/finflow/recurring-engine/internal/domain/error"
)

// UpdateTemplateInput represents the input for template update. Nil pointer
// fields are left unchanged.
type UpdateTemplateInput struct {
	TemplateID  uuid.UUID
	UserID      uuid.UUID
	Merchant    *string
	Description *string
	Category    *string
	Tags        []string
	Amount      *decimal.Decimal
	IsExpense   *bool
	DayOfMonth  *int
	EndDate     *time.Time
	IsActive    *bool
}

// UpdateTemplateOutput represents the output of template update.
type UpdateTemplateOutput struct {
	Template *TemplateOutput
}

// UpdateTemplateUseCase handles recurring template updates.
type UpdateTemplateUseCase struct {
	templateRepo adapter.RecurringTemplateRepository
}

// NewUpdateTemplateUseCase creates a new UpdateTemplateUseCase instance.
func NewUpdateTemplateUseCase(templateRepo adapter.RecurringTemplateRepository) *UpdateTemplateUseCase {
	return &UpdateTemplateUseCase{templateRepo: templateRepo}
}

// Execute performs the template update.
func (uc *UpdateTemplateUseCase) Execute(ctx context.Context, input UpdateTemplateInput) (*UpdateTemplateOutput, error) {
	template, err := uc.templateRepo.FindByID(ctx, input.TemplateID)
	if err != nil {
		return nil, domainerror.NewRecurringError(
			domainerror.ErrCodeTemplateNotFound,
			"recurring template not found",
			domainerror.ErrTemplateNotFound,
		)
	}

	if template.UserID != input.UserID {
		return nil, domainerror.NewRecurringError(
			domainerror.ErrCodeNotAuthorizedTemplate,
			"recurring template does not belong to user",
			domainerror.ErrNotAuthorizedToModifyTemplate,
		)
	}

	if input.DayOfMonth != nil {
		if *input.DayOfMonth < 1 || *input.DayOfMonth > 31 {
			return nil, domainerror.NewRecurringError(
				domainerror.ErrCodeInvalidDayOfMonth,
				"day of month must be between 1 and 31",
				domainerror.ErrInvalidDayOfMonth,
			)
		}
		template.DayOfMonth = *input.DayOfMonth
	}

	if input.Amount != nil {
		if !input.Amount.IsPositive() {
			return nil, domainerror.NewRecurringError(
				domainerror.ErrCodeInvalidTemplateAmount,
				"amount must be positive",
				domainerror.ErrInvalidTemplateAmount,
			)
		}
		template.Amount = *input.Amount
	}

	if input.EndDate != nil {
		if input.EndDate.Before(template.StartDate) {
			return nil, domainerror.NewRecurringError(
				domainerror.ErrCodeEndDateBeforeStartDate,
				"end date must not precede start date",
				domainerror.ErrEndDateBeforeStartDate,
			)
		}
		template.EndDate = input.EndDate
	}

	if input.Merchant != nil {
		template.Merchant = *input.Merchant
	}
	if input.Description != nil {
		template.Description = *input.Description
	}
	if input.Category != nil {
		template.Category = *input.Category
	}
	if input.Tags != nil {
		template.Tags = input.Tags
	}
	if input.IsExpense != nil {
		template.IsExpense = *input.IsExpense
	}
	if input.IsActive != nil {
		template.IsActive = *input.IsActive
	}

	template.UpdatedAt = time.Now().UTC()

	if err := uc.templateRepo.Update(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to update recurring template: %w", err)
	}

	return &UpdateTemplateOutput{Template: toTemplateOutput(template)}, nil
}
