// Package template contains recurring-template management use cases.
package template

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finflow/recurring-engine/internal/application/adapter"
	"github.com/finflow/recurring-engine/internal/domain/entity"
	domainerror "github.com/finflow/recurring-engine/internal/domain/error"
)

// TemplateOutput represents a recurring template returned by the use cases.
type TemplateOutput struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	AccountID     uuid.UUID
	Merchant      string
	Description   string
	Category      string
	Tags          []string
	Amount        decimal.Decimal
	IsExpense     bool
	DayOfMonth    int
	StartDate     time.Time
	EndDate       *time.Time
	IsActive      bool
	LastProcessed *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func toTemplateOutput(t *entity.RecurringTemplate) *TemplateOutput {
	return &TemplateOutput{
		ID:            t.ID,
		UserID:        t.UserID,
		AccountID:     t.AccountID,
		Merchant:      t.Merchant,
		Description:   t.Description,
		Category:      t.Category,
		Tags:          t.Tags,
		Amount:        t.Amount,
		IsExpense:     t.IsExpense,
		DayOfMonth:    t.DayOfMonth,
		StartDate:     t.StartDate,
		EndDate:       t.EndDate,
		IsActive:      t.IsActive,
		LastProcessed: t.LastProcessed,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// CreateTemplateInput represents the input for template creation.
type CreateTemplateInput struct {
	UserID      uuid.UUID
	AccountID   uuid.UUID
	Merchant    string
	Description string
	Category    string
	Tags        []string
	Amount      decimal.Decimal
	IsExpense   bool
	DayOfMonth  int
	StartDate   time.Time
	EndDate     *time.Time
}

// CreateTemplateOutput represents the output of template creation.
type CreateTemplateOutput struct {
	Template *TemplateOutput
}

// CreateTemplateUseCase handles recurring template creation logic.
type CreateTemplateUseCase struct {
	templateRepo adapter.RecurringTemplateRepository
	accountRepo  adapter.AccountRepository
	suggester    adapter.CategorySuggester
}

// NewCreateTemplateUseCase creates a new CreateTemplateUseCase instance.
// The suggester may be nil when category suggestion is not configured.
func NewCreateTemplateUseCase(
	templateRepo adapter.RecurringTemplateRepository,
	accountRepo adapter.AccountRepository,
	suggester adapter.CategorySuggester,
) *CreateTemplateUseCase {
	return &CreateTemplateUseCase{
		templateRepo: templateRepo,
		accountRepo:  accountRepo,
		suggester:    suggester,
	}
}

// Execute performs the template creation.
func (uc *CreateTemplateUseCase) Execute(ctx context.Context, input CreateTemplateInput) (*CreateTemplateOutput, error) {
	if input.DayOfMonth < 1 || input.DayOfMonth > 31 {
		return nil, domainerror.NewRecurringError(
			domainerror.ErrCodeInvalidDayOfMonth,
			"day of month must be between 1 and 31",
			domainerror.ErrInvalidDayOfMonth,
		)
	}

	if !input.Amount.IsPositive() {
		return nil, domainerror.NewRecurringError(
			domainerror.ErrCodeInvalidTemplateAmount,
			"amount must be positive",
			domainerror.ErrInvalidTemplateAmount,
		)
	}

	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return nil, domainerror.NewRecurringError(
			domainerror.ErrCodeEndDateBeforeStartDate,
			"end date must not precede start date",
			domainerror.ErrEndDateBeforeStartDate,
		)
	}

	// Verify account ownership
	account, err := uc.accountRepo.FindByID(ctx, input.AccountID)
	if err != nil {
		return nil, domainerror.NewRecurringError(
			domainerror.ErrCodeTemplateAccountInvalid,
			"account not found",
			domainerror.ErrAccountNotFound,
		)
	}
	if account.UserID != input.UserID {
		return nil, domainerror.NewRecurringError(
			domainerror.ErrCodeTemplateAccountInvalid,
			"account does not belong to user",
			domainerror.ErrAccountNotOwnedByUser,
		)
	}

	// Best-effort category suggestion when none was provided
	if input.Category == "" && uc.suggester != nil && uc.suggester.IsAvailable() {
		suggestion, err := uc.suggester.Suggest(ctx, input.Merchant, input.Description)
		if err != nil {
			slog.Debug("Category suggestion failed",
				"merchant", input.Merchant,
				"error", err,
			)
		} else if suggestion != "" {
			input.Category = suggestion
			slog.Debug("Category suggested for template",
				"merchant", input.Merchant,
				"category", suggestion,
			)
		}
	}

	template := entity.NewRecurringTemplate(
		input.UserID,
		input.AccountID,
		input.Merchant,
		input.Description,
		input.Category,
		input.Tags,
		input.Amount,
		input.IsExpense,
		input.DayOfMonth,
		input.StartDate,
		input.EndDate,
	)

	if err := uc.templateRepo.Create(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to create recurring template: %w", err)
	}

	return &CreateTemplateOutput{Template: toTemplateOutput(template)}, nil
}
