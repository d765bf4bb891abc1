// Package template contains recurring-template management use cases.
package template

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finflow/recurring-engine/internal/application/adapter"
	domainerror "github.com/finflow/recurring-engine/internal/domain/error"
)

// DeleteTemplateInput represents the input for template deletion.
type DeleteTemplateInput struct {
	TemplateID uuid.UUID
	UserID     uuid.UUID
}

// DeleteTemplateUseCase handles recurring template deletion.
type DeleteTemplateUseCase struct {
	templateRepo adapter.RecurringTemplateRepository
}

// NewDeleteTemplateUseCase creates a new DeleteTemplateUseCase instance.
func NewDeleteTemplateUseCase(templateRepo adapter.RecurringTemplateRepository) *DeleteTemplateUseCase {
	return &DeleteTemplateUseCase{templateRepo: templateRepo}
}

// Execute performs the template deletion.
func (uc *DeleteTemplateUseCase) Execute(ctx context.Context, input DeleteTemplateInput) error {
	template, err := uc.templateRepo.FindByID(ctx, input.TemplateID)
	if err != nil {
		return domainerror.NewRecurringError(
			domainerror.ErrCodeTemplateNotFound,
			"recurring template not found",
			domainerror.ErrTemplateNotFound,
		)
	}

	if template.UserID != input.UserID {
		return domainerror.NewRecurringError(
			domainerror.ErrCodeNotAuthorizedTemplate,
			"recurring template does not belong to user",
			domainerror.ErrNotAuthorizedToModifyTemplate,
		)
	}

	if err := uc.templateRepo.Delete(ctx, input.TemplateID); err != nil {
		return fmt.Errorf("failed to delete recurring template: %w", err)
	}
	return nil
}
