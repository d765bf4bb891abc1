// Package template contains recurring-template management use cases.
package template

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finflow/recurring-engine/internal/application/adapter"
)

// ListTemplatesInput represents the input for listing templates.
type ListTemplatesInput struct {
	UserID uuid.UUID
}

// ListTemplatesOutput represents the output of listing templates.
type ListTemplatesOutput struct {
	Templates []*TemplateOutput
}

// ListTemplatesUseCase handles listing a user's recurring templates.
type ListTemplatesUseCase struct {
	templateRepo adapter.RecurringTemplateRepository
}

// NewListTemplatesUseCase creates a new ListTemplatesUseCase instance.
func NewListTemplatesUseCase(templateRepo adapter.RecurringTemplateRepository) *ListTemplatesUseCase {
	return &ListTemplatesUseCase{templateRepo: templateRepo}
}

// Execute retrieves all recurring templates for the user.
func (uc *ListTemplatesUseCase) Execute(ctx context.Context, input ListTemplatesInput) (*ListTemplatesOutput, error) {
	templates, err := uc.templateRepo.FindByUser(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring templates: %w", err)
	}

	output := &ListTemplatesOutput{
		Templates: make([]*TemplateOutput, len(templates)),
	}
	for i, t := range templates {
		output.Templates[i] = toTemplateOutput(t)
	}
	return output, nil
}
