// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finflow/recurring-engine/internal/domain/entity"
)

// RecurringTemplateRepository defines the interface for recurring template persistence.
type RecurringTemplateRepository interface {
	// Create creates a new recurring template in the database.
	Create(ctx context.Context, template *entity.RecurringTemplate) error

	// FindByID retrieves a recurring template by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.RecurringTemplate, error)

	// FindByUser retrieves all recurring templates for a given user.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.RecurringTemplate, error)

	// SelectEligible retrieves the templates that are candidates for
	// materialization at the given time: active, not expired, not already
	// processed for the current calendar month, and with at least one
	// plausible due month. The filter is intentionally permissive; precise
	// exclusion happens during due-month enumeration.
	SelectEligible(ctx context.Context, now time.Time) ([]*entity.RecurringTemplate, error)

	// SetWatermark persists the last-processed date for a template.
	SetWatermark(ctx context.Context, id uuid.UUID, date time.Time) error

	// ClearWatermark sets the last-processed date for a template to null.
	ClearWatermark(ctx context.Context, id uuid.UUID) error

	// Update updates an existing recurring template in the database.
	Update(ctx context.Context, template *entity.RecurringTemplate) error

	// Delete soft-deletes a recurring template from the database.
	Delete(ctx context.Context, id uuid.UUID) error
}
