// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finflow/recurring-engine/internal/application/adapter"
	"github.com/finflow/recurring-engine/internal/domain/entity"
	domainerror "github.com/finflow/recurring-engine/internal/domain/error"
	"github.com/finflow/recurring-engine/internal/integration/persistence/model"
)

// recurringTemplateRepository implements the adapter.RecurringTemplateRepository interface.
type recurringTemplateRepository struct {
	db *gorm.DB
}

// NewRecurringTemplateRepository creates a new recurring template repository instance.
func NewRecurringTemplateRepository(db *gorm.DB) adapter.RecurringTemplateRepository {
	return &recurringTemplateRepository{
		db: db,
	}
}

// Create creates a new recurring template in the database.
func (r *recurringTemplateRepository) Create(ctx context.Context, template *entity.RecurringTemplate) error {
	templateModel := model.RecurringTemplateFromEntity(template)
	result := r.db.WithContext(ctx).Create(templateModel)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// FindByID retrieves a recurring template by its ID.
func (r *recurringTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.RecurringTemplate, error) {
	var templateModel model.RecurringTemplateModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&templateModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrTemplateNotFound
		}
		return nil, result.Error
	}
	return templateModel.ToEntity(), nil
}

// FindByUser retrieves all recurring templates for a given user.
func (r *recurringTemplateRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.RecurringTemplate, error) {
	var templateModels []model.RecurringTemplateModel
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&templateModels)
	if result.Error != nil {
		return nil, result.Error
	}

	templates := make([]*entity.RecurringTemplate, len(templateModels))
	for i, tm := range templateModels {
		templates[i] = tm.ToEntity()
	}
	return templates, nil
}

// SelectEligible retrieves the templates that are candidates for
// materialization at the given time. The predicates are expressed as plain
// date-boundary comparisons against values computed here, so the query stays
// portable across postgres and sqlite:
//
//  1. active
//  2. no end date, or end date on or after today
//  3. not already processed for the current calendar month (a watermark
//     outside [monthStart, nextMonthStart) also matches, which keeps
//     corrupt future watermarks selectable for self-healing)
//  4. at least one due month is plausible: never processed, or the target
//     day has arrived, or the watermark is from an earlier month
func (r *recurringTemplateRepository) SelectEligible(ctx context.Context, now time.Time) ([]*entity.RecurringTemplate, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonthStart := monthStart.AddDate(0, 1, 0)

	var templateModels []model.RecurringTemplateModel
	result := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("end_date IS NULL OR end_date >= ?", today).
		Where("last_processed IS NULL OR last_processed < ? OR last_processed >= ?", monthStart, nextMonthStart).
		Where("last_processed IS NULL OR day_of_month <= ? OR last_processed < ?", now.Day(), monthStart).
		Order("created_at ASC").
		Find(&templateModels)
	if result.Error != nil {
		return nil, result.Error
	}

	templates := make([]*entity.RecurringTemplate, len(templateModels))
	for i, tm := range templateModels {
		templates[i] = tm.ToEntity()
	}
	return templates, nil
}

// SetWatermark persists the last-processed date for a template.
func (r *recurringTemplateRepository) SetWatermark(ctx context.Context, id uuid.UUID, date time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.RecurringTemplateModel{}).
		Where("id = ?", id).
		Update("last_processed", date)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrTemplateNotFound
	}
	return nil
}

// ClearWatermark sets the last-processed date for a template to null.
func (r *recurringTemplateRepository) ClearWatermark(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&model.RecurringTemplateModel{}).
		Where("id = ?", id).
		Update("last_processed", nil)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrTemplateNotFound
	}
	return nil
}

// Update updates an existing recurring template in the database.
func (r *recurringTemplateRepository) Update(ctx context.Context, template *entity.RecurringTemplate) error {
	templateModel := model.RecurringTemplateFromEntity(template)
	result := r.db.WithContext(ctx).Save(templateModel)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// Delete soft-deletes a recurring template from the database.
func (r *recurringTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.RecurringTemplateModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrTemplateNotFound
	}
	return nil
}
