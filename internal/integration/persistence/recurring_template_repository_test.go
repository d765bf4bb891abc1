// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/finflow/recurring-engine/internal/domain/entity"
	domainerror "github.com/finflow/recurring-engine/internal/domain/error"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func seedTemplate(t *testing.T, db *gorm.DB, mutate func(*entity.RecurringTemplate)) *entity.RecurringTemplate {
	t.Helper()

	userID := uuid.New()
	account := seedAccount(t, db, userID)

	template := entity.NewRecurringTemplate(
		userID,
		account.ID,
		"City Power",
		"Electricity bill",
		"Utilities",
		[]string{"home", "essential"},
		decimal.NewFromFloat(120.50),
		true,
		15,
		date(2024, time.January, 15),
		nil,
	)
	if mutate != nil {
		mutate(template)
	}

	if err := NewRecurringTemplateRepository(db).Create(context.Background(), template); err != nil {
		t.Fatalf("failed to seed template: %v", err)
	}
	return template
}

func TestRecurringTemplateRepository_SelectEligible(t *testing.T) {
	now := date(2024, time.June, 20)

	cases := []struct {
		name     string
		mutate   func(*entity.RecurringTemplate)
		eligible bool
	}{
		{
			name:     "never processed",
			mutate:   nil,
			eligible: true,
		},
		{
			name: "inactive",
			mutate: func(tpl *entity.RecurringTemplate) {
				tpl.IsActive = false
			},
			eligible: false,
		},
		{
			name: "end date in the past",
			mutate: func(tpl *entity.RecurringTemplate) {
				end := date(2024, time.May, 31)
				tpl.EndDate = &end
			},
			eligible: false,
		},
		{
			name: "end date today",
			mutate: func(tpl *entity.RecurringTemplate) {
				end := date(2024, time.June, 20)
				tpl.EndDate = &end
			},
			eligible: true,
		},
		{
			name: "already processed this month",
			mutate: func(tpl *entity.RecurringTemplate) {
				processed := date(2024, time.June, 15)
				tpl.LastProcessed = &processed
			},
			eligible: false,
		},
		{
			name: "processed in an earlier month",
			mutate: func(tpl *entity.RecurringTemplate) {
				processed := date(2024, time.March, 15)
				tpl.LastProcessed = &processed
			},
			eligible: true,
		},
		{
			name: "earlier month even when target day has not arrived",
			mutate: func(tpl *entity.RecurringTemplate) {
				processed := date(2024, time.May, 25)
				tpl.DayOfMonth = 25
				tpl.LastProcessed = &processed
			},
			eligible: true,
		},
		{
			name: "future watermark stays selectable for self-healing",
			mutate: func(tpl *entity.RecurringTemplate) {
				processed := date(2025, time.January, 15)
				tpl.LastProcessed = &processed
			},
			eligible: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			db := newTestDB(t)
			template := seedTemplate(t, db, c.mutate)

			selected, err := NewRecurringTemplateRepository(db).SelectEligible(context.Background(), now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			found := false
			for _, s := range selected {
				if s.ID == template.ID {
					found = true
				}
			}
			if found != c.eligible {
				t.Errorf("expected eligible=%v, got %v", c.eligible, found)
			}
		})
	}
}

func TestRecurringTemplateRepository_Watermark(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecurringTemplateRepository(db)
	template := seedTemplate(t, db, nil)

	watermark := date(2024, time.May, 15)
	if err := repo.SetWatermark(context.Background(), template.ID, watermark); err != nil {
		t.Fatalf("failed to set watermark: %v", err)
	}

	loaded, err := repo.FindByID(context.Background(), template.ID)
	if err != nil {
		t.Fatalf("failed to reload template: %v", err)
	}
	if loaded.LastProcessed == nil || !loaded.LastProcessed.Equal(watermark) {
		t.Errorf("expected watermark %s, got %v", watermark, loaded.LastProcessed)
	}

	if err := repo.ClearWatermark(context.Background(), template.ID); err != nil {
		t.Fatalf("failed to clear watermark: %v", err)
	}

	loaded, err = repo.FindByID(context.Background(), template.ID)
	if err != nil {
		t.Fatalf("failed to reload template: %v", err)
	}
	if loaded.LastProcessed != nil {
		t.Errorf("expected cleared watermark, got %v", loaded.LastProcessed)
	}

	if err := repo.SetWatermark(context.Background(), uuid.New(), watermark); !errors.Is(err, domainerror.ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound for unknown template, got %v", err)
	}
}

func TestRecurringTemplateRepository_CRUD(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecurringTemplateRepository(db)
	template := seedTemplate(t, db, nil)

	loaded, err := repo.FindByID(context.Background(), template.ID)
	if err != nil {
		t.Fatalf("failed to load template: %v", err)
	}
	if loaded.Merchant != "City Power" {
		t.Errorf("expected merchant City Power, got %s", loaded.Merchant)
	}
	if len(loaded.Tags) != 2 || loaded.Tags[0] != "home" || loaded.Tags[1] != "essential" {
		t.Errorf("expected tags [home essential], got %v", loaded.Tags)
	}
	if !loaded.Amount.Equal(decimal.NewFromFloat(120.50)) {
		t.Errorf("expected amount 120.50, got %s", loaded.Amount)
	}

	loaded.Merchant = "Metro Power"
	loaded.IsActive = false
	if err := repo.Update(context.Background(), loaded); err != nil {
		t.Fatalf("failed to update template: %v", err)
	}

	reloaded, err := repo.FindByID(context.Background(), template.ID)
	if err != nil {
		t.Fatalf("failed to reload template: %v", err)
	}
	if reloaded.Merchant != "Metro Power" || reloaded.IsActive {
		t.Errorf("update not persisted: merchant=%s active=%v", reloaded.Merchant, reloaded.IsActive)
	}

	byUser, err := repo.FindByUser(context.Background(), template.UserID)
	if err != nil {
		t.Fatalf("failed to list templates: %v", err)
	}
	if len(byUser) != 1 {
		t.Errorf("expected 1 template for user, got %d", len(byUser))
	}

	if err := repo.Delete(context.Background(), template.ID); err != nil {
		t.Fatalf("failed to delete template: %v", err)
	}
	if _, err := repo.FindByID(context.Background(), template.ID); !errors.Is(err, domainerror.ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound after delete, got %v", err)
	}
}
