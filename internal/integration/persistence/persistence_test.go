// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/finflow/recurring-engine/internal/domain/entity"
	"github.com/finflow/recurring-engine/internal/integration/persistence/model"
)

// newTestDB opens a private in-memory sqlite database migrated with all
// models. A single connection keeps the in-memory database alive and isolated
// per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open gorm: %v", err)
	}

	if err := db.AutoMigrate(
		&model.AccountModel{},
		&model.RecurringTemplateModel{},
		&model.TransactionModel{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// seedAccount creates an account row and returns the entity.
func seedAccount(t *testing.T, db *gorm.DB, userID uuid.UUID) *entity.Account {
	t.Helper()

	account := entity.NewAccount(userID, "Checking", decimal.NewFromInt(1000))
	if err := NewAccountRepository(db).Create(context.Background(), account); err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}
	return account
}
