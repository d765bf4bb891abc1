// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainerror "github.com/finflow/recurring-engine/internal/domain/error"
)

func TestAccountRepository_IncrementBalance(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)

	userID := uuid.New()
	account := seedAccount(t, db, userID) // starts at 1000

	if err := repo.IncrementBalance(context.Background(), account.ID, userID, decimal.NewFromFloat(-49.90)); err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if err := repo.IncrementBalance(context.Background(), account.ID, userID, decimal.NewFromFloat(-49.90)); err != nil {
		t.Fatalf("increment failed: %v", err)
	}

	loaded, err := repo.FindByID(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("failed to reload account: %v", err)
	}
	want := decimal.NewFromFloat(900.20)
	if !loaded.Balance.Equal(want) {
		t.Errorf("expected balance %s, got %s", want, loaded.Balance)
	}
}

func TestAccountRepository_IncrementBalanceOwnership(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)

	account := seedAccount(t, db, uuid.New())

	err := repo.IncrementBalance(context.Background(), account.ID, uuid.New(), decimal.NewFromInt(10))
	if !errors.Is(err, domainerror.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound for foreign user, got %v", err)
	}

	loaded, err := repo.FindByID(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("failed to reload account: %v", err)
	}
	if !loaded.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("balance must be unchanged, got %s", loaded.Balance)
	}
}

func TestAccountRepository_FindByUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)

	userID := uuid.New()
	seedAccount(t, db, userID)
	seedAccount(t, db, uuid.New())

	accounts, err := repo.FindByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("expected 1 account for user, got %d", len(accounts))
	}
}
