// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finflow/recurring-engine/internal/domain/entity"
)

// TransactionRepository defines the interface for transaction persistence operations.
type TransactionRepository interface {
	// Create creates a new transaction in the database. If a transaction
	// already exists for the same (template, year, month), the unique
	// constraint fires and the error maps to ErrTransactionAlreadyMaterialized.
	Create(ctx context.Context, transaction *entity.Transaction) error

	// FindMaterialized retrieves the transaction materialized from the given
	// template for the given calendar month, or ErrTransactionNotFound.
	FindMaterialized(
		ctx context.Context,
		templateID uuid.UUID,
		accountID uuid.UUID,
		userID uuid.UUID,
		month time.Month,
		year int,
	) (*entity.Transaction, error)

	// FindByUser retrieves all transactions for a given user, newest first.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Transaction, error)
}
