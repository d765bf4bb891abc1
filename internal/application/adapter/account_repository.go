// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finflow/recurring-engine/internal/domain/entity"
)

// AccountRepository defines the interface for account persistence operations.
type AccountRepository interface {
	// Create creates a new account in the database.
	Create(ctx context.Context, account *entity.Account) error

	// FindByID retrieves an account by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// FindByUser retrieves all accounts for a given user.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Account, error)

	// IncrementBalance applies a signed delta to the account balance as an
	// atomic in-database increment, never a read-modify-write.
	IncrementBalance(ctx context.Context, accountID uuid.UUID, userID uuid.UUID, delta decimal.Decimal) error
}
