// Package transaction contains transaction-related use cases.
package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finflow/recurring-engine/internal/application/adapter"
	"github.com/finflow/recurring-engine/internal/domain/entity"
)

// TransactionOutput represents a materialized transaction returned by the use cases.
type TransactionOutput struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	AccountID           uuid.UUID
	Date                time.Time
	Amount              decimal.Decimal
	Merchant            string
	Description         string
	Category            string
	RecurringTemplateID uuid.UUID
	RecurrenceMonth     time.Month
	RecurrenceYear      int
	CreatedAt           time.Time
}

func toTransactionOutput(t *entity.Transaction) *TransactionOutput {
	return &TransactionOutput{
		ID:                  t.ID,
		UserID:              t.UserID,
		AccountID:           t.AccountID,
		Date:                t.Date,
		Amount:              t.Amount,
		Merchant:            t.Merchant,
		Description:         t.Description,
		Category:            t.Category,
		RecurringTemplateID: t.RecurringTemplateID,
		RecurrenceMonth:     t.RecurrenceMonth,
		RecurrenceYear:      t.RecurrenceYear,
		CreatedAt:           t.CreatedAt,
	}
}

// ListTransactionsInput represents the input for listing transactions.
type ListTransactionsInput struct {
	UserID uuid.UUID
}

// ListTransactionsOutput represents the output of listing transactions.
type ListTransactionsOutput struct {
	Transactions []*TransactionOutput
}

// ListTransactionsUseCase handles listing a user's materialized transactions.
type ListTransactionsUseCase struct {
	transactionRepo adapter.TransactionRepository
}

// NewListTransactionsUseCase creates a new ListTransactionsUseCase instance.
func NewListTransactionsUseCase(transactionRepo adapter.TransactionRepository) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{transactionRepo: transactionRepo}
}

// Execute retrieves all materialized transactions for the user.
func (uc *ListTransactionsUseCase) Execute(ctx context.Context, input ListTransactionsInput) (*ListTransactionsOutput, error) {
	transactions, err := uc.transactionRepo.FindByUser(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	output := &ListTransactionsOutput{
		Transactions: make([]*TransactionOutput, len(transactions)),
	}
	for i, t := range transactions {
		output.Transactions[i] = toTransactionOutput(t)
	}
	return output, nil
}
