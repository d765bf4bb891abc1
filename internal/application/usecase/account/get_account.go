// Package account contains account-related use cases.
package account

import (
	"context"

	"github.com/google/uuid"

	"github.com/finflow/recurring-engine/internal/application/adapter"
	domainerror "github.com/finflow/recurring-engine/internal/domain/error"
)

// GetAccountInput represents the input for fetching a single account.
type GetAccountInput struct {
	AccountID uuid.UUID
	UserID    uuid.UUID
}

// GetAccountOutput represents the output of fetching a single account.
type GetAccountOutput struct {
	Account *AccountOutput
}

// GetAccountUseCase handles fetching a single account.
type GetAccountUseCase struct {
	accountRepo adapter.AccountRepository
}

// NewGetAccountUseCase creates a new GetAccountUseCase instance.
func NewGetAccountUseCase(accountRepo adapter.AccountRepository) *GetAccountUseCase {
	return &GetAccountUseCase{accountRepo: accountRepo}
}

// Execute retrieves the account, enforcing ownership.
func (uc *GetAccountUseCase) Execute(ctx context.Context, input GetAccountInput) (*GetAccountOutput, error) {
	account, err := uc.accountRepo.FindByID(ctx, input.AccountID)
	if err != nil {
		return nil, domainerror.NewAccountError(
			domainerror.ErrCodeAccountNotFound,
			"account not found",
			domainerror.ErrAccountNotFound,
		)
	}

	if account.UserID != input.UserID {
		return nil, domainerror.NewAccountError(
			domainerror.ErrCodeAccountNotOwned,
			"account does not belong to user",
			domainerror.ErrAccountNotOwnedByUser,
		)
	}

	return &GetAccountOutput{Account: toAccountOutput(account)}, nil
}
