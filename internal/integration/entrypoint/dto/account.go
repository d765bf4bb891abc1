// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/finflow/recurring-engine/internal/application/usecase/account"
)

// CreateAccountRequest represents the request body for account creation.
type CreateAccountRequest struct {
	Name           string  `json:"name" binding:"required,min=1,max=255"`
	InitialBalance float64 `json:"initial_balance"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountListResponse represents the response for listing accounts.
type AccountListResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToAccountResponse converts an AccountOutput to an AccountResponse DTO.
func ToAccountResponse(a *account.AccountOutput) AccountResponse {
	return AccountResponse{
		ID:        a.ID.String(),
		UserID:    a.UserID.String(),
		Name:      a.Name,
		Balance:   a.Balance.String(),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
