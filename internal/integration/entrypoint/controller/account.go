// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finflow/recurring-engine/internal/application/usecase/account"
	domainerror "github.com/finflow/recurring-engine/internal/domain/error"
	"github.com/finflow/recurring-engine/internal/integration/entrypoint/dto"
	"github.com/finflow/recurring-engine/internal/integration/entrypoint/middleware"
)

// AccountController handles account endpoints.
type AccountController struct {
	createUseCase *account.CreateAccountUseCase
	listUseCase   *account.ListAccountsUseCase
	getUseCase    *account.GetAccountUseCase
}

// NewAccountController creates a new account controller instance.
func NewAccountController(
	createUseCase *account.CreateAccountUseCase,
	listUseCase *account.ListAccountsUseCase,
	getUseCase *account.GetAccountUseCase,
) *AccountController {
	return &AccountController{
		createUseCase: createUseCase,
		listUseCase:   listUseCase,
		getUseCase:    getUseCase,
	}
}

// Create handles POST /accounts requests.
func (a *AccountController) Create(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	var req dto.CreateAccountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	input := account.CreateAccountInput{
		UserID:         userID,
		Name:           req.Name,
		InitialBalance: decimal.NewFromFloat(req.InitialBalance),
	}

	output, err := a.createUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		a.handleAccountError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToAccountResponse(output.Account))
}

// List handles GET /accounts requests.
func (a *AccountController) List(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	output, err := a.listUseCase.Execute(ctx.Request.Context(), account.ListAccountsInput{UserID: userID})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Failed to retrieve accounts",
		})
		return
	}

	response := dto.AccountListResponse{
		Accounts: make([]dto.AccountResponse, len(output.Accounts)),
	}
	for i, acc := range output.Accounts {
		response.Accounts[i] = dto.ToAccountResponse(acc)
	}

	ctx.JSON(http.StatusOK, response)
}

// Get handles GET /accounts/:id requests.
func (a *AccountController) Get(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	accountID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid account ID format",
		})
		return
	}

	input := account.GetAccountInput{
		AccountID: accountID,
		UserID:    userID,
	}

	output, err := a.getUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		a.handleAccountError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToAccountResponse(output.Account))
}

// handleAccountError maps account use case errors to HTTP responses.
func (a *AccountController) handleAccountError(ctx *gin.Context, err error) {
	var accErr *domainerror.AccountError
	if errors.As(err, &accErr) {
		status := http.StatusBadRequest
		switch accErr.Code {
		case domainerror.ErrCodeAccountNotFound:
			status = http.StatusNotFound
		case domainerror.ErrCodeAccountNotOwned:
			status = http.StatusForbidden
		}
		ctx.JSON(status, dto.ErrorResponse{
			Error: accErr.Message,
			Code:  string(accErr.Code),
		})
		return
	}

	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An unexpected error occurred",
	})
}
