// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finflow/recurring-engine/internal/application/usecase/transaction"
	"github.com/finflow/recurring-engine/internal/integration/entrypoint/dto"
	"github.com/finflow/recurring-engine/internal/integration/entrypoint/middleware"
)

// TransactionController handles materialized transaction endpoints.
type TransactionController struct {
	listUseCase *transaction.ListTransactionsUseCase
}

// NewTransactionController creates a new transaction controller instance.
func NewTransactionController(listUseCase *transaction.ListTransactionsUseCase) *TransactionController {
	return &TransactionController{
		listUseCase: listUseCase,
	}
}

// List handles GET /transactions requests.
func (t *TransactionController) List(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	output, err := t.listUseCase.Execute(ctx.Request.Context(), transaction.ListTransactionsInput{UserID: userID})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Failed to retrieve transactions",
		})
		return
	}

	response := dto.TransactionListResponse{
		Transactions: make([]dto.TransactionResponse, len(output.Transactions)),
	}
	for i, txn := range output.Transactions {
		response.Transactions[i] = dto.ToTransactionResponse(txn)
	}

	ctx.JSON(http.StatusOK, response)
}
