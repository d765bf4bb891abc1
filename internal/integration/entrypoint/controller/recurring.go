// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finflow/recurring-engine/internal/application/usecase/recurring"
	domainerror "github.com/finflow/recurring-engine/internal/domain/error"
	"github.com/finflow/recurring-engine/internal/integration/entrypoint/dto"
	"github.com/finflow/recurring-engine/internal/integration/entrypoint/middleware"
)

// RecurringController handles materialization run endpoints.
type RecurringController struct {
	processUseCase *recurring.ProcessRecurringUseCase
}

// NewRecurringController creates a new recurring controller instance.
func NewRecurringController(processUseCase *recurring.ProcessRecurringUseCase) *RecurringController {
	return &RecurringController{
		processUseCase: processUseCase,
	}
}

// Process handles POST /recurring/process requests.
// It triggers a materialization run over all eligible templates and returns
// the number of transactions created.
func (r *RecurringController) Process(ctx *gin.Context) {
	if _, ok := middleware.GetUserIDFromContext(ctx); !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "User not authenticated",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
		return
	}

	now := time.Now().UTC()

	output, err := r.processUseCase.Execute(ctx.Request.Context(), recurring.ProcessRecurringInput{Now: now})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Failed to process recurring transactions",
			Code:  string(domainerror.ErrCodeEligibilityQueryFailed),
		})
		return
	}

	ctx.JSON(http.StatusOK, dto.ProcessRecurringResponse{
		TransactionsCreated: output.Processed,
		RanAt:               now,
	})
}
