// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finflow/recurring-engine/internal/application/usecase/template"
	domainerror "github.com/finflow/recurring-engine/internal/domain/error"
	"github.com/finflow/recurring-engine/internal/integration/entrypoint/dto"
	"github.com/finflow/recurring-engine/internal/integration/entrypoint/middleware"
)

// TemplateController handles recurring template endpoints.
type TemplateController struct {
	createUseCase *template.CreateTemplateUseCase
	listUseCase   *template.ListTemplatesUseCase
	updateUseCase *template.UpdateTemplateUseCase
	deleteUseCase *template.DeleteTemplateUseCase
}

// NewTemplateController creates a new template controller instance.
func NewTemplateController(
	createUseCase *template.CreateTemplateUseCase,
	listUseCase *template.ListTemplatesUseCase,
	updateUseCase *template.UpdateTemplateUseCase,
	deleteUseCase *template.DeleteTemplateUseCase,
) *TemplateController {
	return &TemplateController{
		createUseCase: createUseCase,
		listUseCase:   listUseCase,
		updateUseCase: updateUseCase,
		deleteUseCase: deleteUseCase,
	}
}

// Create handles POST /recurring-templates requests.
func (t *TemplateController) Create(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	var req dto.CreateTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid account ID format",
		})
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid start date, expected YYYY-MM-DD",
		})
		return
	}

	var endDate *time.Time
	if req.EndDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid end date, expected YYYY-MM-DD",
			})
			return
		}
		endDate = &parsed
	}

	input := template.CreateTemplateInput{
		UserID:      userID,
		AccountID:   accountID,
		Merchant:    req.Merchant,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
		Amount:      decimal.NewFromFloat(req.Amount),
		IsExpense:   req.IsExpense,
		DayOfMonth:  req.DayOfMonth,
		StartDate:   startDate,
		EndDate:     endDate,
	}

	output, err := t.createUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		t.handleTemplateError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToTemplateResponse(output.Template))
}

// List handles GET /recurring-templates requests.
func (t *TemplateController) List(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	output, err := t.listUseCase.Execute(ctx.Request.Context(), template.ListTemplatesInput{UserID: userID})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Failed to retrieve recurring templates",
		})
		return
	}

	response := dto.TemplateListResponse{
		Templates: make([]dto.TemplateResponse, len(output.Templates)),
	}
	for i, tmpl := range output.Templates {
		response.Templates[i] = dto.ToTemplateResponse(tmpl)
	}

	ctx.JSON(http.StatusOK, response)
}

// Update handles PATCH /recurring-templates/:id requests.
func (t *TemplateController) Update(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	templateID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid template ID format",
		})
		return
	}

	var req dto.UpdateTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	input := template.UpdateTemplateInput{
		TemplateID:  templateID,
		UserID:      userID,
		Merchant:    req.Merchant,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
		IsExpense:   req.IsExpense,
		DayOfMonth:  req.DayOfMonth,
		IsActive:    req.IsActive,
	}

	if req.Amount != nil {
		amount := decimal.NewFromFloat(*req.Amount)
		input.Amount = &amount
	}
	if req.EndDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid end date, expected YYYY-MM-DD",
			})
			return
		}
		input.EndDate = &parsed
	}

	output, err := t.updateUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		t.handleTemplateError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTemplateResponse(output.Template))
}

// Delete handles DELETE /recurring-templates/:id requests.
func (t *TemplateController) Delete(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	templateID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid template ID format",
		})
		return
	}

	input := template.DeleteTemplateInput{
		TemplateID: templateID,
		UserID:     userID,
	}

	if err := t.deleteUseCase.Execute(ctx.Request.Context(), input); err != nil {
		t.handleTemplateError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// handleTemplateError maps template use case errors to HTTP responses.
func (t *TemplateController) handleTemplateError(ctx *gin.Context, err error) {
	var recErr *domainerror.RecurringError
	if errors.As(err, &recErr) {
		status := http.StatusBadRequest
		switch recErr.Code {
		case domainerror.ErrCodeTemplateNotFound:
			status = http.StatusNotFound
		case domainerror.ErrCodeNotAuthorizedTemplate:
			status = http.StatusForbidden
		}
		ctx.JSON(status, dto.ErrorResponse{
			Error: recErr.Message,
			Code:  string(recErr.Code),
		})
		return
	}

	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An unexpected error occurred",
	})
}

// respondUnauthenticated writes the shared missing-authentication response.
func respondUnauthenticated(ctx *gin.Context) {
	ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: "User not authenticated",
		Code:  string(domainerror.ErrCodeMissingToken),
	})
}
