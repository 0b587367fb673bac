package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/microfin-loan-engine/internal/domain/expense"
	"github.com/microfin-loan-engine/internal/engine/service"
)

// ExpenseHandler handles HTTP requests for expense recording
type ExpenseHandler struct {
	expenseService service.ExpenseService
	logger         *slog.Logger
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(logger *slog.Logger, expenseService service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		logger:         logger,
	}
}

// Create records a business expense
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	e, err := h.expenseService.Create(c.Request.Context(), req.CompanyID, req.Narration, req.Amount, req.Date)
	if err != nil {
		if errors.Is(err, expense.ErrInvalidAmount) || errors.Is(err, expense.ErrEmptyNarration) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to record expense", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, e)
}
