package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/microfin-loan-engine/internal/domain/loan"
	"github.com/microfin-loan-engine/internal/engine/service"
)

// PaymentHandler handles HTTP requests for payment collection
type PaymentHandler struct {
	collectionService service.CollectionService
	logger            *slog.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(logger *slog.Logger, collectionService service.CollectionService) *PaymentHandler {
	return &PaymentHandler{
		collectionService: collectionService,
		logger:            logger,
	}
}

// Collect settles one pending installment and returns the issued receipt.
// Concurrent collections of the same installment resolve to exactly one
// receipt; the loser gets a 409.
func (h *PaymentHandler) Collect(c *gin.Context) {
	loanID := c.Param("id")

	var req CollectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	r, err := h.collectionService.Collect(c.Request.Context(), service.CollectParams{
		CompanyID:         req.CompanyID,
		LoanID:            loanID,
		InstallmentNumber: req.InstallmentNumber,
		AmountPaid:        req.AmountPaid,
		PaymentMethod:     req.PaymentMethod,
		Remark:            req.Remark,
		Now:               time.Now(),
	})
	if err != nil {
		switch {
		case errors.Is(err, loan.ErrLoanNotFound{}):
			RespondNotFound(c, "Loan not found")
		case errors.Is(err, loan.ErrInstallmentNotFound{}):
			RespondNotFound(c, "Installment not found")
		case errors.Is(err, loan.ErrAlreadyPaid{}):
			RespondConflict(c, "Installment is already paid")
		case errors.Is(err, loan.ErrInsufficientAmount{}):
			RespondInsufficientAmount(c, err.Error())
		default:
			h.logger.Error("Failed to collect payment", "loan_id", loanID, "installment", req.InstallmentNumber, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, mapReceiptToResponse(r))
}
