package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/microfin-loan-engine/internal/domain/loan"
	"github.com/microfin-loan-engine/internal/engine/service"
)

// LoanHandler handles HTTP requests for loan operations
type LoanHandler struct {
	loanService service.LoanService
	logger      *slog.Logger
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(logger *slog.Logger, loanService service.LoanService) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
		logger:      logger,
	}
}

// Create disburses a new loan, generating its full repayment schedule
func (h *LoanHandler) Create(c *gin.Context) {
	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	terms := loan.Terms{
		Principal:        req.Principal,
		AnnualRatePct:    req.AnnualRatePct,
		TenureMonths:     req.TenureMonths,
		ProcessingFeePct: req.ProcessingFeePct,
		DisbursedAt:      req.DisbursedAt,
	}

	l, err := h.loanService.Create(c.Request.Context(), req.CompanyID, req.CustomerID, req.CustomerName, terms)
	if err != nil {
		if isLoanValidationError(err) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create loan", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapLoanToResponse(l))
}

// GetByID retrieves a loan with its schedule, scoped to the calling company
func (h *LoanHandler) GetByID(c *gin.Context) {
	loanID := c.Param("id")
	companyID := c.Query("company_id")
	if companyID == "" {
		RespondBadRequest(c, "company_id query parameter is required")
		return
	}

	l, err := h.loanService.GetByID(c.Request.Context(), companyID, loanID)
	if err != nil {
		if errors.Is(err, loan.ErrLoanNotFound{}) {
			RespondNotFound(c, "Loan not found")
			return
		}
		h.logger.Error("Failed to get loan", "loan_id", loanID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapLoanToResponse(l))
}

// TopUp adds principal to a running loan
func (h *LoanHandler) TopUp(c *gin.Context) {
	loanID := c.Param("id")

	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	l, err := h.loanService.TopUp(c.Request.Context(), req.CompanyID, loanID, req.Amount, req.FeePct, req.Date)
	if err != nil {
		if errors.Is(err, loan.ErrLoanNotFound{}) {
			RespondNotFound(c, "Loan not found")
			return
		}
		if isLoanValidationError(err) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to top up loan", "loan_id", loanID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapLoanToResponse(l))
}

// Foreclose records an early full settlement of the loan
func (h *LoanHandler) Foreclose(c *gin.Context) {
	loanID := c.Param("id")

	var req ForeclosureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	l, err := h.loanService.Foreclose(c.Request.Context(), req.CompanyID, loanID, req.SettlementAmount, req.SettledAt, req.Received)
	if err != nil {
		if errors.Is(err, loan.ErrLoanNotFound{}) {
			RespondNotFound(c, "Loan not found")
			return
		}
		if isLoanValidationError(err) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to foreclose loan", "loan_id", loanID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapLoanToResponse(l))
}

// isLoanValidationError reports whether err is one of the loan term
// validation sentinels
func isLoanValidationError(err error) bool {
	return errors.Is(err, loan.ErrInvalidPrincipal) ||
		errors.Is(err, loan.ErrInvalidTenure) ||
		errors.Is(err, loan.ErrNegativeRate) ||
		errors.Is(err, loan.ErrNegativeFee) ||
		errors.Is(err, loan.ErrInvalidSettlement) ||
		errors.Is(err, loan.ErrEmptyCompanyID)
}
