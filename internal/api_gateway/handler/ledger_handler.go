package handler

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/microfin-loan-engine/internal/domain/ledger"
	"github.com/microfin-loan-engine/internal/domain/partner"
	"github.com/microfin-loan-engine/internal/engine/service"
)

// LedgerHandler handles HTTP requests for the derived ledger and the
// monthly profit split
type LedgerHandler struct {
	ledgerService service.LedgerService
	profitService service.ProfitService
	logger        *slog.Logger
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(logger *slog.Logger, ledgerService service.LedgerService, profitService service.ProfitService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		profitService: profitService,
		logger:        logger,
	}
}

// MonthlyLedgerResponse wraps the month buckets of a company ledger
type MonthlyLedgerResponse struct {
	CompanyID string           `json:"company_id"`
	Months    []ledger.Monthly `json:"months"`
}

// ProfitSplitResponse carries the month's total profit and each partner's share
type ProfitSplitResponse struct {
	CompanyID   string          `json:"company_id"`
	Month       string          `json:"month"`
	TotalProfit int64           `json:"total_profit"`
	Splits      []partner.Split `json:"splits"`
}

// GetLedger returns the company ledger. Without from/to it returns all
// months with carried balances; with both it returns a date-range
// statement with a running balance column.
func (h *LedgerHandler) GetLedger(c *gin.Context) {
	companyID := c.Param("id")
	fromParam := c.Query("from")
	toParam := c.Query("to")

	if fromParam == "" && toParam == "" {
		months, err := h.ledgerService.BuildMonthly(c.Request.Context(), companyID)
		if err != nil {
			h.logger.Error("Failed to build monthly ledger", "company_id", companyID, "error", err)
			RespondInternalError(c)
			return
		}
		RespondOK(c, MonthlyLedgerResponse{CompanyID: companyID, Months: months})
		return
	}

	from, err := time.Parse(time.DateOnly, fromParam)
	if err != nil {
		RespondBadRequest(c, "Invalid from date, expected YYYY-MM-DD")
		return
	}
	to, err := time.Parse(time.DateOnly, toParam)
	if err != nil {
		RespondBadRequest(c, "Invalid to date, expected YYYY-MM-DD")
		return
	}
	if to.Before(from) {
		RespondBadRequest(c, "to date must not precede from date")
		return
	}

	stmt, err := h.ledgerService.BuildStatement(c.Request.Context(), companyID, from, to)
	if err != nil {
		h.logger.Error("Failed to build statement", "company_id", companyID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, stmt)
}

// GetProfitSplit returns the fixed-ratio profit distribution for one month
func (h *LedgerHandler) GetProfitSplit(c *gin.Context) {
	companyID := c.Param("id")

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 1 {
		RespondBadRequest(c, "Invalid year query parameter")
		return
	}
	monthNum, err := strconv.Atoi(c.Query("month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		RespondBadRequest(c, "Invalid month query parameter, expected 1-12")
		return
	}

	month := ledger.Month{Year: year, Month: time.Month(monthNum)}
	splits, total, err := h.profitService.ComputeSplit(c.Request.Context(), companyID, month)
	if err != nil {
		h.logger.Error("Failed to compute profit split", "company_id", companyID, "month", month.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, ProfitSplitResponse{
		CompanyID:   companyID,
		Month:       month.String(),
		TotalProfit: total,
		Splits:      splits,
	})
}
