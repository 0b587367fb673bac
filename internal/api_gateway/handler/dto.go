package handler

import (
	"time"

	"github.com/microfin-loan-engine/internal/domain/loan"
	"github.com/microfin-loan-engine/internal/domain/receipt"
)

// CreateLoanRequest represents a request to disburse a new loan
type CreateLoanRequest struct {
	CompanyID        string    `json:"company_id" binding:"required"`
	CustomerID       string    `json:"customer_id" binding:"required"`
	CustomerName     string    `json:"customer_name" binding:"required"`
	Principal        int64     `json:"principal" binding:"required,gt=0"`
	AnnualRatePct    float64   `json:"annual_rate_pct" binding:"min=0"`
	TenureMonths     int       `json:"tenure_months" binding:"required,min=1"`
	ProcessingFeePct float64   `json:"processing_fee_pct" binding:"min=0"`
	DisbursedAt      time.Time `json:"disbursed_at" binding:"required"`
}

// CollectPaymentRequest represents a request to settle one installment
type CollectPaymentRequest struct {
	CompanyID         string `json:"company_id" binding:"required"`
	InstallmentNumber int    `json:"installment_number" binding:"required,min=1"`
	AmountPaid        int64  `json:"amount_paid" binding:"required,gt=0"`
	PaymentMethod     string `json:"payment_method" binding:"required"`
	Remark            string `json:"remark,omitempty"`
}

// TopUpRequest represents a request to add principal to a running loan
type TopUpRequest struct {
	CompanyID string    `json:"company_id" binding:"required"`
	Amount    int64     `json:"amount" binding:"required,gt=0"`
	FeePct    float64   `json:"fee_pct" binding:"min=0"`
	Date      time.Time `json:"date" binding:"required"`
}

// ForeclosureRequest represents a request to settle a loan early in full
type ForeclosureRequest struct {
	CompanyID        string    `json:"company_id" binding:"required"`
	SettlementAmount int64     `json:"settlement_amount" binding:"required,gt=0"`
	SettledAt        time.Time `json:"settled_at" binding:"required"`
	Received         bool      `json:"received"`
}

// CreatePartnerRequest represents a request to register a capital partner
type CreatePartnerRequest struct {
	CompanyID  string `json:"company_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	ShareRatio int    `json:"share_ratio" binding:"required,gt=0"`
}

// PartnerTransactionRequest represents a partner capital movement
type PartnerTransactionRequest struct {
	CompanyID string    `json:"company_id" binding:"required"`
	Type      string    `json:"type" binding:"required,oneof=INVESTMENT WITHDRAWAL"`
	Amount    int64     `json:"amount" binding:"required,gt=0"`
	Date      time.Time `json:"date" binding:"required"`
}

// CreateExpenseRequest represents a request to record a business expense
type CreateExpenseRequest struct {
	CompanyID string    `json:"company_id" binding:"required"`
	Narration string    `json:"narration" binding:"required"`
	Amount    int64     `json:"amount" binding:"required,gt=0"`
	Date      time.Time `json:"date" binding:"required"`
}

// ScheduleEntryResponse represents one installment in API responses
type ScheduleEntryResponse struct {
	Number        int    `json:"number"`
	DueDate       string `json:"due_date"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
	PaidAt        string `json:"paid_at,omitempty"`
	PaidAmount    int64  `json:"paid_amount,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Remark        string `json:"remark,omitempty"`
}

// LoanResponse represents a loan in API responses
type LoanResponse struct {
	ID               string                  `json:"id"`
	CompanyID        string                  `json:"company_id"`
	CustomerID       string                  `json:"customer_id"`
	CustomerName     string                  `json:"customer_name"`
	Principal        int64                   `json:"principal"`
	AnnualRatePct    float64                 `json:"annual_rate_pct"`
	TenureMonths     int                     `json:"tenure_months"`
	ProcessingFeePct float64                 `json:"processing_fee_pct"`
	ProcessingFee    int64                   `json:"processing_fee"`
	EMI              int64                   `json:"emi"`
	DisbursedAt      string                  `json:"disbursed_at"`
	Schedule         []ScheduleEntryResponse `json:"schedule"`
	TopUps           []loan.TopUp            `json:"top_ups,omitempty"`
	Foreclosure      *loan.Foreclosure       `json:"foreclosure,omitempty"`
	CreatedAt        string                  `json:"created_at"`
	UpdatedAt        string                  `json:"updated_at"`
}

// ReceiptResponse represents an issued receipt in API responses
type ReceiptResponse struct {
	ID                string `json:"id"`
	Number            int64  `json:"number"`
	CompanyID         string `json:"company_id"`
	LoanID            string `json:"loan_id"`
	CustomerID        string `json:"customer_id"`
	CustomerName      string `json:"customer_name"`
	InstallmentNumber int    `json:"installment_number"`
	ScheduledAmount   int64  `json:"scheduled_amount"`
	AmountPaid        int64  `json:"amount_paid"`
	IsExtraPayment    bool   `json:"is_extra_payment"`
	ExtraAmount       int64  `json:"extra_amount"`
	PaidAt            string `json:"paid_at"`
	PaymentMethod     string `json:"payment_method"`
	Remark            string `json:"remark,omitempty"`
}

func mapLoanToResponse(l *loan.Loan) LoanResponse {
	schedule := make([]ScheduleEntryResponse, 0, len(l.Schedule))
	for _, e := range l.Schedule {
		entry := ScheduleEntryResponse{
			Number:        e.Number,
			DueDate:       e.DueDate.Format(time.RFC3339),
			Amount:        e.Amount,
			Status:        string(e.Status),
			PaidAmount:    e.PaidAmount,
			PaymentMethod: e.PaymentMethod,
			Remark:        e.Remark,
		}
		if e.PaidAt != nil {
			entry.PaidAt = e.PaidAt.Format(time.RFC3339)
		}
		schedule = append(schedule, entry)
	}

	return LoanResponse{
		ID:               l.ID,
		CompanyID:        l.CompanyID,
		CustomerID:       l.CustomerID,
		CustomerName:     l.CustomerName,
		Principal:        l.Principal,
		AnnualRatePct:    l.AnnualRatePct,
		TenureMonths:     l.TenureMonths,
		ProcessingFeePct: l.ProcessingFeePct,
		ProcessingFee:    l.ProcessingFee,
		EMI:              l.EMI,
		DisbursedAt:      l.DisbursedAt.Format(time.RFC3339),
		Schedule:         schedule,
		TopUps:           l.TopUps,
		Foreclosure:      l.Foreclosure,
		CreatedAt:        l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        l.UpdatedAt.Format(time.RFC3339),
	}
}

func mapReceiptToResponse(r *receipt.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ID:                r.ID,
		Number:            r.Number,
		CompanyID:         r.CompanyID,
		LoanID:            r.LoanID,
		CustomerID:        r.CustomerID,
		CustomerName:      r.CustomerName,
		InstallmentNumber: r.InstallmentNumber,
		ScheduledAmount:   r.ScheduledAmount,
		AmountPaid:        r.AmountPaid,
		IsExtraPayment:    r.IsExtraPayment,
		ExtraAmount:       r.ExtraAmount,
		PaidAt:            r.PaidAt.Format(time.RFC3339),
		PaymentMethod:     r.PaymentMethod,
		Remark:            r.Remark,
	}
}
