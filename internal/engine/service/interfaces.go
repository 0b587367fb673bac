// Package service implements the loan financial engine: schedule
// generation, atomic payment collection, ledger aggregation, and profit
// splitting. All operations are synchronous request/response; there is no
// background scheduler.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/microfin-loan-engine/internal/domain/expense"
	"github.com/microfin-loan-engine/internal/domain/ledger"
	"github.com/microfin-loan-engine/internal/domain/loan"
	"github.com/microfin-loan-engine/internal/domain/partner"
	"github.com/microfin-loan-engine/internal/domain/receipt"
)

// TxRunner runs a function inside one document-store transaction. The
// context handed to fn carries the transaction; repository calls made with
// it commit together or not at all. fn may run more than once when the
// store retries a write conflict, so it must re-check its preconditions
// on every invocation.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// LoanService manages loans and their fixed schedules.
type LoanService interface {
	// Create validates the terms, generates the amortization schedule,
	// and persists the loan.
	Create(ctx context.Context, companyID, customerID, customerName string, terms loan.Terms) (*loan.Loan, error)

	// GetByID retrieves a loan scoped to its company.
	GetByID(ctx context.Context, companyID, loanID string) (*loan.Loan, error)

	// TopUp adds principal to a running loan as a structured record.
	TopUp(ctx context.Context, companyID, loanID string, amount int64, feePct float64, date time.Time) (*loan.Loan, error)

	// Foreclose records an early full settlement.
	Foreclose(ctx context.Context, companyID, loanID string, settlementAmount int64, settledAt time.Time, received bool) (*loan.Loan, error)
}

// CollectParams are the inputs to a payment collection.
type CollectParams struct {
	CompanyID         string
	LoanID            string
	InstallmentNumber int
	AmountPaid        int64
	PaymentMethod     string
	Remark            string
	Now               time.Time
}

// CollectionService applies payments to pending installments.
type CollectionService interface {
	// Collect settles exactly one pending installment, issuing the next
	// sequential receipt, all inside one store transaction. Returns
	// loan.ErrLoanNotFound, loan.ErrInstallmentNotFound,
	// loan.ErrAlreadyPaid, or loan.ErrInsufficientAmount as typed results.
	Collect(ctx context.Context, p CollectParams) (*receipt.Receipt, error)
}

// LedgerService recomputes the company cash ledger from its sources.
type LedgerService interface {
	// BuildMonthly projects the full ledger into gap-free month buckets
	// with carried balances.
	BuildMonthly(ctx context.Context, companyID string) ([]ledger.Monthly, error)

	// BuildStatement projects a closed date-range statement with a
	// running balance column.
	BuildStatement(ctx context.Context, companyID string, from, to time.Time) (*ledger.Statement, error)
}

// ProfitService computes the fixed-ratio monthly profit distribution.
type ProfitService interface {
	// ComputeSplit returns each partner's share of the month's profit
	// along with the total profit figure.
	ComputeSplit(ctx context.Context, companyID string, month ledger.Month) ([]partner.Split, int64, error)
}

// PartnerService manages partners and their capital movements.
type PartnerService interface {
	Create(ctx context.Context, companyID, name string, shareRatio int) (*partner.Partner, error)
	AddTransaction(ctx context.Context, companyID string, partnerID uuid.UUID, txType partner.TransactionType, amount int64, date time.Time) (*partner.Transaction, error)
}

// ExpenseService records business expenses.
type ExpenseService interface {
	Create(ctx context.Context, companyID, narration string, amount int64, date time.Time) (*expense.Expense, error)
}
