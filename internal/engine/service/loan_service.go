package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/microfin-loan-engine/internal/domain/loan"
)

// LoanServiceImpl implements the LoanService interface
type LoanServiceImpl struct {
	loanRepo loan.Repository
	logger   *slog.Logger
}

// NewLoanService creates a new loan service
func NewLoanService(logger *slog.Logger, loanRepo loan.Repository) LoanService {
	return &LoanServiceImpl{
		loanRepo: loanRepo,
		logger:   logger,
	}
}

// Create validates the terms, generates the schedule, and persists the loan
func (s *LoanServiceImpl) Create(ctx context.Context, companyID, customerID, customerName string, terms loan.Terms) (*loan.Loan, error) {
	l, err := loan.New(companyID, customerID, customerName, terms)
	if err != nil {
		return nil, err
	}

	if err := s.loanRepo.Create(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("Loan created",
		"loan_id", l.ID,
		"company_id", l.CompanyID,
		"principal", l.Principal,
		"emi", l.EMI,
		"tenure_months", l.TenureMonths,
	)
	return l, nil
}

// GetByID retrieves a loan scoped to its company
func (s *LoanServiceImpl) GetByID(ctx context.Context, companyID, loanID string) (*loan.Loan, error) {
	return s.loanRepo.GetByID(ctx, companyID, loanID)
}

// TopUp raises the loan principal, recording a structured top-up entry
// that the ledger projection uses as its dedup key.
func (s *LoanServiceImpl) TopUp(ctx context.Context, companyID, loanID string, amount int64, feePct float64, date time.Time) (*loan.Loan, error) {
	l, err := s.loanRepo.GetByID(ctx, companyID, loanID)
	if err != nil {
		return nil, err
	}

	topUp, err := l.AddTopUp(amount, feePct, date)
	if err != nil {
		return nil, err
	}

	if err := s.loanRepo.Update(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("Loan topped up",
		"loan_id", l.ID,
		"top_up_id", topUp.ID,
		"amount", topUp.Amount,
		"fee", topUp.Fee,
	)
	return l, nil
}

// Foreclose records an early full settlement of the loan
func (s *LoanServiceImpl) Foreclose(ctx context.Context, companyID, loanID string, settlementAmount int64, settledAt time.Time, received bool) (*loan.Loan, error) {
	l, err := s.loanRepo.GetByID(ctx, companyID, loanID)
	if err != nil {
		return nil, err
	}

	if err := l.RecordForeclosure(settlementAmount, settledAt, received); err != nil {
		return nil, err
	}

	if err := s.loanRepo.Update(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("Loan foreclosed",
		"loan_id", l.ID,
		"settlement_amount", settlementAmount,
		"received", received,
	)
	return l, nil
}
