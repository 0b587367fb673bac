package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/microfin-loan-engine/internal/domain/expense"
)

// ExpenseServiceImpl implements the ExpenseService interface
type ExpenseServiceImpl struct {
	expenseRepo expense.Repository
	logger      *slog.Logger
}

// NewExpenseService creates a new expense service
func NewExpenseService(logger *slog.Logger, expenseRepo expense.Repository) ExpenseService {
	return &ExpenseServiceImpl{
		expenseRepo: expenseRepo,
		logger:      logger,
	}
}

// Create records an expense for the company
func (s *ExpenseServiceImpl) Create(ctx context.Context, companyID, narration string, amount int64, date time.Time) (*expense.Expense, error) {
	e, err := expense.New(companyID, narration, amount, date)
	if err != nil {
		return nil, err
	}

	if err := s.expenseRepo.Create(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("Expense recorded", "expense_id", e.ID, "company_id", companyID, "amount", amount)
	return e, nil
}
