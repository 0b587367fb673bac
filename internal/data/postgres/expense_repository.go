package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/microfin-loan-engine/internal/domain/expense"
	"github.com/microfin-loan-engine/internal/platform/persistence"
)

// ExpenseRepository implements the expense.Repository interface for PostgreSQL
type ExpenseRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewExpenseRepository creates a new PostgreSQL expense repository
func NewExpenseRepository(logger *slog.Logger, db *persistence.PostgresDB) expense.Repository {
	return &ExpenseRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Create appends an expense record
func (r *ExpenseRepository) Create(ctx context.Context, e *expense.Expense) error {
	query := `
		INSERT INTO expenses (id, company_id, narration, amount, expense_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.querier.Exec(ctx, query,
		e.ID,
		e.CompanyID,
		e.Narration,
		e.Amount,
		e.Date,
		e.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create expense", "error", err)
		return fmt.Errorf("failed to create expense: %w", err)
	}

	return nil
}

// ListByCompany retrieves all expenses of a company ordered by expense date
func (r *ExpenseRepository) ListByCompany(ctx context.Context, companyID string) ([]*expense.Expense, error) {
	query := `
		SELECT id, company_id, narration, amount, expense_date, created_at
		FROM expenses
		WHERE company_id = $1
		ORDER BY expense_date
	`

	rows, err := r.querier.Query(ctx, query, companyID)
	if err != nil {
		r.logger.Error("Failed to list expenses", "company_id", companyID, "error", err)
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*expense.Expense
	for rows.Next() {
		var e expense.Expense
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.Narration, &e.Amount, &e.Date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	return expenses, nil
}
