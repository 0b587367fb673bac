package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microfin-loan-engine/internal/domain/expense"
)

func TestExpenseRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ExpenseRepository{querier: mock, logger: newTestLogger()}

	e := &expense.Expense{
		ID:        uuid.New(),
		CompanyID: "company-1",
		Narration: "Office rent",
		Amount:    2500,
		Date:      time.Now(),
		CreatedAt: time.Now(),
	}

	query := `
		INSERT INTO expenses \(id, company_id, narration, amount, expense_date, created_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(e.ID, e.CompanyID, e.Narration, e.Amount, e.Date, e.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, e)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(e.ID, e.CompanyID, e.Narration, e.Amount, e.Date, e.CreatedAt).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, e)
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestExpenseRepository_ListByCompany(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ExpenseRepository{querier: mock, logger: newTestLogger()}

	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "company_id", "narration", "amount", "expense_date", "created_at"}).
		AddRow(uuid.New(), "company-1", "Office rent", int64(2500), now, now).
		AddRow(uuid.New(), "company-1", "Electricity", int64(800), now, now)

	mock.ExpectQuery(`SELECT id, company_id, narration, amount, expense_date, created_at`).
		WithArgs("company-1").
		WillReturnRows(rows)

	expenses, err := repo.ListByCompany(ctx, "company-1")
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, int64(2500), expenses[0].Amount)
	assert.Equal(t, "Electricity", expenses[1].Narration)
	assert.NoError(t, mock.ExpectationsWereMet())
}
