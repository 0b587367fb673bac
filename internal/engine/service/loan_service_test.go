package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microfin-loan-engine/internal/domain/loan"
)

func TestLoanServiceCreate(t *testing.T) {
	repo := newMemLoanRepo()
	svc := NewLoanService(testLogger(), repo)

	terms := loan.Terms{
		Principal:        10000,
		AnnualRatePct:    24,
		TenureMonths:     12,
		ProcessingFeePct: 3,
		DisbursedAt:      time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
	}

	l, err := svc.Create(context.Background(), "company-1", "cust-1", "Asha", terms)
	require.NoError(t, err)

	stored, err := svc.GetByID(context.Background(), "company-1", l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.ID, stored.ID)
	assert.Len(t, stored.Schedule, 12)
}

func TestLoanServiceCreateInvalidTerms(t *testing.T) {
	svc := NewLoanService(testLogger(), newMemLoanRepo())

	_, err := svc.Create(context.Background(), "company-1", "cust-1", "Asha", loan.Terms{
		Principal:    0,
		TenureMonths: 12,
	})
	assert.ErrorIs(t, err, loan.ErrInvalidPrincipal)
}

func TestLoanServiceGetByIDWrongCompany(t *testing.T) {
	l := newTestLoan(t)
	svc := NewLoanService(testLogger(), newMemLoanRepo(l))

	_, err := svc.GetByID(context.Background(), "company-2", l.ID)
	assert.ErrorIs(t, err, loan.ErrLoanNotFound{})
}

func TestLoanServiceTopUp(t *testing.T) {
	l := newTestLoan(t)
	repo := newMemLoanRepo(l)
	svc := NewLoanService(testLogger(), repo)

	date := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	updated, err := svc.TopUp(context.Background(), l.CompanyID, l.ID, 5000, 2, date)
	require.NoError(t, err)

	assert.Equal(t, int64(15000), updated.Principal)
	require.Len(t, updated.TopUps, 1)
	assert.Equal(t, int64(100), updated.TopUps[0].Fee)

	stored, err := repo.GetByID(context.Background(), l.CompanyID, l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), stored.Principal)
}

func TestLoanServiceForeclose(t *testing.T) {
	l := newTestLoan(t)
	repo := newMemLoanRepo(l)
	svc := NewLoanService(testLogger(), repo)

	settledAt := time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC)
	updated, err := svc.Foreclose(context.Background(), l.CompanyID, l.ID, 7500, settledAt, true)
	require.NoError(t, err)
	require.NotNil(t, updated.Foreclosure)

	foreclosed, err := repo.ListForeclosed(context.Background(), l.CompanyID)
	require.NoError(t, err)
	assert.Len(t, foreclosed, 1)
}
