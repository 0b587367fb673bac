package service

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microfin-loan-engine/internal/domain/loan"
	"github.com/microfin-loan-engine/internal/domain/receipt"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// immediateTxRunner runs the function directly. The in-memory repositories
// below guard their state with a mutex, so each repository call is atomic
// even without a real store transaction.
type immediateTxRunner struct{}

func (immediateTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memLoanRepo struct {
	mu    sync.Mutex
	loans map[string]*loan.Loan
}

func newMemLoanRepo(loans ...*loan.Loan) *memLoanRepo {
	r := &memLoanRepo{loans: make(map[string]*loan.Loan)}
	for _, l := range loans {
		r.loans[l.ID] = l
	}
	return r
}

func (r *memLoanRepo) Create(_ context.Context, l *loan.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loans[l.ID] = l
	return nil
}

func (r *memLoanRepo) GetByID(_ context.Context, companyID, loanID string) (*loan.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loans[loanID]
	if !ok || l.CompanyID != companyID {
		return nil, loan.ErrLoanNotFound{LoanID: loanID}
	}
	cp := *l
	cp.Schedule = append([]loan.ScheduleEntry(nil), l.Schedule...)
	return &cp, nil
}

func (r *memLoanRepo) ListByCompany(_ context.Context, companyID string) ([]*loan.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*loan.Loan
	for _, l := range r.loans {
		if l.CompanyID == companyID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memLoanRepo) ListForeclosed(_ context.Context, companyID string) ([]*loan.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*loan.Loan
	for _, l := range r.loans {
		if l.CompanyID == companyID && l.Foreclosure != nil && l.Foreclosure.Received {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memLoanRepo) Update(_ context.Context, l *loan.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.loans[l.ID]; !ok {
		return loan.ErrLoanNotFound{LoanID: l.ID}
	}
	r.loans[l.ID] = l
	return nil
}

// MarkInstallmentPaid applies the same pending-only guard as the real store:
// only an entry that is still pending can transition to paid.
func (r *memLoanRepo) MarkInstallmentPaid(_ context.Context, companyID, loanID string, number int, paidAt time.Time, method string, amountPaid int64, remark string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loans[loanID]
	if !ok || l.CompanyID != companyID {
		return loan.ErrLoanNotFound{LoanID: loanID}
	}
	for i := range l.Schedule {
		if l.Schedule[i].Number != number {
			continue
		}
		if l.Schedule[i].Status == loan.StatusPaid {
			return loan.ErrAlreadyPaid{LoanID: loanID, Number: number}
		}
		l.Schedule[i].Status = loan.StatusPaid
		l.Schedule[i].PaidAt = &paidAt
		l.Schedule[i].PaidAmount = amountPaid
		l.Schedule[i].PaymentMethod = method
		l.Schedule[i].Remark = remark
		return nil
	}
	return loan.ErrInstallmentNotFound{LoanID: loanID, Number: number}
}

type memReceiptRepo struct {
	mu       sync.Mutex
	counters map[string]int64
	receipts []*receipt.Receipt
}

func newMemReceiptRepo() *memReceiptRepo {
	return &memReceiptRepo{counters: make(map[string]int64)}
}

func (r *memReceiptRepo) NextNumber(_ context.Context, companyID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[companyID]++
	return r.counters[companyID], nil
}

func (r *memReceiptRepo) Create(_ context.Context, rcpt *receipt.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receipts = append(r.receipts, rcpt)
	return nil
}

func (r *memReceiptRepo) GetByNumber(_ context.Context, companyID string, number int64) (*receipt.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rc := range r.receipts {
		if rc.CompanyID == companyID && rc.Number == number {
			return rc, nil
		}
	}
	return nil, receipt.ErrReceiptNotFound{CompanyID: companyID, Number: number}
}

func (r *memReceiptRepo) ListByCompany(_ context.Context, companyID string) ([]*receipt.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*receipt.Receipt
	for _, rc := range r.receipts {
		if rc.CompanyID == companyID {
			out = append(out, rc)
		}
	}
	return out, nil
}

func (r *memReceiptRepo) ListByMonth(_ context.Context, companyID string, year int, month time.Month) ([]*receipt.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*receipt.Receipt
	for _, rc := range r.receipts {
		if rc.CompanyID == companyID && rc.PaidAt.Year() == year && rc.PaidAt.Month() == month {
			out = append(out, rc)
		}
	}
	return out, nil
}

func newTestLoan(t *testing.T) *loan.Loan {
	t.Helper()
	l, err := loan.New("company-1", "cust-1", "Asha", loan.Terms{
		Principal:        10000,
		AnnualRatePct:    24,
		TenureMonths:     12,
		ProcessingFeePct: 3,
		DisbursedAt:      time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return l
}

func collectParams(l *loan.Loan, installment int, amount int64) CollectParams {
	return CollectParams{
		CompanyID:         l.CompanyID,
		LoanID:            l.ID,
		InstallmentNumber: installment,
		AmountPaid:        amount,
		PaymentMethod:     "CASH",
		Now:               time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestCollectSuccess(t *testing.T) {
	l := newTestLoan(t)
	loanRepo := newMemLoanRepo(l)
	receiptRepo := newMemReceiptRepo()
	svc := NewCollectionService(testLogger(), immediateTxRunner{}, loanRepo, receiptRepo, nil)

	r, err := svc.Collect(context.Background(), collectParams(l, 1, l.EMI))
	require.NoError(t, err)

	assert.Equal(t, int64(1), r.Number)
	assert.Equal(t, l.EMI, r.AmountPaid)
	assert.False(t, r.IsExtraPayment)

	stored, err := loanRepo.GetByID(context.Background(), l.CompanyID, l.ID)
	require.NoError(t, err)
	entry, err := stored.Installment(1)
	require.NoError(t, err)
	assert.Equal(t, loan.StatusPaid, entry.Status)
	require.NotNil(t, entry.PaidAt)

	// The next collection gets the next sequence number.
	r2, err := svc.Collect(context.Background(), collectParams(l, 2, l.EMI))
	require.NoError(t, err)
	assert.Equal(t, int64(2), r2.Number)
}

func TestCollectExtraPayment(t *testing.T) {
	l := newTestLoan(t)
	svc := NewCollectionService(testLogger(), immediateTxRunner{}, newMemLoanRepo(l), newMemReceiptRepo(), nil)

	r, err := svc.Collect(context.Background(), collectParams(l, 1, 1200))
	require.NoError(t, err)

	assert.True(t, r.IsExtraPayment)
	assert.Equal(t, 1200-l.EMI, r.ExtraAmount)
	assert.Equal(t, int64(1200), r.AmountPaid)
}

func TestCollectInsufficientAmount(t *testing.T) {
	l := newTestLoan(t)
	receiptRepo := newMemReceiptRepo()
	svc := NewCollectionService(testLogger(), immediateTxRunner{}, newMemLoanRepo(l), receiptRepo, nil)

	_, err := svc.Collect(context.Background(), collectParams(l, 1, l.EMI-1))
	assert.ErrorIs(t, err, loan.ErrInsufficientAmount{})

	// A rejected payment consumes no sequence number.
	assert.Empty(t, receiptRepo.receipts)
	assert.Zero(t, receiptRepo.counters[l.CompanyID])
}

func TestCollectAlreadyPaid(t *testing.T) {
	l := newTestLoan(t)
	svc := NewCollectionService(testLogger(), immediateTxRunner{}, newMemLoanRepo(l), newMemReceiptRepo(), nil)

	_, err := svc.Collect(context.Background(), collectParams(l, 1, l.EMI))
	require.NoError(t, err)

	_, err = svc.Collect(context.Background(), collectParams(l, 1, l.EMI))
	assert.ErrorIs(t, err, loan.ErrAlreadyPaid{LoanID: l.ID, Number: 1})
}

func TestCollectLoanNotFound(t *testing.T) {
	l := newTestLoan(t)
	svc := NewCollectionService(testLogger(), immediateTxRunner{}, newMemLoanRepo(), newMemReceiptRepo(), nil)

	_, err := svc.Collect(context.Background(), collectParams(l, 1, l.EMI))
	assert.ErrorIs(t, err, loan.ErrLoanNotFound{})
}

func TestCollectInstallmentNotFound(t *testing.T) {
	l := newTestLoan(t)
	svc := NewCollectionService(testLogger(), immediateTxRunner{}, newMemLoanRepo(l), newMemReceiptRepo(), nil)

	_, err := svc.Collect(context.Background(), collectParams(l, 99, l.EMI))
	assert.ErrorIs(t, err, loan.ErrInstallmentNotFound{})
}

func TestCollectConcurrentDistinctInstallments(t *testing.T) {
	l := newTestLoan(t)
	receiptRepo := newMemReceiptRepo()
	svc := NewCollectionService(testLogger(), immediateTxRunner{}, newMemLoanRepo(l), receiptRepo, nil)

	const workers = 12
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = svc.Collect(context.Background(), collectParams(l, n+1, 1500))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "installment %d", i+1)
	}

	// Receipt numbers are exactly 1..N with no gaps or duplicates.
	seen := make(map[int64]bool)
	for _, r := range receiptRepo.receipts {
		seen[r.Number] = true
	}
	require.Len(t, seen, workers)
	for n := int64(1); n <= workers; n++ {
		assert.True(t, seen[n], "missing receipt number %d", n)
	}
}

func TestCollectConcurrentSameInstallment(t *testing.T) {
	l := newTestLoan(t)
	receiptRepo := newMemReceiptRepo()
	svc := NewCollectionService(testLogger(), immediateTxRunner{}, newMemLoanRepo(l), receiptRepo, nil)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = svc.Collect(context.Background(), collectParams(l, 1, l.EMI))
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, loan.ErrAlreadyPaid{})
		}
	}
	assert.Equal(t, 1, successes)
	assert.Len(t, receiptRepo.receipts, 1)
}
