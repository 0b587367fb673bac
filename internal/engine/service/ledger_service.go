package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/microfin-loan-engine/internal/domain/expense"
	"github.com/microfin-loan-engine/internal/domain/ledger"
	"github.com/microfin-loan-engine/internal/domain/loan"
	"github.com/microfin-loan-engine/internal/domain/partner"
	"github.com/microfin-loan-engine/internal/domain/receipt"
	"github.com/microfin-loan-engine/internal/platform/metrics"
)

// LedgerServiceImpl implements the LedgerService interface. The five
// source fetches are independent reads issued concurrently on a shared
// worker pool; the projection over the fetched slices is pure and
// sequential, so fetch completion order never changes the result.
type LedgerServiceImpl struct {
	loanRepo    loan.Repository
	receiptRepo receipt.Repository
	partnerRepo partner.Repository
	expenseRepo expense.Repository
	pool        *ants.Pool
	logger      *slog.Logger
}

// NewLedgerService creates a new ledger service sharing the given worker pool
func NewLedgerService(
	logger *slog.Logger,
	pool *ants.Pool,
	loanRepo loan.Repository,
	receiptRepo receipt.Repository,
	partnerRepo partner.Repository,
	expenseRepo expense.Repository,
) LedgerService {
	return &LedgerServiceImpl{
		loanRepo:    loanRepo,
		receiptRepo: receiptRepo,
		partnerRepo: partnerRepo,
		expenseRepo: expenseRepo,
		pool:        pool,
		logger:      logger,
	}
}

// BuildMonthly recomputes the company's full ledger as gap-free month
// buckets with carried balances.
func (s *LedgerServiceImpl) BuildMonthly(ctx context.Context, companyID string) ([]ledger.Monthly, error) {
	entries, err := s.projectEntries(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return ledger.BuildMonthly(entries), nil
}

// BuildStatement recomputes a closed date-range statement; the opening
// balance carries everything before the range start.
func (s *LedgerServiceImpl) BuildStatement(ctx context.Context, companyID string, from, to time.Time) (*ledger.Statement, error) {
	entries, err := s.projectEntries(ctx, companyID)
	if err != nil {
		return nil, err
	}
	stmt := ledger.BuildStatement(entries, from, to)
	return &stmt, nil
}

func (s *LedgerServiceImpl) projectEntries(ctx context.Context, companyID string) ([]ledger.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.LedgerBuildDuration.Observe(time.Since(start).Seconds())
	}()

	src, err := s.fetchSources(ctx, companyID)
	if err != nil {
		return nil, err
	}

	entries, skipped := ledger.Project(*src)
	if skipped > 0 {
		s.logger.Warn("Skipped ledger entries with dangling references",
			"company_id", companyID,
			"skipped", skipped,
		)
	}

	metrics.LedgerBuilds.WithLabelValues(companyID).Inc()
	return entries, nil
}

// fetchSources issues the five source reads concurrently. Each fetch
// writes only its own slot; the wait group provides the happens-before
// edge back to the caller. No locks are held across fetching, and a
// failed or cancelled build is simply discarded and recomputed.
func (s *LedgerServiceImpl) fetchSources(ctx context.Context, companyID string) (*ledger.Sources, error) {
	var src ledger.Sources

	fetches := []func() error{
		func() (err error) {
			src.Loans, err = s.loanRepo.ListByCompany(ctx, companyID)
			return err
		},
		func() (err error) {
			src.Receipts, err = s.receiptRepo.ListByCompany(ctx, companyID)
			return err
		},
		func() (err error) {
			src.Partners, err = s.partnerRepo.ListByCompany(ctx, companyID)
			if err != nil {
				return err
			}
			src.PartnerTxns, err = s.partnerRepo.ListTransactionsByCompany(ctx, companyID)
			return err
		},
		func() (err error) {
			src.Expenses, err = s.expenseRepo.ListByCompany(ctx, companyID)
			return err
		},
		func() (err error) {
			src.Foreclosed, err = s.loanRepo.ListForeclosed(ctx, companyID)
			return err
		},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(fetches))
	for i, fetch := range fetches {
		i, fetch := i, fetch
		wg.Add(1)
		task := func() {
			defer wg.Done()
			errs[i] = fetch()
		}
		if submitErr := s.pool.Submit(task); submitErr != nil {
			// Pool saturated or released; run the fetch inline rather
			// than failing the build.
			task()
		}
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &src, nil
}
