package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/microfin-loan-engine/internal/domain/loan"
	"github.com/microfin-loan-engine/internal/domain/receipt"
	"github.com/microfin-loan-engine/internal/platform/messaging/producers"
	"github.com/microfin-loan-engine/internal/platform/metrics"
)

// CollectionServiceImpl implements the CollectionService interface
type CollectionServiceImpl struct {
	store       TxRunner
	loanRepo    loan.Repository
	receiptRepo receipt.Repository
	producer    producers.MessagePublisher // Optional; nil disables event publishing
	logger      *slog.Logger
}

// NewCollectionService creates a new payment collection service
func NewCollectionService(
	logger *slog.Logger,
	store TxRunner,
	loanRepo loan.Repository,
	receiptRepo receipt.Repository,
	producer producers.MessagePublisher,
) CollectionService {
	return &CollectionServiceImpl{
		store:       store,
		loanRepo:    loanRepo,
		receiptRepo: receiptRepo,
		producer:    producer,
		logger:      logger,
	}
}

// Collect applies one payment to one pending installment. The schedule
// mutation, counter increment, and receipt insert run in a single store
// transaction; a failed collection leaves all three untouched. Two
// concurrent collections of the same installment serialize on the store:
// the loser re-evaluates, finds the entry no longer pending, and gets
// ErrAlreadyPaid.
func (s *CollectionServiceImpl) Collect(ctx context.Context, p CollectParams) (*receipt.Receipt, error) {
	var issued *receipt.Receipt

	err := s.store.WithTransaction(ctx, func(txCtx context.Context) error {
		// Re-read on every invocation: the store may retry this function
		// after a write conflict.
		issued = nil

		l, err := s.loanRepo.GetByID(txCtx, p.CompanyID, p.LoanID)
		if err != nil {
			return err
		}

		entry, err := l.Installment(p.InstallmentNumber)
		if err != nil {
			return err
		}
		if entry.Status == loan.StatusPaid {
			return loan.ErrAlreadyPaid{LoanID: l.ID, Number: p.InstallmentNumber}
		}
		if p.AmountPaid < entry.Amount {
			return loan.ErrInsufficientAmount{Scheduled: entry.Amount, Paid: p.AmountPaid}
		}

		if err := s.loanRepo.MarkInstallmentPaid(txCtx, p.CompanyID, p.LoanID, p.InstallmentNumber, p.Now, p.PaymentMethod, p.AmountPaid, p.Remark); err != nil {
			return err
		}

		number, err := s.receiptRepo.NextNumber(txCtx, p.CompanyID)
		if err != nil {
			return err
		}

		issued = receipt.New(number, receipt.Params{
			CompanyID:         p.CompanyID,
			LoanID:            l.ID,
			CustomerID:        l.CustomerID,
			CustomerName:      l.CustomerName,
			InstallmentNumber: p.InstallmentNumber,
			ScheduledAmount:   entry.Amount,
			AmountPaid:        p.AmountPaid,
			PaidAt:            p.Now,
			PaymentMethod:     p.PaymentMethod,
			Remark:            p.Remark,
		})
		return s.receiptRepo.Create(txCtx, issued)
	})
	if err != nil {
		metrics.CollectionFailures.WithLabelValues(p.CompanyID, failureReason(err)).Inc()
		return nil, err
	}

	s.logger.Info("Payment collected",
		"company_id", p.CompanyID,
		"loan_id", p.LoanID,
		"installment", p.InstallmentNumber,
		"receipt_number", issued.Number,
		"amount_paid", p.AmountPaid,
		"is_extra_payment", issued.IsExtraPayment,
	)
	metrics.PaymentsCollected.WithLabelValues(p.CompanyID).Inc()

	s.publishReceiptIssued(ctx, issued)
	return issued, nil
}

// publishReceiptIssued hands the receipt to the external renderer/notifier
// pipeline. Publishing is best-effort: the collection already committed,
// so a publish failure is logged and swallowed.
func (s *CollectionServiceImpl) publishReceiptIssued(ctx context.Context, r *receipt.Receipt) {
	if s.producer == nil {
		return
	}

	event := producers.ReceiptIssued{
		ReceiptNumber:     r.Number,
		CompanyID:         r.CompanyID,
		LoanID:            r.LoanID,
		CustomerID:        r.CustomerID,
		CustomerName:      r.CustomerName,
		InstallmentNumber: r.InstallmentNumber,
		AmountPaid:        r.AmountPaid,
		IsExtraPayment:    r.IsExtraPayment,
		ExtraAmount:       r.ExtraAmount,
		PaidAt:            r.PaidAt,
	}
	key := r.CompanyID + ":" + strconv.FormatInt(r.Number, 10)
	if err := s.producer.Publish(ctx, key, event); err != nil {
		s.logger.Error("Failed to publish receipt event",
			"receipt_number", r.Number,
			"error", err,
		)
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, loan.ErrAlreadyPaid{}):
		return "already_paid"
	case errors.Is(err, loan.ErrInsufficientAmount{}):
		return "insufficient_amount"
	case errors.Is(err, loan.ErrLoanNotFound{}):
		return "loan_not_found"
	case errors.Is(err, loan.ErrInstallmentNotFound{}):
		return "installment_not_found"
	default:
		return "internal"
	}
}
