package service

import (
	"context"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/microfin-loan-engine/internal/domain/ledger"
	"github.com/microfin-loan-engine/internal/domain/loan"
	"github.com/microfin-loan-engine/internal/domain/partner"
	"github.com/microfin-loan-engine/internal/domain/receipt"
	"github.com/microfin-loan-engine/internal/platform/metrics"
)

// ProfitServiceImpl implements the ProfitService interface.
//
// Month profit is the sum of processing fees whose disbursal or top-up
// falls in the month plus the estimated interest component of each EMI
// receipt in the month. The interest figure is the documented estimate
// (straight-line outstanding principal times the monthly rate), not the
// schedule's exact interest/principal decomposition.
type ProfitServiceImpl struct {
	loanRepo    loan.Repository
	receiptRepo receipt.Repository
	partnerRepo partner.Repository
	logger      *slog.Logger
}

// NewProfitService creates a new profit split service
func NewProfitService(
	logger *slog.Logger,
	loanRepo loan.Repository,
	receiptRepo receipt.Repository,
	partnerRepo partner.Repository,
) ProfitService {
	return &ProfitServiceImpl{
		loanRepo:    loanRepo,
		receiptRepo: receiptRepo,
		partnerRepo: partnerRepo,
		logger:      logger,
	}
}

// ComputeSplit derives the month's profit and distributes it across
// partners by their fixed share ratios.
func (s *ProfitServiceImpl) ComputeSplit(ctx context.Context, companyID string, month ledger.Month) ([]partner.Split, int64, error) {
	loans, err := s.loanRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, 0, err
	}
	receipts, err := s.receiptRepo.ListByMonth(ctx, companyID, month.Year, month.Month)
	if err != nil {
		return nil, 0, err
	}
	partners, err := s.partnerRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, 0, err
	}
	txns, err := s.partnerRepo.ListTransactionsByCompany(ctx, companyID)
	if err != nil {
		return nil, 0, err
	}

	profit := monthProfit(loans, receipts, month)
	splits := distribute(profit, partners, txns)

	s.logger.Info("Profit split computed",
		"company_id", companyID,
		"month", month.String(),
		"profit", profit,
		"partners", len(splits),
	)
	metrics.ProfitComputations.WithLabelValues(companyID).Inc()
	return splits, profit, nil
}

// monthProfit sums processing fees earned in the month and the estimated
// interest across the month's receipts. Receipts whose loan no longer
// exists contribute nothing.
func monthProfit(loans []*loan.Loan, receipts []*receipt.Receipt, month ledger.Month) int64 {
	loansByID := make(map[string]*loan.Loan, len(loans))
	var profit int64

	for _, l := range loans {
		loansByID[l.ID] = l
		if ledger.MonthOf(l.DisbursedAt) == month {
			profit += l.ProcessingFee
		}
		for _, t := range l.TopUps {
			if ledger.MonthOf(t.Date) == month {
				profit += t.Fee
			}
		}
	}

	for _, r := range receipts {
		l, ok := loansByID[r.LoanID]
		if !ok {
			continue
		}
		profit += l.EstimatedInterest(r.InstallmentNumber)
	}

	return profit
}

// distribute allocates the profit across partners proportionally to the
// fixed ratio table and attaches each partner's net capital.
func distribute(profit int64, partners []*partner.Partner, txns []partner.Transaction) []partner.Split {
	if len(partners) == 0 {
		return nil
	}

	totalRatio := 0
	for _, p := range partners {
		totalRatio += p.ShareRatio
	}
	if totalRatio == 0 {
		return nil
	}

	txnsByPartner := make(map[uuid.UUID][]partner.Transaction)
	for _, t := range txns {
		txnsByPartner[t.PartnerID] = append(txnsByPartner[t.PartnerID], t)
	}

	splits := make([]partner.Split, 0, len(partners))
	for _, p := range partners {
		sharePct := float64(p.ShareRatio) / float64(totalRatio) * 100
		splits = append(splits, partner.Split{
			PartnerID:    p.ID,
			PartnerName:  p.Name,
			ShareRatio:   p.ShareRatio,
			SharePercent: sharePct,
			Profit:       int64(math.Round(float64(profit) * float64(p.ShareRatio) / float64(totalRatio))),
			NetCapital:   partner.NetCapital(txnsByPartner[p.ID]),
		})
	}
	return splits
}
