package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/microfin-loan-engine/internal/domain/partner"
)

// PartnerServiceImpl implements the PartnerService interface
type PartnerServiceImpl struct {
	partnerRepo partner.Repository
	logger      *slog.Logger
}

// NewPartnerService creates a new partner service
func NewPartnerService(logger *slog.Logger, partnerRepo partner.Repository) PartnerService {
	return &PartnerServiceImpl{
		partnerRepo: partnerRepo,
		logger:      logger,
	}
}

// Create registers a partner with its fixed share ratio
func (s *PartnerServiceImpl) Create(ctx context.Context, companyID, name string, shareRatio int) (*partner.Partner, error) {
	p, err := partner.New(companyID, name, shareRatio)
	if err != nil {
		return nil, err
	}

	if err := s.partnerRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Partner created", "partner_id", p.ID, "company_id", companyID, "share_ratio", shareRatio)
	return p, nil
}

// AddTransaction records a capital movement for an existing partner
func (s *PartnerServiceImpl) AddTransaction(ctx context.Context, companyID string, partnerID uuid.UUID, txType partner.TransactionType, amount int64, date time.Time) (*partner.Transaction, error) {
	if _, err := s.partnerRepo.GetByID(ctx, companyID, partnerID); err != nil {
		return nil, err
	}

	t, err := partner.NewTransaction(partnerID, companyID, txType, amount, date)
	if err != nil {
		return nil, err
	}

	if err := s.partnerRepo.AddTransaction(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("Partner transaction recorded",
		"partner_id", partnerID,
		"type", string(txType),
		"amount", amount,
	)
	return t, nil
}
