// Package postgres provides PostgreSQL implementations of the partner and
// expense repositories. Both stores are append-heavy relational data that
// the ledger and profit-split projections read in bulk.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/microfin-loan-engine/internal/domain/partner"
	"github.com/microfin-loan-engine/internal/platform/persistence"
)

// PartnerRepository implements the partner.Repository interface for PostgreSQL
type PartnerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewPartnerRepository creates a new PostgreSQL partner repository
func NewPartnerRepository(logger *slog.Logger, db *persistence.PostgresDB) partner.Repository {
	return &PartnerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Create stores a new partner with its share ratio.
func (r *PartnerRepository) Create(ctx context.Context, p *partner.Partner) error {
	query := `
		INSERT INTO partners (id, company_id, name, share_ratio, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.querier.Exec(ctx, query,
		p.ID,
		p.CompanyID,
		p.Name,
		p.ShareRatio,
		p.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create partner", "error", err)
		return fmt.Errorf("failed to create partner: %w", err)
	}

	return nil
}

// GetByID retrieves a partner scoped to its company
func (r *PartnerRepository) GetByID(ctx context.Context, companyID string, id uuid.UUID) (*partner.Partner, error) {
	query := `
		SELECT id, company_id, name, share_ratio, created_at
		FROM partners
		WHERE id = $1 AND company_id = $2
	`

	var p partner.Partner
	err := r.querier.QueryRow(ctx, query, id, companyID).Scan(
		&p.ID,
		&p.CompanyID,
		&p.Name,
		&p.ShareRatio,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, partner.ErrPartnerNotFound{PartnerID: id}
		}
		r.logger.Error("Failed to get partner", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}

	return &p, nil
}

// ListByCompany retrieves all partners of a company
func (r *PartnerRepository) ListByCompany(ctx context.Context, companyID string) ([]*partner.Partner, error) {
	query := `
		SELECT id, company_id, name, share_ratio, created_at
		FROM partners
		WHERE company_id = $1
		ORDER BY created_at
	`

	rows, err := r.querier.Query(ctx, query, companyID)
	if err != nil {
		r.logger.Error("Failed to list partners", "company_id", companyID, "error", err)
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	defer rows.Close()

	var partners []*partner.Partner
	for rows.Next() {
		var p partner.Partner
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.ShareRatio, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan partner: %w", err)
		}
		partners = append(partners, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}

	return partners, nil
}

// AddTransaction appends a signed capital movement for a partner
func (r *PartnerRepository) AddTransaction(ctx context.Context, t *partner.Transaction) error {
	query := `
		INSERT INTO partner_transactions (id, partner_id, company_id, type, amount, txn_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query,
		t.ID,
		t.PartnerID,
		t.CompanyID,
		string(t.Type),
		t.Amount,
		t.Date,
		t.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to add partner transaction", "partner_id", t.PartnerID.String(), "error", err)
		return fmt.Errorf("failed to add partner transaction: %w", err)
	}

	return nil
}

// ListTransactionsByCompany retrieves all partner transactions of a company
// ordered by transaction date.
func (r *PartnerRepository) ListTransactionsByCompany(ctx context.Context, companyID string) ([]partner.Transaction, error) {
	query := `
		SELECT id, partner_id, company_id, type, amount, txn_date, created_at
		FROM partner_transactions
		WHERE company_id = $1
		ORDER BY txn_date
	`

	rows, err := r.querier.Query(ctx, query, companyID)
	if err != nil {
		r.logger.Error("Failed to list partner transactions", "company_id", companyID, "error", err)
		return nil, fmt.Errorf("failed to list partner transactions: %w", err)
	}
	defer rows.Close()

	var txns []partner.Transaction
	for rows.Next() {
		var t partner.Transaction
		var txType string
		if err := rows.Scan(&t.ID, &t.PartnerID, &t.CompanyID, &txType, &t.Amount, &t.Date, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan partner transaction: %w", err)
		}
		t.Type = partner.TransactionType(txType)
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list partner transactions: %w", err)
	}

	return txns, nil
}
