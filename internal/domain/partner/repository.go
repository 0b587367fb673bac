package partner

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages partner and partner-transaction persistence.
// Transactions are append-only; there is no update or delete.
type Repository interface {
	Create(ctx context.Context, p *Partner) error
	GetByID(ctx context.Context, companyID string, id uuid.UUID) (*Partner, error)
	ListByCompany(ctx context.Context, companyID string) ([]*Partner, error)
	AddTransaction(ctx context.Context, t *Transaction) error
	ListTransactionsByCompany(ctx context.Context, companyID string) ([]Transaction, error)
}

// ErrPartnerNotFound indicates a missing partner reference.
type ErrPartnerNotFound struct {
	PartnerID uuid.UUID
}

func (e ErrPartnerNotFound) Error() string {
	return "partner not found: " + e.PartnerID.String()
}

func (e ErrPartnerNotFound) Is(target error) bool {
	t, ok := target.(ErrPartnerNotFound)
	if !ok {
		return false
	}
	return t.PartnerID == uuid.Nil || t.PartnerID == e.PartnerID
}
