package receipt

import (
	"context"
	"fmt"
	"time"
)

// Repository manages receipt persistence and the per-company sequence.
// NextNumber and Create are expected to run inside the same store
// transaction as the schedule mutation so a failed collection never
// consumes a sequence number.
type Repository interface {
	NextNumber(ctx context.Context, companyID string) (int64, error)
	Create(ctx context.Context, r *Receipt) error
	GetByNumber(ctx context.Context, companyID string, number int64) (*Receipt, error)
	ListByCompany(ctx context.Context, companyID string) ([]*Receipt, error)
	ListByMonth(ctx context.Context, companyID string, year int, month time.Month) ([]*Receipt, error)
}

// ErrReceiptNotFound indicates a missing receipt.
type ErrReceiptNotFound struct {
	CompanyID string
	Number    int64
}

func (e ErrReceiptNotFound) Error() string {
	return fmt.Sprintf("receipt %d not found for company %s", e.Number, e.CompanyID)
}

func (e ErrReceiptNotFound) Is(target error) bool {
	t, ok := target.(ErrReceiptNotFound)
	if !ok {
		return false
	}
	return t.CompanyID == "" || (t.CompanyID == e.CompanyID && t.Number == e.Number)
}
