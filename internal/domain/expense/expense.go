package expense

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidAmount  = errors.New("expense amount must be positive")
	ErrEmptyNarration = errors.New("expense narration cannot be empty")
)

// Expense is an append-only business outflow. Every expense is a debit in
// the derived ledger.
type Expense struct {
	ID        uuid.UUID `json:"id"`
	CompanyID string    `json:"company_id"`
	Narration string    `json:"narration"`
	Amount    int64     `json:"amount"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// New records an expense for the company.
func New(companyID, narration string, amount int64, date time.Time) (*Expense, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if narration == "" {
		return nil, ErrEmptyNarration
	}
	return &Expense{
		ID:        uuid.New(),
		CompanyID: companyID,
		Narration: narration,
		Amount:    amount,
		Date:      date,
		CreatedAt: time.Now(),
	}, nil
}

// Repository manages expense persistence.
type Repository interface {
	Create(ctx context.Context, e *Expense) error
	ListByCompany(ctx context.Context, companyID string) ([]*Expense, error)
}
