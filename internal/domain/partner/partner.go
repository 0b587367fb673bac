package partner

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyName              = errors.New("partner name cannot be empty")
	ErrInvalidRatio           = errors.New("share ratio must be positive")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidTransactionType = errors.New("invalid partner transaction type")
)

// Partner is a capital partner of the company. ShareRatio is policy data
// set by administrators; it is not derived from contributed capital.
type Partner struct {
	ID         uuid.UUID `json:"id"`
	CompanyID  string    `json:"company_id"`
	Name       string    `json:"name"`
	ShareRatio int       `json:"share_ratio"`
	CreatedAt  time.Time `json:"created_at"`
}

// New creates a partner with the given share ratio.
func New(companyID, name string, shareRatio int) (*Partner, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if shareRatio <= 0 {
		return nil, ErrInvalidRatio
	}
	return &Partner{
		ID:         uuid.New(),
		CompanyID:  companyID,
		Name:       name,
		ShareRatio: shareRatio,
		CreatedAt:  time.Now(),
	}, nil
}

// TransactionType defines the sign of a partner capital movement.
type TransactionType string

const (
	TypeInvestment TransactionType = "INVESTMENT"
	TypeWithdrawal TransactionType = "WITHDRAWAL"
)

// Transaction is an append-only capital movement for a partner.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	PartnerID uuid.UUID       `json:"partner_id"`
	CompanyID string          `json:"company_id"`
	Type      TransactionType `json:"type"`
	Amount    int64           `json:"amount"`
	Date      time.Time       `json:"date"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewTransaction records a signed capital movement.
func NewTransaction(partnerID uuid.UUID, companyID string, txType TransactionType, amount int64, date time.Time) (*Transaction, error) {
	if txType != TypeInvestment && txType != TypeWithdrawal {
		return nil, ErrInvalidTransactionType
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return &Transaction{
		ID:        uuid.New(),
		PartnerID: partnerID,
		CompanyID: companyID,
		Type:      txType,
		Amount:    amount,
		Date:      date,
		CreatedAt: time.Now(),
	}, nil
}

// Signed returns the transaction amount with its cash-flow sign:
// investments add to capital, withdrawals subtract.
func (t Transaction) Signed() int64 {
	if t.Type == TypeWithdrawal {
		return -t.Amount
	}
	return t.Amount
}

// NetCapital folds a partner's signed transactions into their current capital.
func NetCapital(txns []Transaction) int64 {
	var total int64
	for _, t := range txns {
		total += t.Signed()
	}
	return total
}

// Split is the computed profit share of one partner for a month.
type Split struct {
	PartnerID    uuid.UUID `json:"partner_id"`
	PartnerName  string    `json:"partner_name"`
	ShareRatio   int       `json:"share_ratio"`
	SharePercent float64   `json:"share_percent"`
	Profit       int64     `json:"profit"`
	NetCapital   int64     `json:"net_capital"`
}
