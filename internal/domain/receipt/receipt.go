package receipt

import (
	"time"

	"github.com/google/uuid"
)

// Receipt is the immutable record issued for exactly one collected
// installment. Number is a per-company sequence with no gaps.
type Receipt struct {
	ID                string    `json:"id" bson:"_id"`
	Number            int64     `json:"number" bson:"number"`
	CompanyID         string    `json:"company_id" bson:"company_id"`
	LoanID            string    `json:"loan_id" bson:"loan_id"`
	CustomerID        string    `json:"customer_id" bson:"customer_id"`
	CustomerName      string    `json:"customer_name" bson:"customer_name"`
	InstallmentNumber int       `json:"installment_number" bson:"installment_number"`
	ScheduledAmount   int64     `json:"scheduled_amount" bson:"scheduled_amount"`
	AmountPaid        int64     `json:"amount_paid" bson:"amount_paid"`
	IsExtraPayment    bool      `json:"is_extra_payment" bson:"is_extra_payment"`
	ExtraAmount       int64     `json:"extra_amount" bson:"extra_amount"`
	PaidAt            time.Time `json:"paid_at" bson:"paid_at"`
	PaymentMethod     string    `json:"payment_method" bson:"payment_method"`
	Remark            string    `json:"remark,omitempty" bson:"remark,omitempty"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
}

// Params carries the inputs for issuing a receipt.
type Params struct {
	CompanyID         string
	LoanID            string
	CustomerID        string
	CustomerName      string
	InstallmentNumber int
	ScheduledAmount   int64
	AmountPaid        int64
	PaidAt            time.Time
	PaymentMethod     string
	Remark            string
}

// New issues a receipt with the given sequence number, deriving the
// extra-payment flag from the amount actually paid.
func New(number int64, p Params) *Receipt {
	extra := p.AmountPaid - p.ScheduledAmount
	if extra < 0 {
		extra = 0
	}
	return &Receipt{
		ID:                uuid.New().String(),
		Number:            number,
		CompanyID:         p.CompanyID,
		LoanID:            p.LoanID,
		CustomerID:        p.CustomerID,
		CustomerName:      p.CustomerName,
		InstallmentNumber: p.InstallmentNumber,
		ScheduledAmount:   p.ScheduledAmount,
		AmountPaid:        p.AmountPaid,
		IsExtraPayment:    p.AmountPaid > p.ScheduledAmount,
		ExtraAmount:       extra,
		PaidAt:            p.PaidAt,
		PaymentMethod:     p.PaymentMethod,
		Remark:            p.Remark,
		CreatedAt:         time.Now(),
	}
}
