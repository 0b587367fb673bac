package loan

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleStatus defines the lifecycle of a schedule entry. The only legal
// transition is Pending -> Paid; a paid installment is never reopened.
type ScheduleStatus string

const (
	StatusPending ScheduleStatus = "PENDING"
	StatusPaid    ScheduleStatus = "PAID"
)

// ScheduleEntry is one installment of a loan's repayment schedule.
type ScheduleEntry struct {
	Number        int            `json:"number" bson:"number"`
	DueDate       time.Time      `json:"due_date" bson:"due_date"`
	Amount        int64          `json:"amount" bson:"amount"` // Whole currency units
	Status        ScheduleStatus `json:"status" bson:"status"`
	PaidAt        *time.Time     `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
	PaidAmount    int64          `json:"paid_amount,omitempty" bson:"paid_amount,omitempty"`
	PaymentMethod string         `json:"payment_method,omitempty" bson:"payment_method,omitempty"`
	Remark        string         `json:"remark,omitempty" bson:"remark,omitempty"`
}

// TopUp records additional principal added to a running loan. Each top-up
// carries its own identifier so the derived ledger can emit exactly one
// entry per top-up without guessing from dates.
type TopUp struct {
	ID     string    `json:"id" bson:"id"`
	Amount int64     `json:"amount" bson:"amount"`
	Fee    int64     `json:"fee" bson:"fee"`
	Date   time.Time `json:"date" bson:"date"`
}

// Foreclosure records an early full settlement of the loan.
type Foreclosure struct {
	SettlementAmount int64     `json:"settlement_amount" bson:"settlement_amount"`
	SettledAt        time.Time `json:"settled_at" bson:"settled_at"`
	Received         bool      `json:"received" bson:"received"`
}

// Loan is the aggregate owning the repayment schedule. Principal includes
// any top-up amounts; OriginalPrincipal recovers the disbursed figure.
type Loan struct {
	ID               string         `json:"id" bson:"_id"`
	CompanyID        string         `json:"company_id" bson:"company_id"`
	CustomerID       string         `json:"customer_id" bson:"customer_id"`
	CustomerName     string         `json:"customer_name" bson:"customer_name"`
	Principal        int64          `json:"principal" bson:"principal"`
	AnnualRatePct    float64        `json:"annual_rate_pct" bson:"annual_rate_pct"`
	TenureMonths     int            `json:"tenure_months" bson:"tenure_months"`
	ProcessingFeePct float64        `json:"processing_fee_pct" bson:"processing_fee_pct"`
	ProcessingFee    int64          `json:"processing_fee" bson:"processing_fee"`
	EMI              int64          `json:"emi" bson:"emi"`
	DisbursedAt      time.Time      `json:"disbursed_at" bson:"disbursed_at"`
	Schedule         []ScheduleEntry `json:"schedule" bson:"schedule"`
	TopUps           []TopUp        `json:"top_ups,omitempty" bson:"top_ups,omitempty"`
	Foreclosure      *Foreclosure   `json:"foreclosure,omitempty" bson:"foreclosure,omitempty"`
	CreatedAt        time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" bson:"updated_at"`
}

// New creates a loan from validated terms, generating its full schedule.
func New(companyID, customerID, customerName string, terms Terms) (*Loan, error) {
	if companyID == "" {
		return nil, ErrEmptyCompanyID
	}
	schedule, err := GenerateSchedule(terms)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Loan{
		ID:               uuid.New().String(),
		CompanyID:        companyID,
		CustomerID:       customerID,
		CustomerName:     customerName,
		Principal:        terms.Principal,
		AnnualRatePct:    terms.AnnualRatePct,
		TenureMonths:     terms.TenureMonths,
		ProcessingFeePct: terms.ProcessingFeePct,
		ProcessingFee:    ProcessingFee(terms.Principal, terms.ProcessingFeePct),
		EMI:              MonthlyEMI(terms.Principal, terms.AnnualRatePct, terms.TenureMonths),
		DisbursedAt:      terms.DisbursedAt,
		Schedule:         schedule,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// OriginalPrincipal returns the amount disbursed at loan creation,
// net of all recorded top-ups.
func (l *Loan) OriginalPrincipal() int64 {
	p := l.Principal
	for _, t := range l.TopUps {
		p -= t.Amount
	}
	return p
}

// Installment returns the schedule entry with the given number.
func (l *Loan) Installment(number int) (*ScheduleEntry, error) {
	for i := range l.Schedule {
		if l.Schedule[i].Number == number {
			return &l.Schedule[i], nil
		}
	}
	return nil, ErrInstallmentNotFound{LoanID: l.ID, Number: number}
}

// AddTopUp raises the loan principal by amount and records the structured
// top-up entry keyed by its own id.
func (l *Loan) AddTopUp(amount int64, feePct float64, date time.Time) (*TopUp, error) {
	if amount <= 0 {
		return nil, ErrInvalidPrincipal
	}
	if feePct < 0 {
		return nil, ErrNegativeFee
	}

	t := TopUp{
		ID:     uuid.New().String(),
		Amount: amount,
		Fee:    ProcessingFee(amount, feePct),
		Date:   date,
	}
	l.Principal += amount
	l.TopUps = append(l.TopUps, t)
	l.UpdatedAt = time.Now()
	return &l.TopUps[len(l.TopUps)-1], nil
}

// RecordForeclosure marks the loan as settled early for the given amount.
func (l *Loan) RecordForeclosure(settlementAmount int64, settledAt time.Time, received bool) error {
	if settlementAmount <= 0 {
		return ErrInvalidSettlement
	}
	l.Foreclosure = &Foreclosure{
		SettlementAmount: settlementAmount,
		SettledAt:        settledAt,
		Received:         received,
	}
	l.UpdatedAt = time.Now()
	return nil
}
