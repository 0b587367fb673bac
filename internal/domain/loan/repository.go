package loan

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Validation errors for loan terms and mutations.
var (
	ErrInvalidPrincipal  = errors.New("principal must be positive")
	ErrInvalidTenure     = errors.New("tenure must be at least one month")
	ErrNegativeRate      = errors.New("annual rate cannot be negative")
	ErrNegativeFee       = errors.New("processing fee percentage cannot be negative")
	ErrInvalidSettlement = errors.New("settlement amount must be positive")
	ErrEmptyCompanyID    = errors.New("company id cannot be empty")
)

// Repository manages loan persistence. MarkInstallmentPaid must only touch
// an entry that is still pending; implementations report the already-paid
// case as ErrAlreadyPaid so callers can distinguish it from a missing loan.
type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, companyID, loanID string) (*Loan, error)
	ListByCompany(ctx context.Context, companyID string) ([]*Loan, error)
	ListForeclosed(ctx context.Context, companyID string) ([]*Loan, error)
	Update(ctx context.Context, l *Loan) error
	MarkInstallmentPaid(ctx context.Context, companyID, loanID string, number int, paidAt time.Time, method string, amountPaid int64, remark string) error
}

// ErrLoanNotFound indicates a missing loan reference.
type ErrLoanNotFound struct {
	LoanID string
}

func (e ErrLoanNotFound) Error() string {
	return "loan not found: " + e.LoanID
}

// Is matches any ErrLoanNotFound when the target carries no id.
func (e ErrLoanNotFound) Is(target error) bool {
	t, ok := target.(ErrLoanNotFound)
	if !ok {
		return false
	}
	return t.LoanID == "" || t.LoanID == e.LoanID
}

// ErrInstallmentNotFound indicates the installment number is outside the schedule.
type ErrInstallmentNotFound struct {
	LoanID string
	Number int
}

func (e ErrInstallmentNotFound) Error() string {
	return fmt.Sprintf("installment %d not found for loan %s", e.Number, e.LoanID)
}

func (e ErrInstallmentNotFound) Is(target error) bool {
	t, ok := target.(ErrInstallmentNotFound)
	if !ok {
		return false
	}
	return t.LoanID == "" || (t.LoanID == e.LoanID && t.Number == e.Number)
}

// ErrAlreadyPaid indicates the installment was already settled, either before
// the call or by a concurrent collection that won the race.
type ErrAlreadyPaid struct {
	LoanID string
	Number int
}

func (e ErrAlreadyPaid) Error() string {
	return fmt.Sprintf("installment %d of loan %s is already paid", e.Number, e.LoanID)
}

func (e ErrAlreadyPaid) Is(target error) bool {
	t, ok := target.(ErrAlreadyPaid)
	if !ok {
		return false
	}
	return t.LoanID == "" || (t.LoanID == e.LoanID && t.Number == e.Number)
}

// ErrInsufficientAmount indicates a payment below the scheduled installment.
// Paying more than the schedule is allowed; paying less is not.
type ErrInsufficientAmount struct {
	Scheduled int64
	Paid      int64
}

func (e ErrInsufficientAmount) Error() string {
	return fmt.Sprintf("amount %d is below the scheduled installment %d", e.Paid, e.Scheduled)
}

func (e ErrInsufficientAmount) Is(target error) bool {
	_, ok := target.(ErrInsufficientAmount)
	return ok
}
