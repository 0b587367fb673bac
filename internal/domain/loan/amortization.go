package loan

import (
	"math"
	"time"
)

// Terms are the inputs to schedule generation.
type Terms struct {
	Principal        int64     // > 0, whole currency units
	AnnualRatePct    float64   // >= 0, percent per year
	TenureMonths     int       // >= 1
	ProcessingFeePct float64   // >= 0
	DisbursedAt      time.Time
}

// Validate checks the loan terms, returning the first violation found.
func (t Terms) Validate() error {
	if t.Principal <= 0 {
		return ErrInvalidPrincipal
	}
	if t.TenureMonths < 1 {
		return ErrInvalidTenure
	}
	if t.AnnualRatePct < 0 {
		return ErrNegativeRate
	}
	if t.ProcessingFeePct < 0 {
		return ErrNegativeFee
	}
	return nil
}

// MonthlyRate converts an annual percentage rate to a monthly fraction.
func MonthlyRate(annualRatePct float64) float64 {
	return annualRatePct / 12 / 100
}

// MonthlyEMI computes the fixed installment using the reducing-balance
// annuity formula P*r*(1+r)^n / ((1+r)^n - 1), rounded to the nearest
// whole currency unit.
//
// For a zero interest rate the annuity formula degenerates, so the loan
// falls back to equal principal installments of round(P/n). A zero-payment
// schedule is never produced for a positive principal.
func MonthlyEMI(principal int64, annualRatePct float64, tenureMonths int) int64 {
	if tenureMonths < 1 {
		return 0
	}
	r := MonthlyRate(annualRatePct)
	if r == 0 {
		return int64(math.Round(float64(principal) / float64(tenureMonths)))
	}
	factor := math.Pow(1+r, float64(tenureMonths))
	emi := float64(principal) * r * factor / (factor - 1)
	return int64(math.Round(emi))
}

// ProcessingFee computes the one-time fee charged at disbursal or top-up.
func ProcessingFee(principal int64, feePct float64) int64 {
	return int64(math.Round(float64(principal) * feePct / 100))
}

// GenerateSchedule produces the full installment schedule for the terms.
// Installments are due one calendar month apart starting one month after
// disbursal, all initially pending. No rounding-residual reconciliation
// against the principal is performed; the final installment equals the
// others.
func GenerateSchedule(t Terms) ([]ScheduleEntry, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	emi := MonthlyEMI(t.Principal, t.AnnualRatePct, t.TenureMonths)
	schedule := make([]ScheduleEntry, 0, t.TenureMonths)
	for i := 1; i <= t.TenureMonths; i++ {
		schedule = append(schedule, ScheduleEntry{
			Number:  i,
			DueDate: t.DisbursedAt.AddDate(0, i, 0),
			Amount:  emi,
			Status:  StatusPending,
		})
	}
	return schedule, nil
}

// EstimatedInterest approximates the interest component of the given
// installment as outstanding principal times the monthly rate, with the
// outstanding balance reduced straight-line over the tenure. This is the
// estimate used for profit attribution, not the schedule's true
// interest/principal split.
func (l *Loan) EstimatedInterest(installment int) int64 {
	r := MonthlyRate(l.AnnualRatePct)
	if r == 0 || l.TenureMonths < 1 || installment < 1 {
		return 0
	}
	perInstallment := float64(l.Principal) / float64(l.TenureMonths)
	outstanding := float64(l.Principal) - float64(installment-1)*perInstallment
	if outstanding < 0 {
		outstanding = 0
	}
	return int64(math.Round(outstanding * r))
}
