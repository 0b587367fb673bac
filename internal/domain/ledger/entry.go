// Package ledger derives a chronological signed cash ledger from the
// independently-stored loan, receipt, partner, expense, and foreclosure
// records. Nothing in this package is persisted; the ledger is recomputed
// from its sources on every request.
package ledger

import (
	"fmt"
	"time"
)

// EntryType is the sign of a ledger entry. Money received by the business
// is a credit, money paid out is a debit.
type EntryType string

const (
	TypeCredit EntryType = "CREDIT"
	TypeDebit  EntryType = "DEBIT"
)

// Category classifies the source of a ledger entry.
type Category string

const (
	CategoryLoan        Category = "LOAN"
	CategoryEMI         Category = "EMI"
	CategoryFee         Category = "FEE"
	CategoryPartner     Category = "PARTNER"
	CategoryExpense     Category = "EXPENSE"
	CategoryForeclosure Category = "FORECLOSURE"
)

// Entry is one derived ledger line.
type Entry struct {
	Date        time.Time `json:"date"`
	Particulars string    `json:"particulars"`
	Type        EntryType `json:"type"`
	Category    Category  `json:"category"`
	Amount      int64     `json:"amount"`
	CustomerID  string    `json:"customer_id,omitempty"`
}

// Signed returns the amount with its cash-flow sign applied.
func (e Entry) Signed() int64 {
	if e.Type == TypeDebit {
		return -e.Amount
	}
	return e.Amount
}

// Month identifies a calendar month.
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Before reports whether m precedes other.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Monthly is one month's bucket of the ledger with carried balances.
// The closing balance of a month always equals the opening balance of
// the next, including across months with no entries.
type Monthly struct {
	Month          Month   `json:"month"`
	OpeningBalance int64   `json:"opening_balance"`
	Entries        []Entry `json:"entries"`
	ClosingBalance int64   `json:"closing_balance"`
}

// StatementLine is a ledger entry with the running balance after it.
type StatementLine struct {
	Entry
	Balance int64 `json:"balance"`
}

// Statement is a closed date-range view of the ledger. The opening
// balance is the sum of all signed entries strictly before From.
type Statement struct {
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	OpeningBalance int64           `json:"opening_balance"`
	Lines          []StatementLine `json:"lines"`
	ClosingBalance int64           `json:"closing_balance"`
}
