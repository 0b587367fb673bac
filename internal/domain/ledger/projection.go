package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/microfin-loan-engine/internal/domain/expense"
	"github.com/microfin-loan-engine/internal/domain/loan"
	"github.com/microfin-loan-engine/internal/domain/partner"
	"github.com/microfin-loan-engine/internal/domain/receipt"
)

// Sources are the fetched collections the ledger is projected from. The
// fetches are independent reads; the projection itself is a pure function
// of these slices, so the order in which they were fetched never changes
// the result.
type Sources struct {
	Loans       []*loan.Loan
	Receipts    []*receipt.Receipt
	Partners    []*partner.Partner
	PartnerTxns []partner.Transaction
	Expenses    []*expense.Expense
	Foreclosed  []*loan.Loan
}

// Project maps every source record to its signed ledger entries and sorts
// them by date. Records with a dangling cross-reference (a receipt whose
// loan is gone, a transaction whose partner is gone) are skipped rather
// than aborting the build; the count of skipped records is returned.
func Project(src Sources) ([]Entry, int) {
	entries := make([]Entry, 0, len(src.Receipts)+len(src.Expenses)+len(src.PartnerTxns)+2*len(src.Loans))
	skipped := 0

	loansByID := make(map[string]*loan.Loan, len(src.Loans))
	for _, l := range src.Loans {
		loansByID[l.ID] = l
	}
	partnersByID := make(map[uuid.UUID]*partner.Partner, len(src.Partners))
	for _, p := range src.Partners {
		partnersByID[p.ID] = p
	}

	for _, l := range src.Loans {
		entries = append(entries, Entry{
			Date:        l.DisbursedAt,
			Particulars: "Loan disbursed to " + l.CustomerName,
			Type:        TypeDebit,
			Category:    CategoryLoan,
			Amount:      l.OriginalPrincipal(),
			CustomerID:  l.CustomerID,
		})
		if l.ProcessingFee > 0 {
			entries = append(entries, Entry{
				Date:        l.DisbursedAt,
				Particulars: "Processing fee from " + l.CustomerName,
				Type:        TypeCredit,
				Category:    CategoryFee,
				Amount:      l.ProcessingFee,
				CustomerID:  l.CustomerID,
			})
		}
		// One entry per structured top-up record; the record id is the
		// dedup key, so the same cash movement is never counted twice.
		for _, t := range l.TopUps {
			entries = append(entries, Entry{
				Date:        t.Date,
				Particulars: "Loan top-up to " + l.CustomerName,
				Type:        TypeDebit,
				Category:    CategoryLoan,
				Amount:      t.Amount,
				CustomerID:  l.CustomerID,
			})
			if t.Fee > 0 {
				entries = append(entries, Entry{
					Date:        t.Date,
					Particulars: "Top-up fee from " + l.CustomerName,
					Type:        TypeCredit,
					Category:    CategoryFee,
					Amount:      t.Fee,
					CustomerID:  l.CustomerID,
				})
			}
		}
	}

	for _, r := range src.Receipts {
		if _, ok := loansByID[r.LoanID]; !ok {
			skipped++
			continue
		}
		// The full amount actually paid is credited on the payment date,
		// never the scheduled due date, and never split.
		entries = append(entries, Entry{
			Date:        r.PaidAt,
			Particulars: fmt.Sprintf("EMI %d received from %s", r.InstallmentNumber, r.CustomerName),
			Type:        TypeCredit,
			Category:    CategoryEMI,
			Amount:      r.AmountPaid,
			CustomerID:  r.CustomerID,
		})
	}

	for _, t := range src.PartnerTxns {
		p, ok := partnersByID[t.PartnerID]
		if !ok {
			skipped++
			continue
		}
		entryType := TypeCredit
		particulars := "Investment by " + p.Name
		if t.Type == partner.TypeWithdrawal {
			entryType = TypeDebit
			particulars = "Withdrawal by " + p.Name
		}
		entries = append(entries, Entry{
			Date:        t.Date,
			Particulars: particulars,
			Type:        entryType,
			Category:    CategoryPartner,
			Amount:      t.Amount,
		})
	}

	for _, e := range src.Expenses {
		entries = append(entries, Entry{
			Date:        e.Date,
			Particulars: e.Narration,
			Type:        TypeDebit,
			Category:    CategoryExpense,
			Amount:      e.Amount,
		})
	}

	for _, l := range src.Foreclosed {
		if l.Foreclosure == nil || !l.Foreclosure.Received {
			continue
		}
		entries = append(entries, Entry{
			Date:        l.Foreclosure.SettledAt,
			Particulars: "Foreclosure settlement from " + l.CustomerName,
			Type:        TypeCredit,
			Category:    CategoryForeclosure,
			Amount:      l.Foreclosure.SettlementAmount,
			CustomerID:  l.CustomerID,
		})
	}

	SortEntries(entries)
	return entries, skipped
}

// SortEntries orders entries by date ascending. The sort is stable; same-day
// entries keep their mapping order, which is harmless since monthly and
// running sums are order-independent under addition.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
}

// BuildMonthly buckets sorted entries into calendar months with carried
// balances. Every month from the earliest to the latest entry appears,
// including months with no entries, so balances always carry forward.
func BuildMonthly(entries []Entry) []Monthly {
	if len(entries) == 0 {
		return nil
	}
	SortEntries(entries)

	byMonth := make(map[Month][]Entry)
	for _, e := range entries {
		m := MonthOf(e.Date)
		byMonth[m] = append(byMonth[m], e)
	}

	first := MonthOf(entries[0].Date)
	last := MonthOf(entries[len(entries)-1].Date)

	var months []Monthly
	balance := int64(0)
	for m := first; !last.Before(m); m = m.Next() {
		bucket := Monthly{
			Month:          m,
			OpeningBalance: balance,
			Entries:        byMonth[m],
		}
		for _, e := range bucket.Entries {
			balance += e.Signed()
		}
		bucket.ClosingBalance = balance
		months = append(months, bucket)
	}
	return months
}

// BuildStatement folds entries within [from, to] into a running-balance
// statement. The to bound covers its whole calendar day, so entries
// carrying a wall-clock time on the final day stay in range. The opening
// balance is the sum of all signed entries strictly before from.
func BuildStatement(entries []Entry, from, to time.Time) Statement {
	SortEntries(entries)

	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location()).AddDate(0, 0, 1)

	stmt := Statement{From: from, To: to}
	for _, e := range entries {
		if e.Date.Before(from) {
			stmt.OpeningBalance += e.Signed()
		}
	}

	balance := stmt.OpeningBalance
	for _, e := range entries {
		if e.Date.Before(from) || !e.Date.Before(end) {
			continue
		}
		balance += e.Signed()
		stmt.Lines = append(stmt.Lines, StatementLine{Entry: e, Balance: balance})
	}
	stmt.ClosingBalance = balance
	return stmt
}
