// Package mongo provides document-store implementations of the loan and
// receipt repositories. Loans embed their schedule so a collection can
// mutate the schedule, counter, and receipt inside one transaction.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/microfin-loan-engine/internal/domain/loan"
)

const (
	// LoanCollectionName is the name of the loan collection in MongoDB
	LoanCollectionName = "loans"
)

// LoanRepository implements the loan.Repository interface for MongoDB
type LoanRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewLoanRepository creates a new MongoDB loan repository
func NewLoanRepository(logger *slog.Logger, db *mongo.Database) loan.Repository {
	return &LoanRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new loan with its full schedule.
func (r *LoanRepository) Create(ctx context.Context, l *loan.Loan) error {
	collection := r.db.Collection(LoanCollectionName)

	if _, err := collection.InsertOne(ctx, l); err != nil {
		r.logger.Error("Failed to create loan",
			"loan_id", l.ID,
			"company_id", l.CompanyID,
			"error", err)
		return fmt.Errorf("failed to create loan: %w", err)
	}

	return nil
}

// GetByID retrieves a loan scoped to its owning company.
// Returns ErrLoanNotFound if no such loan exists for the company.
func (r *LoanRepository) GetByID(ctx context.Context, companyID, loanID string) (*loan.Loan, error) {
	collection := r.db.Collection(LoanCollectionName)

	filter := bson.M{"_id": loanID, "company_id": companyID}
	var l loan.Loan
	err := collection.FindOne(ctx, filter).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, loan.ErrLoanNotFound{LoanID: loanID}
		}
		r.logger.Error("Failed to get loan",
			"loan_id", loanID,
			"error", err)
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	return &l, nil
}

// ListByCompany retrieves all loans of a company ordered by disbursal date.
func (r *LoanRepository) ListByCompany(ctx context.Context, companyID string) ([]*loan.Loan, error) {
	return r.list(ctx, bson.M{"company_id": companyID})
}

// ListForeclosed retrieves the company's loans with a received foreclosure
// settlement.
func (r *LoanRepository) ListForeclosed(ctx context.Context, companyID string) ([]*loan.Loan, error) {
	return r.list(ctx, bson.M{"company_id": companyID, "foreclosure.received": true})
}

func (r *LoanRepository) list(ctx context.Context, filter bson.M) ([]*loan.Loan, error) {
	collection := r.db.Collection(LoanCollectionName)

	opts := options.Find().SetSort(bson.M{"disbursed_at": 1})
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list loans", "filter", fmt.Sprintf("%v", filter), "error", err)
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer cursor.Close(ctx)

	var loans []*loan.Loan
	if err := cursor.All(ctx, &loans); err != nil {
		r.logger.Error("Failed to decode loans", "error", err)
		return nil, fmt.Errorf("failed to decode loans: %w", err)
	}

	return loans, nil
}

// Update replaces the stored loan document. Used for top-ups and
// foreclosure records; the schedule itself is mutated only through
// MarkInstallmentPaid.
func (r *LoanRepository) Update(ctx context.Context, l *loan.Loan) error {
	collection := r.db.Collection(LoanCollectionName)

	l.UpdatedAt = time.Now()
	filter := bson.M{"_id": l.ID, "company_id": l.CompanyID}
	result, err := collection.ReplaceOne(ctx, filter, l)
	if err != nil {
		r.logger.Error("Failed to update loan", "loan_id", l.ID, "error", err)
		return fmt.Errorf("failed to update loan: %w", err)
	}

	if result.MatchedCount == 0 {
		return loan.ErrLoanNotFound{LoanID: l.ID}
	}

	return nil
}

// MarkInstallmentPaid flips exactly one pending schedule entry to paid,
// recording the payment details. The filter matches only a pending entry,
// so a concurrent collection that already settled the installment makes
// this a no-op; that case is reported as ErrAlreadyPaid after confirming
// the loan itself exists.
func (r *LoanRepository) MarkInstallmentPaid(ctx context.Context, companyID, loanID string, number int, paidAt time.Time, method string, amountPaid int64, remark string) error {
	collection := r.db.Collection(LoanCollectionName)

	filter := bson.M{
		"_id":        loanID,
		"company_id": companyID,
		"schedule": bson.M{"$elemMatch": bson.M{
			"number": number,
			"status": loan.StatusPending,
		}},
	}
	update := bson.M{"$set": bson.M{
		"schedule.$.status":         loan.StatusPaid,
		"schedule.$.paid_at":        paidAt,
		"schedule.$.payment_method": method,
		"schedule.$.paid_amount":    amountPaid,
		"schedule.$.remark":         remark,
		"updated_at":                time.Now(),
	}}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to mark installment paid",
			"loan_id", loanID,
			"installment", number,
			"error", err)
		return fmt.Errorf("failed to mark installment paid: %w", err)
	}

	if result.MatchedCount == 0 {
		if _, err := r.GetByID(ctx, companyID, loanID); err != nil {
			return err
		}
		return loan.ErrAlreadyPaid{LoanID: loanID, Number: number}
	}

	return nil
}
