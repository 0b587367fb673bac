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

	"github.com/microfin-loan-engine/internal/domain/receipt"
)

const (
	// ReceiptCollectionName is the name of the receipt collection in MongoDB
	ReceiptCollectionName = "receipts"

	// CounterCollectionName holds one sequence document per company
	CounterCollectionName = "receipt_counters"
)

// ReceiptRepository implements the receipt.Repository interface for MongoDB
type ReceiptRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewReceiptRepository creates a new MongoDB receipt repository
func NewReceiptRepository(logger *slog.Logger, db *mongo.Database) receipt.Repository {
	return &ReceiptRepository{
		db:     db,
		logger: logger,
	}
}

// NextNumber increments and returns the company's receipt sequence. Called
// inside the collection transaction, the increment commits together with
// the receipt insert, which keeps the sequence gapless.
func (r *ReceiptRepository) NextNumber(ctx context.Context, companyID string) (int64, error) {
	collection := r.db.Collection(CounterCollectionName)

	filter := bson.M{"_id": companyID}
	update := bson.M{"$inc": bson.M{"seq": int64(1)}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	if err := collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&counter); err != nil {
		r.logger.Error("Failed to advance receipt counter",
			"company_id", companyID,
			"error", err)
		return 0, fmt.Errorf("failed to advance receipt counter: %w", err)
	}

	return counter.Seq, nil
}

// Create stores an issued receipt. Receipts are immutable; there is no
// update path.
func (r *ReceiptRepository) Create(ctx context.Context, rcpt *receipt.Receipt) error {
	collection := r.db.Collection(ReceiptCollectionName)

	if _, err := collection.InsertOne(ctx, rcpt); err != nil {
		r.logger.Error("Failed to create receipt",
			"receipt_number", rcpt.Number,
			"loan_id", rcpt.LoanID,
			"error", err)
		return fmt.Errorf("failed to create receipt: %w", err)
	}

	return nil
}

// GetByNumber retrieves a receipt by its per-company sequence number.
func (r *ReceiptRepository) GetByNumber(ctx context.Context, companyID string, number int64) (*receipt.Receipt, error) {
	collection := r.db.Collection(ReceiptCollectionName)

	filter := bson.M{"company_id": companyID, "number": number}
	var rcpt receipt.Receipt
	err := collection.FindOne(ctx, filter).Decode(&rcpt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, receipt.ErrReceiptNotFound{CompanyID: companyID, Number: number}
		}
		r.logger.Error("Failed to get receipt",
			"company_id", companyID,
			"receipt_number", number,
			"error", err)
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	return &rcpt, nil
}

// ListByCompany retrieves all receipts of a company ordered by payment date.
func (r *ReceiptRepository) ListByCompany(ctx context.Context, companyID string) ([]*receipt.Receipt, error) {
	return r.list(ctx, bson.M{"company_id": companyID})
}

// ListByMonth retrieves the company's receipts whose payment date falls in
// the given calendar month.
func (r *ReceiptRepository) ListByMonth(ctx context.Context, companyID string, year int, month time.Month) ([]*receipt.Receipt, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	filter := bson.M{
		"company_id": companyID,
		"paid_at":    bson.M{"$gte": start, "$lt": end},
	}
	return r.list(ctx, filter)
}

func (r *ReceiptRepository) list(ctx context.Context, filter bson.M) ([]*receipt.Receipt, error) {
	collection := r.db.Collection(ReceiptCollectionName)

	opts := options.Find().SetSort(bson.M{"paid_at": 1})
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list receipts", "error", err)
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer cursor.Close(ctx)

	var receipts []*receipt.Receipt
	if err := cursor.All(ctx, &receipts); err != nil {
		r.logger.Error("Failed to decode receipts", "error", err)
		return nil, fmt.Errorf("failed to decode receipts: %w", err)
	}

	return receipts, nil
}
