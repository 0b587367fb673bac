package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/microfin-loan-engine/internal/config"
)

// ReceiptIssued is the event published after a payment collection commits.
// External renderers and notifiers consume it; the engine never reads it
// back.
type ReceiptIssued struct {
	ReceiptNumber     int64     `json:"receipt_number"`
	CompanyID         string    `json:"company_id"`
	LoanID            string    `json:"loan_id"`
	CustomerID        string    `json:"customer_id"`
	CustomerName      string    `json:"customer_name"`
	InstallmentNumber int       `json:"installment_number"`
	AmountPaid        int64     `json:"amount_paid"`
	IsExtraPayment    bool      `json:"is_extra_payment"`
	ExtraAmount       int64     `json:"extra_amount"`
	PaidAt            time.Time `json:"paid_at"`
}

// ReceiptEventProducer publishes receipt-issued events to Kafka.
type ReceiptEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewReceiptEventProducer creates the producer and ensures the topic exists.
func NewReceiptEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*ReceiptEventProducer, error) {
	if cfg.ReceiptTopic == "" {
		return nil, fmt.Errorf("kafka receipt topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for receipt event producer: %w", err)
	}
	defer conn.Close()

	if err := createKafkaTopicIfNotExists(conn, cfg.ReceiptTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure receipt topic %s exists: %w", cfg.ReceiptTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.ReceiptTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Receipt events are best-effort; never block a collection result
		WriteTimeout: cfg.WriteTimeout,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write receipt events asynchronously", "topic", cfg.ReceiptTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote receipt events asynchronously", "topic", cfg.ReceiptTopic, "count", len(messages))
			}
		},
	}

	return &ReceiptEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.ReceiptTopic,
	}, nil
}

func (p *ReceiptEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish receipt event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish receipt event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published receipt event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *ReceiptEventProducer) Close() error {
	p.logger.Info("Closing receipt event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
