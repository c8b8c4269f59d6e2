package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	pkgkafka "github.com/metalofmeat1/telegram-bot-for-selling/pkg/kafka"
	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/logger"
)

// Kafka topic constants for storefront events.
var (
	TopicPaymentConfirmationRequested = pkgkafka.Topic("payment", "confirmation_requested")
)

// Aggregate type constant.
const AggregateTypePaymentConfirmation = "payment_confirmation"

// SourceStorefrontBot identifies events originating from the bot.
const SourceStorefrontBot = "storefront-bot"

// Metadata keys describing the Telegram update that triggered an event.
const (
	MetadataSourceUpdateID = "source_update_id"
	MetadataChatID         = "chat_id"
)

// PaymentConfirmationData is the payload for a payment.confirmation_requested event.
type PaymentConfirmationData struct {
	Token       string `json:"token"`
	UserID      int64  `json:"user_id"`
	Username    string `json:"username,omitempty"`
	CartTotal   string `json:"cart_total"`
	LineCount   int    `json:"line_count"`
	Admins      int    `json:"admins"`
	Couriers    int    `json:"couriers"`
	Delivered   int    `json:"delivered"`
	Undelivered int    `json:"undelivered"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishPaymentConfirmationRequested publishes a payment.confirmation_requested
// event keyed by the confirmation token. The originating update id and chat
// are copied into the envelope metadata when known.
func (p *Producer) PublishPaymentConfirmationRequested(ctx context.Context, correlationID string, data PaymentConfirmationData) error {
	event, err := pkgkafka.NewEvent(TopicPaymentConfirmationRequested, data.Token, AggregateTypePaymentConfirmation, SourceStorefrontBot, data)
	if err != nil {
		return fmt.Errorf("create payment.confirmation_requested event: %w", err)
	}
	if correlationID != "" {
		event.WithCorrelationID(correlationID).WithMetadata(MetadataSourceUpdateID, correlationID)
	}
	if chatID, ok := logger.ChatIDFromContext(ctx); ok {
		event.WithMetadata(MetadataChatID, strconv.FormatInt(chatID, 10))
	}

	if err := p.kafka.Publish(ctx, TopicPaymentConfirmationRequested, event); err != nil {
		return fmt.Errorf("publish payment.confirmation_requested event: %w", err)
	}

	p.logger.DebugContext(ctx, "published payment.confirmation_requested event",
		slog.String("token", data.Token),
		slog.Int64("user_id", data.UserID),
	)

	return nil
}
