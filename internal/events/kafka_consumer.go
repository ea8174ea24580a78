package events

import (
	"context"
	"fmt"

	"github.com/parkspot/service-booking/internal/application"
	"github.com/parkspot/service-booking/internal/platform/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// BookingConfirmer finishes a checked-out booking.
type BookingConfirmer interface {
	Confirm(ctx context.Context, id uint) application.BookingResult
}

// PaymentEventConsumer listens to payment events and confirms paid bookings.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  BookingConfirmer
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service BookingConfirmer,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, application.TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // logged here; the offset is committed either way
	}

	switch cloudEvent.Type {
	case application.EventPaymentCaptured:
		return c.handlePaymentCaptured(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentCaptured(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt application.PaymentCapturedEvent
	if err := cloudEvent.ParseData(&evt); err != nil || evt.BookingID == 0 {
		c.logger.Error("failed to parse PaymentCapturedEvent data",
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
		return nil // logged here; the offset is committed either way
	}

	c.logger.Info("processing payment captured event",
		zap.Uint("booking_id", evt.BookingID),
		zap.Int64("amount", evt.Amount),
	)

	res := c.service.Confirm(ctx, evt.BookingID)
	if !res.Success {
		c.logger.Error("failed to confirm booking after payment",
			zap.Uint("booking_id", evt.BookingID),
			zap.String("reason", res.Message),
		)
		return fmt.Errorf("confirm booking %d: %w", evt.BookingID, res.Err)
	}

	c.logger.Info("booking confirmed after payment",
		zap.Uint("booking_id", evt.BookingID),
	)
	return nil
}
