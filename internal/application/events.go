package application

import (
	"context"
	"time"

	"github.com/parkspot/service-booking/internal/platform/kafka"
	"go.uber.org/zap"
)

// Kafka topics and CloudEvent types produced and consumed by the booking service.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"

	EventBookingCreated    = "booking.created"
	EventBookingCheckedOut = "booking.checked_out"
	EventBookingFinished   = "booking.finished"
	EventPaymentCaptured   = "payment.captured"

	eventSource = "service-booking"
)

// EventPublisher writes CloudEvents to a topic.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// BookingCreatedEvent is published once a Create saga commits.
type BookingCreatedEvent struct {
	BookingID  uint      `json:"booking_id"`
	ZoneID     uint      `json:"zone_id"`
	UserID     uint      `json:"user_id"`
	Plate      string    `json:"plate"`
	StartTime  time.Time `json:"start_time"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingCheckedOutEvent is published once a CheckOut saga commits.
type BookingCheckedOutEvent struct {
	BookingID  uint      `json:"booking_id"`
	ZoneID     uint      `json:"zone_id"`
	UserID     uint      `json:"user_id"`
	FinishTime time.Time `json:"finish_time"`
	Amount     int64     `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingFinishedEvent is published once a Confirm saga commits.
type BookingFinishedEvent struct {
	BookingID  uint      `json:"booking_id"`
	ZoneID     uint      `json:"zone_id"`
	Amount     int64     `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentCapturedEvent is the payload of a payment.captured event.
type PaymentCapturedEvent struct {
	BookingID uint  `json:"booking_id"`
	Amount    int64 `json:"amount"`
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	if s.publisher == nil {
		return
	}

	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.PublishEvent(ctx, topic, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
