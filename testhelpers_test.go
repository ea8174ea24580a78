//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/parkspot/service-booking/internal/application"
	"github.com/parkspot/service-booking/internal/apperr"
	bookingDomain "github.com/parkspot/service-booking/internal/domain/booking"
	bookingEvents "github.com/parkspot/service-booking/internal/events"
	"github.com/parkspot/service-booking/internal/platform/kafka"
	"github.com/parkspot/service-booking/internal/qrcode"
	"github.com/parkspot/service-booking/internal/repository"
	"github.com/parkspot/service-booking/internal/token"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds wired-up booking service components.
type bookingStack struct {
	Service         *application.BookingService
	Consumer        *bookingEvents.PaymentEventConsumer
	Inventory       *memoryInventory
	Notifier        *memoryNotifier
	CleanupProducer func()
}

// memoryInventory is an in-process zones service that tracks reserved spots.
type memoryInventory struct {
	mu       sync.Mutex
	zones    map[uint]bookingDomain.Zone
	reserved map[uint]int
}

func newMemoryInventory() *memoryInventory {
	return &memoryInventory{
		zones: map[uint]bookingDomain.Zone{
			1: {ID: 1, Name: "Centro", TotalSpots: 2},
		},
		reserved: map[uint]int{},
	}
}

func (m *memoryInventory) Reserve(_ context.Context, zoneID uint) (bookingDomain.SpotResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok := m.zones[zoneID]
	if !ok {
		return bookingDomain.SpotResult{}, apperr.NewNotFoundError("Zone", fmt.Sprint(zoneID))
	}
	if z.OccupiedSpots+m.reserved[zoneID] >= z.TotalSpots {
		return bookingDomain.SpotResult{Success: false, Message: "No available parking spots"}, nil
	}
	m.reserved[zoneID]++
	return bookingDomain.SpotResult{Success: true}, nil
}

func (m *memoryInventory) Release(_ context.Context, zoneID uint) (bookingDomain.SpotResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reserved[zoneID]--
	return bookingDomain.SpotResult{Success: true}, nil
}

func (m *memoryInventory) Finalize(ctx context.Context, zoneID uint) (bookingDomain.SpotResult, error) {
	return m.Release(ctx, zoneID)
}

func (m *memoryInventory) GetZone(_ context.Context, zoneID uint) (*bookingDomain.Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok := m.zones[zoneID]
	if !ok {
		return nil, apperr.NewNotFoundError("Zone", fmt.Sprint(zoneID))
	}
	return &z, nil
}

func (m *memoryInventory) GetZones(ctx context.Context, zoneIDs []uint) ([]bookingDomain.Zone, error) {
	var out []bookingDomain.Zone
	for _, id := range zoneIDs {
		if z, err := m.GetZone(ctx, id); err == nil {
			out = append(out, *z)
		}
	}
	return out, nil
}

func (m *memoryInventory) Reserved(zoneID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reserved[zoneID]
}

type memoryDirectory struct{}

func (memoryDirectory) GetUser(_ context.Context, userID uint) (*bookingDomain.User, error) {
	return &bookingDomain.User{ID: userID, Name: "Ana", Email: "ana@example.com"}, nil
}

type memoryNotifier struct {
	mu   sync.Mutex
	sent []bookingDomain.Notification
}

func (m *memoryNotifier) Send(_ context.Context, n bookingDomain.Notification) (bookingDomain.NotificationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
	return bookingDomain.NotificationResult{Success: true}, nil
}

func (m *memoryNotifier) Sent() []bookingDomain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bookingDomain.Notification(nil), m.sent...)
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	// Start PostgreSQL container with log-based wait strategy.
	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_booking sslmode=disable TimeZone=UTC", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(&repository.BookingModel{}))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, application.TopicBookingEvents, application.TopicPaymentEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBookingStack wires up the full booking service stack against in-process collaborators.
func setupBookingStack(t *testing.T, db *gorm.DB, brokers []string) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	inventory := newMemoryInventory()
	notifier := &memoryNotifier{}
	producer := kafka.NewProducer(brokers, logger)
	bookingSvc := application.NewBookingService(
		repository.NewGormBookingRepository(db),
		bookingDomain.NewHalfHourPricingStrategy(1000),
		application.Collaborators{
			Inventory: inventory,
			Directory: memoryDirectory{},
			Notifier:  notifier,
			Tokens:    token.NewJWTIssuer("integration-secret", time.Hour),
			Codes:     qrcode.NewEncoder(128),
		},
		producer,
		application.Options{CheckoutURL: "http://localhost:3000/checkout"},
		logger,
	)

	groupID := fmt.Sprintf("test-booking-%s", uuid.New().String()[:8])
	consumer := bookingEvents.NewPaymentEventConsumer(brokers, groupID, bookingSvc, logger)

	return &bookingStack{
		Service:         bookingSvc,
		Consumer:        consumer,
		Inventory:       inventory,
		Notifier:        notifier,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType, key string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, key, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForBookingStatus polls the bookings table until the status matches.
func waitForBookingStatus(t *testing.T, db *gorm.DB, bookingID uint, expectedStatus string, timeout time.Duration) repository.BookingModel {
	t.Helper()
	var result repository.BookingModel
	require.Eventually(t, func() bool {
		var model repository.BookingModel
		err := db.Where("id = ?", bookingID).First(&model).Error
		if err != nil {
			return false
		}
		if model.Status == expectedStatus {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking did not transition to %s", expectedStatus)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
