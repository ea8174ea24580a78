package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parkspot/service-booking/internal/application"
	"github.com/parkspot/service-booking/internal/clients"
	"github.com/parkspot/service-booking/internal/config"
	bookingDomain "github.com/parkspot/service-booking/internal/domain/booking"
	bookingEvents "github.com/parkspot/service-booking/internal/events"
	"github.com/parkspot/service-booking/internal/handler"
	"github.com/parkspot/service-booking/internal/platform/database"
	"github.com/parkspot/service-booking/internal/platform/health"
	"github.com/parkspot/service-booking/internal/platform/kafka"
	"github.com/parkspot/service-booking/internal/platform/logger"
	"github.com/parkspot/service-booking/internal/platform/metrics"
	"github.com/parkspot/service-booking/internal/platform/middleware"
	"github.com/parkspot/service-booking/internal/platform/tracing"
	"github.com/parkspot/service-booking/internal/qrcode"
	"github.com/parkspot/service-booking/internal/repository"
	"github.com/parkspot/service-booking/internal/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const serviceName = "service-booking"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing is a no-op unless an OTLP endpoint is configured
	shutdownTracing, err := tracing.Init(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	// Connect to database
	db, err := database.Connect(database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := db.AutoMigrate(&repository.BookingModel{}); err != nil {
		log.Fatal("failed to run auto-migration", zap.Error(err))
	}
	log.Info("database migration completed")

	// Remote collaborators
	inventoryConn, err := clients.Dial(cfg.Clients.InventoryAddr)
	if err != nil {
		log.Fatal("failed to create inventory client", zap.Error(err))
	}
	defer func() { _ = inventoryConn.Close() }()

	usersConn, err := clients.Dial(cfg.Clients.UsersAddr)
	if err != nil {
		log.Fatal("failed to create users client", zap.Error(err))
	}
	defer func() { _ = usersConn.Close() }()

	notificationsConn, err := clients.Dial(cfg.Clients.NotificationsAddr)
	if err != nil {
		log.Fatal("failed to create notifications client", zap.Error(err))
	}
	defer func() { _ = notificationsConn.Close() }()

	location, err := time.LoadLocation(cfg.Booking.NotifyTimezone)
	if err != nil {
		log.Fatal("invalid notification timezone", zap.Error(err))
	}

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	sagaMetrics := metrics.NewSagaMetrics(registry)

	// Initialize application service
	bookingService := application.NewBookingService(
		repository.NewGormBookingRepository(db),
		bookingDomain.NewHalfHourPricingStrategy(cfg.Booking.AmountPerHalfHour),
		application.Collaborators{
			Inventory: clients.NewInventoryClient(inventoryConn, cfg.Clients.Timeout),
			Directory: clients.NewDirectoryClient(usersConn, cfg.Clients.Timeout),
			Notifier:  clients.NewNotifierClient(notificationsConn, cfg.Clients.Timeout),
			Tokens:    token.NewJWTIssuer(cfg.JWTConfig.Secret, cfg.JWTConfig.TTL),
			Codes:     qrcode.NewEncoder(0),
		},
		kafkaProducer,
		application.Options{
			CheckoutURL: cfg.Booking.CheckoutURL,
			Location:    location,
			Metrics:     sagaMetrics,
		},
		log,
	)

	// Initialize and start payment event consumer in a goroutine
	groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
	paymentConsumer := bookingEvents.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		bookingService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))

	// Register health check and metrics routes
	health.NewHandler(db, serviceName).RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Register routes
	handler.NewBookingHandler(bookingService).RegisterRoutes(router)
	handler.NewAdminBookingHandler(bookingService).RegisterRoutes(router)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}
