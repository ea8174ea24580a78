package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds the broker list and consumer group prefix.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// ClientsConfig holds the addresses of the remote collaborators.
type ClientsConfig struct {
	InventoryAddr     string
	UsersAddr         string
	NotificationsAddr string
	Timeout           time.Duration
}

// JWTConfig holds the settings for checkout access tokens.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// BookingConfig holds the business settings of the lifecycle engine.
type BookingConfig struct {
	CheckoutURL       string
	AmountPerHalfHour int64
	NotifyTimezone    string
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port         string
	AppEnv       string
	OTLPEndpoint string
	DBConfig     DatabaseConfig
	KafkaConfig  KafkaConfig
	Clients      ClientsConfig
	JWTConfig    JWTConfig
	Booking      BookingConfig
}

// Load reads configuration from environment variables prefixed with BOOKING_.
// A .env file in the working directory is loaded first when present.
func Load() (*ServiceConfig, error) {
	_ = godotenv.Load()
	return load(newViper("BOOKING"))
}

func newViper(prefix string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", ":8004")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "bookings")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "parking-")
	v.SetDefault("INVENTORY_GRPC_ADDR", "localhost:50052")
	v.SetDefault("USERS_GRPC_ADDR", "localhost:8089")
	v.SetDefault("NOTIFICATIONS_GRPC_ADDR", "localhost:50054")
	v.SetDefault("RPC_TIMEOUT", "5s")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("CHECKOUT_URL", "http://localhost:3000/checkout")
	v.SetDefault("AMOUNT_PER_HALF_HOUR", 1000)
	v.SetDefault("NOTIFY_TIMEZONE", "America/Santiago")
	return v
}

func load(v *viper.Viper) (*ServiceConfig, error) {
	cfg := &ServiceConfig{
		Port:         v.GetString("SERVICE_PORT"),
		AppEnv:       v.GetString("APP_ENV"),
		OTLPEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		DBConfig: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		Clients: ClientsConfig{
			InventoryAddr:     v.GetString("INVENTORY_GRPC_ADDR"),
			UsersAddr:         v.GetString("USERS_GRPC_ADDR"),
			NotificationsAddr: v.GetString("NOTIFICATIONS_GRPC_ADDR"),
			Timeout:           v.GetDuration("RPC_TIMEOUT"),
		},
		JWTConfig: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			TTL:    v.GetDuration("JWT_TTL"),
		},
		Booking: BookingConfig{
			CheckoutURL:       v.GetString("CHECKOUT_URL"),
			AmountPerHalfHour: v.GetInt64("AMOUNT_PER_HALF_HOUR"),
			NotifyTimezone:    v.GetString("NOTIFY_TIMEZONE"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ServiceConfig) validate() error {
	var errs []error
	if c.JWTConfig.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Booking.AmountPerHalfHour <= 0 {
		errs = append(errs, fmt.Errorf("AMOUNT_PER_HALF_HOUR must be positive, got %d", c.Booking.AmountPerHalfHour))
	}
	if c.Booking.CheckoutURL == "" {
		errs = append(errs, errors.New("CHECKOUT_URL is required"))
	}
	if len(c.KafkaConfig.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required"))
	}
	if c.Clients.Timeout <= 0 {
		errs = append(errs, errors.New("RPC_TIMEOUT must be positive"))
	}
	if _, err := time.LoadLocation(c.Booking.NotifyTimezone); err != nil {
		errs = append(errs, fmt.Errorf("NOTIFY_TIMEZONE: %w", err))
	}
	return errors.Join(errs...)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
