package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Payment  PaymentConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
	Topics  TopicConfig
}

type TopicConfig struct {
	OrderReserved  string
	OrderCompleted string
	OrderReleased  string
}

// PaymentConfig selects and configures the external payment provider.
// Timeout bounds every provider HTTP call; a timed-out call is a provider
// failure, never a success.
type PaymentConfig struct {
	Provider     string // "paypal" or "stripe"
	Timeout      time.Duration
	ReturnURL    string
	PayPalAPIURL string
	PayPalClient string
	PayPalSecret string
	StripeKey    string
	QRSecretKey  string
}

type AuthConfig struct {
	OIDCIssuer string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Username:     getEnv("DB_USERNAME", "ticketly"),
			Password:     getEnv("DB_PASSWORD", "ticketly"),
			Database:     getEnv("DB_NAME", "ticketly"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Enabled: getEnvBool("KAFKA_ENABLED", true),
			Topics: TopicConfig{
				OrderReserved:  getEnv("KAFKA_TOPIC_ORDER_RESERVED", "order-reserved"),
				OrderCompleted: getEnv("KAFKA_TOPIC_ORDER_COMPLETED", "order-completed"),
				OrderReleased:  getEnv("KAFKA_TOPIC_ORDER_RELEASED", "order-released"),
			},
		},
		Payment: PaymentConfig{
			Provider:     getEnv("PAYMENT_PROVIDER", "paypal"),
			Timeout:      time.Duration(getEnvInt("PAYMENT_TIMEOUT_SECONDS", 10)) * time.Second,
			ReturnURL:    getEnv("PAYMENT_RETURN_URL", "http://localhost:8080/api/v1/orders/capture"),
			PayPalAPIURL: getEnv("PAYPAL_API_URL", "https://api-m.sandbox.paypal.com"),
			PayPalClient: getEnv("PAYPAL_CLIENT_ID", ""),
			PayPalSecret: getEnv("PAYPAL_CLIENT_SECRET", ""),
			StripeKey:    getEnv("STRIPE_SECRET_KEY", ""),
			QRSecretKey:  getEnv("QR_SECRET_KEY", "ticketly-dev-secret"),
		},
		Auth: AuthConfig{
			OIDCIssuer: getEnv("OIDC_ISSUER", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
