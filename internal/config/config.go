package config

import (
	"os"
	"strconv"
	"time"

	"clabs/internal/cache"
	"clabs/internal/database"
	"clabs/internal/external"
	"clabs/internal/messaging"
)

// Config содержит конфигурацию приложения
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// InboxBackupTimeout bounds the detached write of the registration
	// backup copy into the contact inbox.
	InboxBackupTimeout time.Duration

	Admin AdminConfig

	Database      database.Config
	NATS          messaging.Config
	Razorpay      external.RazorpayConfig
	Valkey        cache.Config
	Elasticsearch ElasticsearchConfig
}

// AdminConfig holds the Basic credentials guarding /api/admin routes.
// Empty credentials disable the admin routes.
type AdminConfig struct {
	Username string
	Password string
}

func (a AdminConfig) Enabled() bool {
	return a.Username != "" && a.Password != ""
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		RequestTimeout:     time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,
		InboxBackupTimeout: time.Duration(getEnvInt("INBOX_BACKUP_TIMEOUT_SEC", 10)) * time.Second,

		Admin: AdminConfig{
			Username: os.Getenv("ADMIN_USERNAME"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},

		Database: database.Config{
			URL:                os.Getenv("DATABASE_URL"),
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "clabs"),
			Password:           getEnv("DB_PASSWORD", "clabs"),
			DBName:             getEnv("DB_NAME", "clabs"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       os.Getenv("NATS_URL"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "clabs"),
			ClientID:  getEnv("NATS_CLIENT_ID", "clabs-api"),
		},

		Razorpay: external.RazorpayConfig{
			BaseURL:         getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
			KeyID:           os.Getenv("RAZORPAY_KEY_ID"),
			KeySecret:       os.Getenv("RAZORPAY_KEY_SECRET"),
			WebhookSecret:   os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
			DefaultCurrency: getEnv("DEFAULT_CURRENCY", "INR"),
			Timeout:         time.Duration(getEnvInt("RAZORPAY_TIMEOUT_SEC", 30)) * time.Second,
		},

		Valkey: cache.Config{
			Addr:           os.Getenv("VALKEY_ADDR"),
			Password:       os.Getenv("VALKEY_PASSWORD"),
			DB:             getEnvInt("VALKEY_DB", 0),
			IdempotencyTTL: time.Duration(getEnvInt("ORDER_IDEMPOTENCY_TTL_MIN", 24*60)) * time.Minute,
		},

		Elasticsearch: LoadElasticsearchConfig(),
	}
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
