package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the service
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	App      AppConfig
	Payment  PaymentConfig
	Upload   UploadConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL string
}

// AppConfig holds application configuration
type AppConfig struct {
	Environment string
	LogLevel    string
	JWTSecret   string
	ClientURL   string
}

// PaymentConfig holds payment provider configuration
type PaymentConfig struct {
	BaseURL       string
	SecretKey     string
	WebhookSecret string
	Currency      string
}

// UploadConfig holds file upload configuration
type UploadConfig struct {
	Dir        string
	MaxSizeMB  int64
	PublicPath string
	ReportsDir string
}

// New creates a new configuration instance. A local .env file is honored
// when present; real environments configure through the process env.
func New() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host: getEnvWithDefault("SERVER_HOST", "0.0.0.0"),
			Port: getEnvWithDefault("SERVER_PORT", "5000"),
		},
		Database: DatabaseConfig{
			Host:     getEnvWithDefault("DB_HOST", "localhost"),
			Port:     getEnvWithDefault("DB_PORT", "5432"),
			User:     getEnvWithDefault("DB_USER", "postgres"),
			Password: getEnvWithDefault("DB_PASSWORD", ""),
			Name:     getEnvWithDefault("DB_NAME", "fashion_mart"),
			SSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnvWithDefault("REDIS_HOST", "localhost"),
			Port:     getEnvWithDefault("REDIS_PORT", "6379"),
			Password: getEnvWithDefault("REDIS_PASSWORD", ""),
			DB:       getEnvAsIntWithDefault("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL: getEnvWithDefault("NATS_URL", "nats://localhost:4222"),
		},
		App: AppConfig{
			Environment: getEnvWithDefault("APP_ENV", "development"),
			LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
			JWTSecret:   getEnvWithDefault("JWT_SECRET", ""),
			ClientURL:   getEnvWithDefault("CLIENT_URL", "http://localhost:3000"),
		},
		Payment: PaymentConfig{
			BaseURL:       getEnvWithDefault("PAYMENT_API_URL", "https://api.stripe.com/v1"),
			SecretKey:     getEnvWithDefault("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnvWithDefault("STRIPE_WEBHOOK_SECRET", ""),
			Currency:      getEnvWithDefault("PAYMENT_CURRENCY", "usd"),
		},
		Upload: UploadConfig{
			Dir:        getEnvWithDefault("UPLOAD_DIR", "uploads"),
			MaxSizeMB:  int64(getEnvAsIntWithDefault("UPLOAD_MAX_SIZE_MB", 5)),
			PublicPath: getEnvWithDefault("UPLOAD_PUBLIC_PATH", "/uploads"),
			ReportsDir: getEnvWithDefault("REPORTS_DIR", "reports"),
		},
	}
}

// DSN builds the postgres connection string.
func (c DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" sslmode=" + c.SSLMode
}

// IsProduction reports whether the service runs in production mode.
func (c AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// getEnvWithDefault gets environment variable with a default fallback
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntWithDefault gets environment variable as integer with default fallback
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
