package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds server configuration.
type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	Database DatabaseConfig
	Auth     AuthConfig
	Payment  PaymentConfig

	RateLimitRPS   int
	RateLimitBurst int

	SeedAdminUsername string
	SeedAdminPassword string
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Driver     string // "postgres" or "sqlite"
	Host       string
	Port       string
	User       string
	Password   string
	Database   string
	SSLMode    string
	SQLitePath string
	LogLevel   string
}

// AuthConfig configures token issuance.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// PaymentConfig configures the external payment gateway.
type PaymentConfig struct {
	Mode         string // "cashfree" or "sandbox"
	BaseURL      string
	ClientID     string
	ClientSecret string
	APIVersion   string
	ReturnURL    string
	Currency     string
}

// Load loads configuration from environment variables. A .env file in the
// working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	logLevel := getEnv("LOG_LEVEL", "info")

	return &Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "release"),
		LogLevel: logLevel,
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			Database:   getEnv("DB_NAME", "warranty"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "warranty.db"),
			LogLevel:   logLevel,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "change-me"),
			TokenTTL:  getDuration("TOKEN_TTL", 24*time.Hour),
		},
		Payment: PaymentConfig{
			Mode:         getEnv("PAYMENT_MODE", "sandbox"),
			BaseURL:      getEnv("PAYMENT_BASE_URL", "https://sandbox.cashfree.com/pg"),
			ClientID:     os.Getenv("PAYMENT_CLIENT_ID"),
			ClientSecret: os.Getenv("PAYMENT_CLIENT_SECRET"),
			APIVersion:   getEnv("PAYMENT_API_VERSION", "2023-08-01"),
			ReturnURL:    os.Getenv("PAYMENT_RETURN_URL"),
			Currency:     getEnv("PAYMENT_CURRENCY", "INR"),
		},
		RateLimitRPS:      getInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst:    getInt("RATE_LIMIT_BURST", 10),
		SeedAdminUsername: getEnv("SEED_ADMIN_USERNAME", "admin"),
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", "admin123"),
	}
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
