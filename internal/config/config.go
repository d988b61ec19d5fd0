package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the SkillSwap backend
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Redis      RedisConfig
	Gateway    GatewayConfig
	Identity   IdentityConfig
	Ledger     LedgerConfig
	Booking    BookingConfig
	Escalation EscalationConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	ConnectRetries int
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPPort        string
	ShutdownTimeout time.Duration
}

// RedisConfig holds the Redis connection for the event publisher
type RedisConfig struct {
	URL     string
	Enabled bool
}

// GatewayConfig holds payment gateway configuration
type GatewayConfig struct {
	BaseURL     string
	MerchantID  string
	CallbackURL string
	FrontendURL string
	// Price of one credit in the gateway's minor currency unit.
	CreditPrice string
}

// IdentityConfig holds identity-provider token validation settings
type IdentityConfig struct {
	JWTSecret string
	Issuer    string
}

// LedgerConfig holds credit economy constants
type LedgerConfig struct {
	SignupBonus    int64
	SkillCoinRate  int64
	WelcomeMessage string
}

// BookingConfig holds booking timer settings
type BookingConfig struct {
	ReminderLead    time.Duration
	AutoDeleteDelay time.Duration
}

// EscalationConfig holds escalation engine settings
type EscalationConfig struct {
	// Channel the publisher uses for escalation events.
	EventChannel string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnvInt("DB_PORT", 3306),
			User:           getEnv("DB_USER", "root"),
			Password:       getEnv("DB_PASSWORD", ""),
			Database:       getEnv("DB_DATABASE", "skillswap"),
			ConnectRetries: getEnvInt("DB_CONNECT_RETRIES", 5),
		},
		Server: ServerConfig{
			HTTPPort:        getEnv("HTTP_PORT", "8080"),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Redis: RedisConfig{
			URL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
			Enabled: getEnv("REDIS_ENABLED", "true") == "true",
		},
		Gateway: GatewayConfig{
			BaseURL:     getEnv("GATEWAY_BASE_URL", "https://pay.example.com"),
			MerchantID:  getEnv("GATEWAY_MERCHANT_ID", ""),
			CallbackURL: getEnv("GATEWAY_CALLBACK_URL", "http://localhost:8080/api/payments/callback"),
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
			CreditPrice: getEnv("GATEWAY_CREDIT_PRICE", "1.00"),
		},
		Identity: IdentityConfig{
			JWTSecret: getEnv("IDENTITY_JWT_SECRET", ""),
			Issuer:    getEnv("IDENTITY_ISSUER", "skillswap-identity"),
		},
		Ledger: LedgerConfig{
			SignupBonus:    int64(getEnvInt("SIGNUP_BONUS_CREDITS", 300)),
			SkillCoinRate:  int64(getEnvInt("SKILLCOIN_RATE", 1000)),
			WelcomeMessage: getEnv("WELCOME_MESSAGE", "Welcome to SkillSwap! You received 300 credits to get started."),
		},
		Booking: BookingConfig{
			ReminderLead:    getEnvDuration("REMINDER_LEAD", 10*time.Minute),
			AutoDeleteDelay: getEnvDuration("AUTO_DELETE_DELAY", 5*time.Minute),
		},
		Escalation: EscalationConfig{
			EventChannel: getEnv("ESCALATION_EVENT_CHANNEL", "suspicious-activity"),
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
