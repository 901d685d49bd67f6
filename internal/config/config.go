package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// HTTP
	HTTPPort        int           `env:"HTTP_PORT" default:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
	RateLimitRPS    float64       `env:"RATE_LIMIT_RPS" default:"10"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST" default:"20"`

	// Database
	DatabaseURL    string `env:"DATABASE_URL" required:"true"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" default:"10"`

	// Authentication
	JWTSecret      string        `env:"JWT_SECRET" required:"true"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" default:"24h"`

	// Confirmation codes
	ConfirmationSecret   string        `env:"CONFIRMATION_SECRET"`
	ConfirmationTokenTTL time.Duration `env:"CONFIRMATION_TOKEN_TTL" default:"72h"`
	ConfirmMaxAttempts   int           `env:"CONFIRM_MAX_ATTEMPTS" default:"5"`
	ConfirmAttemptWindow time.Duration `env:"CONFIRM_ATTEMPT_WINDOW" default:"15m"`

	// Redis (attempt throttling); empty URL disables it
	RedisURL      string `env:"REDIS_URL"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Mail
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" default:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM" default:"registration@yamdb.local"`

	// Monitoring
	PrometheusEnabled bool `env:"PROMETHEUS_ENABLED" default:"false"`

	// Development
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// a missing .env is fine, system env vars still apply
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Warning: .env file not loaded: %v\n", err)
	}

	config := &Config{}

	loaders := []func() error{
		func() error { return loadEnvString(&config.GoEnv, "GO_ENV", "development") },

		func() error { return loadEnvInt(&config.HTTPPort, "HTTP_PORT", 8080) },
		func() error { return loadEnvDuration(&config.ShutdownTimeout, "SHUTDOWN_TIMEOUT", 10*time.Second) },
		func() error { return loadEnvFloat(&config.RateLimitRPS, "RATE_LIMIT_RPS", 10) },
		func() error { return loadEnvInt(&config.RateLimitBurst, "RATE_LIMIT_BURST", 20) },

		func() error { return loadEnvStringRequired(&config.DatabaseURL, "DATABASE_URL") },
		func() error { return loadEnvInt(&config.DBMaxOpenConns, "DB_MAX_OPEN_CONNS", 10) },

		func() error { return loadEnvStringRequired(&config.JWTSecret, "JWT_SECRET") },
		func() error { return loadEnvDuration(&config.AccessTokenTTL, "ACCESS_TOKEN_TTL", 24*time.Hour) },

		func() error { return loadEnvString(&config.ConfirmationSecret, "CONFIRMATION_SECRET", "") },
		func() error {
			return loadEnvDuration(&config.ConfirmationTokenTTL, "CONFIRMATION_TOKEN_TTL", 72*time.Hour)
		},
		func() error { return loadEnvInt(&config.ConfirmMaxAttempts, "CONFIRM_MAX_ATTEMPTS", 5) },
		func() error {
			return loadEnvDuration(&config.ConfirmAttemptWindow, "CONFIRM_ATTEMPT_WINDOW", 15*time.Minute)
		},

		func() error { return loadEnvString(&config.RedisURL, "REDIS_URL", "") },
		func() error { return loadEnvString(&config.RedisPassword, "REDIS_PASSWORD", "") },

		func() error { return loadEnvString(&config.SMTPHost, "SMTP_HOST", "") },
		func() error { return loadEnvInt(&config.SMTPPort, "SMTP_PORT", 587) },
		func() error { return loadEnvString(&config.SMTPUsername, "SMTP_USERNAME", "") },
		func() error { return loadEnvString(&config.SMTPPassword, "SMTP_PASSWORD", "") },
		func() error { return loadEnvString(&config.MailFrom, "MAIL_FROM", "registration@yamdb.local") },

		func() error { return loadEnvBool(&config.PrometheusEnabled, "PROMETHEUS_ENABLED", false) },

		func() error { return loadEnvString(&config.LogLevel, "LOG_LEVEL", "info") },
		func() error { return loadEnvString(&config.LogFormat, "LOG_FORMAT", "text") },
	}
	for _, load := range loaders {
		if err := load(); err != nil {
			return nil, err
		}
	}

	if config.ConfirmationSecret == "" {
		config.ConfirmationSecret = config.JWTSecret
	}
	return config, nil
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) error {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringRequired(target *string, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return fmt.Errorf("required environment variable %s is not set", key)
	}
	*target = value
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvFloat(target *float64, key string, defaultValue float64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvBool(target *bool, key string, defaultValue bool) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errors = append(errors, "HTTP_PORT must be between 1 and 65535")
	}
	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		errors = append(errors, "SMTP_PORT must be between 1 and 65535")
	}
	if c.DBMaxOpenConns < 1 {
		errors = append(errors, "DB_MAX_OPEN_CONNS must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		errors = append(errors, "RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.ConfirmMaxAttempts < 1 {
		errors = append(errors, "CONFIRM_MAX_ATTEMPTS must be positive")
	}
	if c.ConfirmationTokenTTL <= 0 || c.AccessTokenTTL <= 0 {
		errors = append(errors, "token TTLs must be positive")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	// HS256 keys shorter than the hash output are weak
	if len(c.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET should be at least 32 characters long")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// Helper function to check if slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
