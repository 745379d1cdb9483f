package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Redis       RedisConfig
	Gateway     GatewayConfig
	Mail        MailConfig
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// GatewayConfig is used to call the hosted payment gateway (Paymee)
type GatewayConfig struct {
	BaseURL   string // e.g. https://sandbox.paymee.tn/api/v1; empty disables the gateway path
	APIKey    string
	ReturnURL string // storefront URL the gateway redirects back to
	Timeout   time.Duration
}

// MailConfig is used for fire-and-forget transactional email via SendGrid
type MailConfig struct {
	SendGridKey string // empty disables outbound email (logged only)
	FromAddress string
	FromName    string
	AdminEmail  string // recipient of new-order alerts
}

func Load() (*Config, error) {
	// .env is optional; env vars always win
	_ = godotenv.Load()

	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("GATEWAY_TIMEOUT_SECONDS", 10)
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "ghalinino"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrViper("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrViper("REDIS_PASSWORD", ""),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Gateway: GatewayConfig{
			BaseURL:   strings.TrimSpace(getEnvOrViper("GATEWAY_BASE_URL", "")),
			APIKey:    strings.TrimSpace(getEnvOrViper("GATEWAY_API_KEY", "")),
			ReturnURL: strings.TrimSpace(getEnvOrViper("GATEWAY_RETURN_URL", "")),
			Timeout:   time.Duration(viper.GetInt("GATEWAY_TIMEOUT_SECONDS")) * time.Second,
		},
		Mail: MailConfig{
			SendGridKey: strings.TrimSpace(getEnvOrViper("SENDGRID_API_KEY", "")),
			FromAddress: getEnvOrViper("MAIL_FROM_ADDRESS", "no-reply@ghalinino.tn"),
			FromName:    getEnvOrViper("MAIL_FROM_NAME", "Ghalinino"),
			AdminEmail:  strings.TrimSpace(getEnvOrViper("ADMIN_EMAIL", "")),
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	if cfg.Gateway.Timeout <= 0 {
		cfg.Gateway.Timeout = 10 * time.Second
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
