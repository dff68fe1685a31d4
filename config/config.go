package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ModeSandbox = "sandbox"
	ModeLive    = "live"
)

type Config struct {
	App      AppConfig
	HTTP     ServerConfig
	Log      LogConfig
	PayPal   PayPalConfig
	Stripe   StripeConfig
	Payments PaymentsConfig
	MySQL    MySQLConfig
	Mail     MailConfig
	Jobs     JobsConfig
}

type AppConfig struct {
	ServiceName string
	BaseURL     string
	BrandName   string
	PublicDir   string
}

type ServerConfig struct {
	Host string
	Port string
}

type LogConfig struct {
	Level  string
	Format string
}

type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	Mode         string
	HTTPTimeout  time.Duration
}

func (c PayPalConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type StripeConfig struct {
	SecretKey                 string
	Mode                      string
	WebhookSecret             string
	SignatureToleranceSeconds int64
	HTTPTimeout               time.Duration
}

func (c StripeConfig) Enabled() bool {
	return c.SecretKey != ""
}

type PaymentsConfig struct {
	PendingTTL time.Duration
}

// MySQLConfig is optional; an empty DSN disables the activation ledger.
type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type MailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

func (c MailConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type JobsConfig struct {
	ExpirePendingInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mailUser := getEnv("EMAIL_USER", "")

	cfg := &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "parking-payments"),
			BaseURL:     strings.TrimRight(getEnv("APP_URL", "http://localhost:3000"), "/"),
			BrandName:   getEnv("APP_BRAND_NAME", "Parking Payment BC"),
			PublicDir:   getEnv("PUBLIC_DIR", "public"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", getEnv("PORT", "3000")),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		PayPal: PayPalConfig{
			ClientID:     getEnv("PAYPAL_CLIENT_ID", ""),
			ClientSecret: getEnv("PAYPAL_CLIENT_SECRET", ""),
			Mode:         getModeEnv("PAYPAL_MODE"),
			HTTPTimeout:  getSecondsEnv("PAYPAL_HTTP_TIMEOUT_SECONDS", 10*time.Second),
		},
		Stripe: StripeConfig{
			SecretKey:                 getEnv("STRIPE_SECRET_KEY", ""),
			Mode:                      getModeEnv("STRIPE_MODE"),
			WebhookSecret:             getEnv("STRIPE_WEBHOOK_SECRET", ""),
			SignatureToleranceSeconds: int64(getIntEnv("STRIPE_SIGNATURE_TOLERANCE_SECONDS", 300)),
			HTTPTimeout:               getSecondsEnv("STRIPE_HTTP_TIMEOUT_SECONDS", 10*time.Second),
		},
		Payments: PaymentsConfig{
			PendingTTL: getMinutesEnv("PENDING_PAYMENT_TTL_MINUTES", 3*time.Hour),
		},
		MySQL: MySQLConfig{
			DSN:             getEnv("MYSQL_DSN", ""),
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Mail: MailConfig{
			Host:     getEnv("EMAIL_HOST", ""),
			Port:     getEnv("EMAIL_PORT", "587"),
			Username: mailUser,
			Password: getEnv("EMAIL_PASSWORD", ""),
			From:     getEnv("EMAIL_FROM", mailUser),
			Timeout:  getSecondsEnv("EMAIL_TIMEOUT_SECONDS", 15*time.Second),
		},
		Jobs: JobsConfig{
			ExpirePendingInterval: getMinutesEnv("PENDING_SWEEP_INTERVAL_MINUTES", 5*time.Minute),
		},
	}

	if cfg.Stripe.Enabled() && cfg.Stripe.WebhookSecret == "" {
		return nil, errors.New("STRIPE_WEBHOOK_SECRET environment variable is required when STRIPE_SECRET_KEY is set")
	}
	if cfg.Payments.PendingTTL <= 0 {
		return nil, errors.New("PENDING_PAYMENT_TTL_MINUTES must be > 0")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getModeEnv(key string) string {
	if strings.EqualFold(getEnv(key, ""), ModeLive) {
		return ModeLive
	}
	return ModeSandbox
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
