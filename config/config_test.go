package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s failed: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		}
	})
}

func TestLoadRequiresWebhookSecretWhenStripeEnabled(t *testing.T) {
	setEnv(t, "STRIPE_SECRET_KEY", "sk_test_123")
	unsetEnv(t, "STRIPE_WEBHOOK_SECRET")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing STRIPE_WEBHOOK_SECRET")
	}
}

func TestLoadRejectsNonPositivePendingTTL(t *testing.T) {
	unsetEnv(t, "STRIPE_SECRET_KEY")
	setEnv(t, "PENDING_PAYMENT_TTL_MINUTES", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero pending ttl")
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"STRIPE_SECRET_KEY", "PAYPAL_CLIENT_ID", "PAYPAL_MODE", "STRIPE_MODE", "HTTP_PORT", "PORT",
		"APP_URL", "MYSQL_DSN", "EMAIL_HOST", "PENDING_PAYMENT_TTL_MINUTES", "PENDING_SWEEP_INTERVAL_MINUTES",
	} {
		unsetEnv(t, key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.HTTP.Port != "3000" {
		t.Fatalf("unexpected default port: %s", cfg.HTTP.Port)
	}
	if cfg.App.BaseURL != "http://localhost:3000" {
		t.Fatalf("unexpected default base url: %s", cfg.App.BaseURL)
	}
	if cfg.PayPal.Mode != ModeSandbox || cfg.Stripe.Mode != ModeSandbox {
		t.Fatalf("expected sandbox modes, got paypal=%s stripe=%s", cfg.PayPal.Mode, cfg.Stripe.Mode)
	}
	if cfg.PayPal.Enabled() || cfg.Stripe.Enabled() || cfg.Mail.Enabled() {
		t.Fatal("expected providers and mail to be disabled without credentials")
	}
	if cfg.Payments.PendingTTL != 3*time.Hour {
		t.Fatalf("unexpected pending ttl: %v", cfg.Payments.PendingTTL)
	}
	if cfg.Jobs.ExpirePendingInterval != 5*time.Minute {
		t.Fatalf("unexpected sweep interval: %v", cfg.Jobs.ExpirePendingInterval)
	}
	if cfg.MySQL.DSN != "" {
		t.Fatalf("expected empty mysql dsn, got %q", cfg.MySQL.DSN)
	}
}

func TestLoadOverrides(t *testing.T) {
	unsetEnv(t, "HTTP_PORT")
	setEnv(t, "PORT", "8181")
	setEnv(t, "APP_URL", "https://parking.example/")
	setEnv(t, "PAYPAL_CLIENT_ID", "client")
	setEnv(t, "PAYPAL_CLIENT_SECRET", "secret")
	setEnv(t, "PAYPAL_MODE", "LIVE")
	setEnv(t, "STRIPE_SECRET_KEY", "sk_live_1")
	setEnv(t, "STRIPE_WEBHOOK_SECRET", "whsec_1")
	setEnv(t, "STRIPE_HTTP_TIMEOUT_SECONDS", "4")
	setEnv(t, "PENDING_PAYMENT_TTL_MINUTES", "45")
	setEnv(t, "PENDING_SWEEP_INTERVAL_MINUTES", "2")
	setEnv(t, "EMAIL_HOST", "smtp.example")
	setEnv(t, "EMAIL_USER", "receipts@parking.example")
	unsetEnv(t, "EMAIL_FROM")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.HTTP.Port != "8181" {
		t.Fatalf("expected PORT fallback, got %s", cfg.HTTP.Port)
	}
	if cfg.App.BaseURL != "https://parking.example" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.App.BaseURL)
	}
	if !cfg.PayPal.Enabled() || cfg.PayPal.Mode != ModeLive {
		t.Fatalf("unexpected paypal config: %+v", cfg.PayPal)
	}
	if !cfg.Stripe.Enabled() || cfg.Stripe.HTTPTimeout != 4*time.Second {
		t.Fatalf("unexpected stripe config: %+v", cfg.Stripe)
	}
	if cfg.Payments.PendingTTL != 45*time.Minute || cfg.Jobs.ExpirePendingInterval != 2*time.Minute {
		t.Fatalf("unexpected pending timings: ttl=%v sweep=%v", cfg.Payments.PendingTTL, cfg.Jobs.ExpirePendingInterval)
	}
	if !cfg.Mail.Enabled() || cfg.Mail.From != "receipts@parking.example" {
		t.Fatalf("expected mail sender to default to EMAIL_USER, got %+v", cfg.Mail)
	}
}
