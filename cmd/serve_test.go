package cmd

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-parking-payments/app/catalog"
	"github.com/vibast-solutions/ms-go-parking-payments/app/controller"
	"github.com/vibast-solutions/ms-go-parking-payments/app/provider"
	"github.com/vibast-solutions/ms-go-parking-payments/app/repository"
	"github.com/vibast-solutions/ms-go-parking-payments/app/service"
	"github.com/vibast-solutions/ms-go-parking-payments/config"
)

func newTestServerConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	pages := map[string]string{
		"index.html":           "checkout page",
		"success.html":         "success page",
		"cancel.html":          "cancel page",
		"parking-session.html": "session page",
		"app.js":               "console.log('ok')",
	}
	for name, content := range pages {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return &config.Config{App: config.AppConfig{PublicDir: dir, BaseURL: "http://localhost:3000"}}
}

func newTestController() *controller.CheckoutController {
	finalizer := service.NewFinalizer(nil, nil, nil)
	checkoutService := service.NewCheckoutService(
		catalog.Default(),
		repository.NewPendingPaymentRepository(),
		provider.NewRegistry(),
		finalizer,
		"http://localhost:3000",
		time.Hour,
		nil,
	)
	return controller.NewCheckoutController(checkoutService)
}

func TestSetupHTTPServerRoutes(t *testing.T) {
	e := setupHTTPServer(newTestServerConfig(t), newTestController())

	cases := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodGet, "/health", http.StatusOK, `"status":"ok"`},
		{http.MethodGet, "/api/tiers", http.StatusOK, `"id":"1hr"`},
		{http.MethodGet, "/", http.StatusOK, "checkout page"},
		{http.MethodGet, "/success", http.StatusOK, "success page"},
		{http.MethodGet, "/payment-cancel", http.StatusOK, "cancel page"},
		{http.MethodGet, "/parking-session", http.StatusOK, "session page"},
		{http.MethodGet, "/app.js", http.StatusOK, "console.log"},
		{http.MethodPost, "/api/webhook", http.StatusBadRequest, "Webhook Error"},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code != tc.status {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.status, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), tc.body) {
			t.Fatalf("%s %s: expected body to contain %q, got %q", tc.method, tc.path, tc.body, rec.Body.String())
		}
		if rec.Header().Get("X-Request-ID") == "" {
			t.Fatalf("%s %s: expected generated request id", tc.method, tc.path)
		}
	}
}

func TestConfigureLogging(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)

	cfg := &config.Config{Log: config.LogConfig{Level: "debug", Format: "text"}}
	if err := configureLogging(cfg); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", logrus.GetLevel())
	}

	if err := configureLogging(&config.Config{Log: config.LogConfig{Level: "loud", Format: "json"}}); err == nil {
		t.Fatal("expected invalid level error")
	}
	if err := configureLogging(&config.Config{Log: config.LogConfig{Level: "info", Format: "xml"}}); err == nil {
		t.Fatal("expected invalid format error")
	}
}
