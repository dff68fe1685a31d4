package cmd

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-parking-payments/app/catalog"
	"github.com/vibast-solutions/ms-go-parking-payments/app/controller"
	"github.com/vibast-solutions/ms-go-parking-payments/app/factory"
	"github.com/vibast-solutions/ms-go-parking-payments/app/mailer"
	"github.com/vibast-solutions/ms-go-parking-payments/app/provider"
	"github.com/vibast-solutions/ms-go-parking-payments/app/repository"
	"github.com/vibast-solutions/ms-go-parking-payments/app/service"
	"github.com/vibast-solutions/ms-go-parking-payments/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the HTTP (Echo) server for the checkout API and the pending payment expiry worker.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, app, cleanup := mustCreateApp()
	defer cleanup()

	e := setupHTTPServer(cfg, controller.NewCheckoutController(app.checkout))

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	var workers sync.WaitGroup
	startWorker(workerCtx, &workers, "expire_pending", cfg.Jobs.ExpirePendingInterval, app.checkout.RunExpirePendingBatch)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}
	stopWorkers()
	workers.Wait()
	app.finalizer.Wait()

	logrus.Info("Server stopped")
}

func setupHTTPServer(cfg *config.Config, checkoutController *controller.CheckoutController) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
				"request_id": v.RequestID,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.BodyLimit("1M"))

	e.GET("/health", checkoutController.Health)

	api := e.Group("/api")
	api.GET("/tiers", checkoutController.ListTiers)
	api.POST("/orders", checkoutController.CreateOrder)
	api.POST("/orders/:orderID/capture", checkoutController.CaptureOrder)
	api.POST("/create-payment-intent", checkoutController.CreatePaymentIntent)
	api.POST("/webhook", checkoutController.HandleWebhook)

	publicDir := cfg.App.PublicDir
	e.Static("/", publicDir)
	e.File("/", filepath.Join(publicDir, "index.html"))
	e.File("/success", filepath.Join(publicDir, "success.html"))
	e.File("/payment-cancel", filepath.Join(publicDir, "cancel.html"))
	e.File("/parking-session", filepath.Join(publicDir, "parking-session.html"))

	return e
}

type application struct {
	checkout  *service.CheckoutService
	finalizer *service.Finalizer
}

func mustCreateApp() (*config.Config, *application, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	var (
		db     *sql.DB
		ledger service.ActivationRecorder
	)
	if cfg.MySQL.DSN != "" {
		db, err = openDatabase(cfg.MySQL, false)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to database")
		}
		ledger = repository.NewActivationRepository(db)
	} else {
		logrus.Info("MYSQL_DSN not set, activation ledger disabled")
	}

	var receipts service.ReceiptSender
	if cfg.Mail.Enabled() {
		receipts = mailer.NewSMTPMailer(mailer.Config{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			Brand:    cfg.App.BrandName,
			Timeout:  cfg.Mail.Timeout,
		})
	} else {
		logrus.Info("EMAIL_HOST not set, receipt emails disabled")
	}

	providers := make([]provider.Provider, 0, 2)
	if cfg.PayPal.Enabled() {
		providers = append(providers, provider.NewPayPalProvider(provider.PayPalConfig{
			ClientID:     cfg.PayPal.ClientID,
			ClientSecret: cfg.PayPal.ClientSecret,
			Live:         cfg.PayPal.Mode == config.ModeLive,
			BrandName:    cfg.App.BrandName,
			HTTPTimeout:  cfg.PayPal.HTTPTimeout,
		}))
		logrus.WithField("mode", cfg.PayPal.Mode).Info("PayPal checkout enabled")
	} else {
		logrus.Warn("PayPal credentials not set, PayPal checkout disabled")
	}
	if cfg.Stripe.Enabled() {
		providers = append(providers, provider.NewStripeProvider(provider.StripeConfig{
			SecretKey:                 cfg.Stripe.SecretKey,
			WebhookSecret:             cfg.Stripe.WebhookSecret,
			SignatureToleranceSeconds: cfg.Stripe.SignatureToleranceSeconds,
			HTTPTimeout:               cfg.Stripe.HTTPTimeout,
		}))
		logrus.WithField("mode", cfg.Stripe.Mode).Info("Card payments enabled")
	} else {
		logrus.Warn("STRIPE_SECRET_KEY not set, card payments disabled")
	}

	finalizer := service.NewFinalizer(ledger, receipts, factory.NewModuleLogger("finalizer"))
	checkoutService := service.NewCheckoutService(
		catalog.Default(),
		repository.NewPendingPaymentRepository(),
		provider.NewRegistry(providers...),
		finalizer,
		cfg.App.BaseURL,
		cfg.Payments.PendingTTL,
		factory.NewModuleLogger("checkout-service"),
	)

	cleanup := func() {
		if db == nil {
			return
		}
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return cfg, &application{checkout: checkoutService, finalizer: finalizer}, cleanup
}
