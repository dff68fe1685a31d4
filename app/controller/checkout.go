package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-parking-payments/app/factory"
	"github.com/vibast-solutions/ms-go-parking-payments/app/mapper"
	"github.com/vibast-solutions/ms-go-parking-payments/app/provider"
	"github.com/vibast-solutions/ms-go-parking-payments/app/service"
	"github.com/vibast-solutions/ms-go-parking-payments/app/types"
)

const (
	msgInvalidTier         = "Invalid tier selected"
	msgMissingPlate        = "License plate is required"
	msgOrderFailed         = "Failed to create payment order"
	msgIntentFailed        = "Failed to create payment intent"
	msgCaptureFailed       = "Payment capture failed"
	msgCaptureError        = "Failed to capture payment"
	msgCardNotConfigured   = "Card payments are not configured. Please use PayPal."
	msgPayPalNotConfigured = "PayPal payments are not configured. Please use a card."
	msgWebhookSignature    = "Webhook Error: invalid signature"
	msgInvalidRequestBody  = "invalid request body"
	msgInternalServerError = "internal server error"
)

type CheckoutController struct {
	checkoutService *service.CheckoutService
	logger          logrus.FieldLogger
}

func NewCheckoutController(checkoutService *service.CheckoutService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
		logger:          factory.NewModuleLogger("checkout-controller"),
	}
}

func (c *CheckoutController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *CheckoutController) ListTiers(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.ListTiersResponse{Tiers: mapper.TiersToResponse(c.checkoutService.Tiers())})
}

func (c *CheckoutController) CreateOrder(ctx echo.Context) error {
	req, err := types.NewCreateOrderRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, msgInvalidRequestBody)
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.checkoutService.CreateOrder(ctx.Request().Context(), req)
	if err != nil {
		if status, message, ok := initiateClientError(err, msgPayPalNotConfigured); ok {
			return c.writeError(ctx, status, message)
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Create order failed")
		return c.writeDetailedError(ctx, http.StatusInternalServerError, msgOrderFailed, providerDetails(err))
	}

	return ctx.JSON(http.StatusOK, &types.CreateOrderResponse{ID: result.ID, Status: result.Status})
}

func (c *CheckoutController) CaptureOrder(ctx echo.Context) error {
	req, err := types.NewCaptureOrderRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.checkoutService.CaptureOrder(ctx.Request().Context(), req)
	if err != nil {
		var captureErr *service.CaptureFailedError
		switch {
		case errors.As(err, &captureErr):
			return ctx.JSON(http.StatusBadRequest, &types.ErrorResponse{Error: msgCaptureFailed, Status: captureErr.Status})
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrProviderNotConfigured):
			return c.writeError(ctx, http.StatusBadRequest, msgPayPalNotConfigured)
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Capture order failed")
			return c.writeDetailedError(ctx, http.StatusInternalServerError, msgCaptureError, providerDetails(err))
		}
	}

	return ctx.JSON(http.StatusOK, &types.CaptureOrderResponse{Status: result.Status, OrderID: result.OrderID})
}

func (c *CheckoutController) CreatePaymentIntent(ctx echo.Context) error {
	req, err := types.NewCreatePaymentIntentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, msgInvalidRequestBody)
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.checkoutService.CreatePaymentIntent(ctx.Request().Context(), req)
	if err != nil {
		if status, message, ok := initiateClientError(err, msgCardNotConfigured); ok {
			return c.writeError(ctx, status, message)
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Create payment intent failed")
		return c.writeDetailedError(ctx, http.StatusInternalServerError, msgIntentFailed, providerDetails(err))
	}

	return ctx.JSON(http.StatusOK, &types.CreatePaymentIntentResponse{ClientSecret: result.ClientSecret, PaymentIntentID: result.ID})
}

func (c *CheckoutController) HandleWebhook(ctx echo.Context) error {
	req, err := types.NewWebhookRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, msgInvalidRequestBody)
	}

	_, err = c.checkoutService.HandleWebhook(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignature):
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Warn("Webhook signature verification failed")
			return c.writeError(ctx, http.StatusBadRequest, msgWebhookSignature)
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, "Webhook Error: malformed event")
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Handle webhook failed")
			return c.writeError(ctx, http.StatusInternalServerError, msgInternalServerError)
		}
	}

	return ctx.JSON(http.StatusOK, &types.WebhookResponse{Received: true})
}

// initiateClientError maps the client-side failures shared by both initiation routes.
func initiateClientError(err error, notConfiguredMessage string) (int, string, bool) {
	switch {
	case errors.Is(err, service.ErrInvalidTier):
		return http.StatusBadRequest, msgInvalidTier, true
	case errors.Is(err, service.ErrMissingLicensePlate):
		return http.StatusBadRequest, msgMissingPlate, true
	case errors.Is(err, service.ErrProviderNotConfigured):
		return http.StatusBadRequest, notConfiguredMessage, true
	default:
		return 0, "", false
	}
}

func (c *CheckoutController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}

func (c *CheckoutController) writeDetailedError(ctx echo.Context, statusCode int, message, details string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message, Details: details})
}

func providerDetails(err error) string {
	var apiErr *provider.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, provider.ErrProviderUnavailable) {
		return provider.ErrProviderUnavailable.Error()
	}
	var providerErr *service.ProviderError
	if errors.As(err, &providerErr) && providerErr.Err != nil {
		return providerErr.Err.Error()
	}
	return err.Error()
}
