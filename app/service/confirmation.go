package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-parking-payments/app/provider"
)

type captureOrderRequest interface {
	GetOrderID() string
}

type webhookRequest interface {
	GetPayload() []byte
	GetSignature() string
}

type CaptureResult struct {
	OrderID   string
	Status    string
	Finalized bool
}

type WebhookResult struct {
	EventType string
	Finalized bool
}

// CaptureOrder captures a PayPal order. The order id is forwarded to PayPal as given; only a
// COMPLETED capture touches the pending registry.
func (s *CheckoutService) CaptureOrder(ctx context.Context, req captureOrderRequest) (*CaptureResult, error) {
	orderID := strings.TrimSpace(req.GetOrderID())
	if orderID == "" {
		return nil, ErrInvalidRequest
	}

	providerClient, err := s.providerReg.Get(provider.PayPal)
	if err != nil {
		if errors.Is(err, provider.ErrProviderNotConfigured) {
			return nil, ErrProviderNotConfigured
		}
		return nil, err
	}

	confirmation, err := providerClient.Confirm(ctx, &provider.ConfirmInput{ProviderPaymentID: orderID})
	if err != nil {
		return nil, &ProviderError{Provider: provider.PayPal, Err: err}
	}
	if !confirmation.Succeeded {
		return nil, &CaptureFailedError{Status: confirmation.Status}
	}

	return &CaptureResult{
		OrderID:   orderID,
		Status:    confirmation.Status,
		Finalized: s.settle(ctx, provider.PayPal, orderID),
	}, nil
}

// HandleWebhook verifies and applies a Stripe event. Verified events are acknowledged even
// when they match nothing pending.
func (s *CheckoutService) HandleWebhook(ctx context.Context, req webhookRequest) (*WebhookResult, error) {
	providerClient, err := s.providerReg.Get(provider.Stripe)
	if err != nil {
		return nil, ErrInvalidSignature
	}

	confirmation, err := providerClient.Confirm(ctx, &provider.ConfirmInput{
		Payload:   req.GetPayload(),
		Signature: req.GetSignature(),
	})
	if err != nil {
		if errors.Is(err, provider.ErrInvalidSignature) {
			return nil, ErrInvalidSignature
		}
		return nil, ErrInvalidRequest
	}

	result := &WebhookResult{EventType: confirmation.EventType}
	if !confirmation.Succeeded {
		s.logger.WithFields(logrus.Fields{
			"event_id":   confirmation.ProviderEventID,
			"event_type": confirmation.EventType,
		}).Debug("webhook_event_ignored")
		return result, nil
	}

	result.Finalized = s.settle(ctx, provider.Stripe, confirmation.ProviderPaymentID)
	return result, nil
}

func (s *CheckoutService) settle(ctx context.Context, providerName, providerPaymentID string) bool {
	pending, ok := s.pendingRepo.Take(providerPaymentID)
	if !ok {
		s.logger.WithFields(logrus.Fields{
			"provider":            providerName,
			"provider_payment_id": providerPaymentID,
		}).Warn("orphan confirmation")
		return false
	}

	s.finalizer.Finalize(ctx, providerPaymentID, pending)
	return true
}
