package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-parking-payments/app/entity"
	"github.com/vibast-solutions/ms-go-parking-payments/app/repository"
)

const ledgerWriteTimeout = 5 * time.Second

type ActivationRecorder interface {
	Create(ctx context.Context, activation *entity.Activation) error
}

type ReceiptSender interface {
	SendReceipt(ctx context.Context, to string, activation *entity.Activation) error
}

// Finalizer turns a confirmed pending payment into an activation. Ledger and receipt are
// both optional and neither can fail the confirmation.
type Finalizer struct {
	ledger  ActivationRecorder
	mailer  ReceiptSender
	logger  logrus.FieldLogger
	now     func() time.Time
	pending sync.WaitGroup
}

func NewFinalizer(ledger ActivationRecorder, mailer ReceiptSender, logger logrus.FieldLogger) *Finalizer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Finalizer{
		ledger: ledger,
		mailer: mailer,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (f *Finalizer) Finalize(ctx context.Context, providerPaymentID string, pending *entity.PendingPayment) *entity.Activation {
	activatedAt := f.now()
	activation := &entity.Activation{
		Provider:          pending.Provider,
		ProviderPaymentID: providerPaymentID,
		ReferenceID:       pending.ReferenceID,
		LicensePlate:      pending.LicensePlate,
		TierID:            pending.TierID,
		TierName:          pending.Tier.Name,
		AmountCents:       pending.Tier.PriceCents,
		Currency:          pending.Tier.Currency,
		CardholderName:    pending.CardholderName,
		CardholderEmail:   pending.CardholderEmail,
		ActivatedAt:       activatedAt,
		ExpiresAt:         activatedAt.Add(pending.Tier.Duration),
	}

	logger := f.logger.WithFields(logrus.Fields{
		"license_plate":       activation.LicensePlate,
		"tier":                activation.TierName,
		"amount":              activation.Amount(),
		"currency":            activation.Currency,
		"provider":            activation.Provider,
		"provider_payment_id": activation.ProviderPaymentID,
		"expires_at":          activation.ExpiresAt.Format(time.RFC3339),
	})
	logger.Info("payment_finalized")

	if f.ledger != nil {
		ledgerCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ledgerWriteTimeout)
		err := f.ledger.Create(ledgerCtx, activation)
		cancel()
		if err != nil && !errors.Is(err, repository.ErrActivationAlreadyExists) {
			logger.WithError(err).Error("activation_record_failed")
		}
	}

	if f.mailer != nil && activation.CardholderEmail != nil && *activation.CardholderEmail != "" {
		to := *activation.CardholderEmail
		mailCtx := context.WithoutCancel(ctx)
		f.pending.Add(1)
		go func() {
			defer f.pending.Done()
			if err := f.mailer.SendReceipt(mailCtx, to, activation); err != nil {
				logger.WithError(err).Warn("receipt_send_failed")
				return
			}
			logger.Debug("receipt_sent")
		}()
	}

	return activation
}

// Wait blocks until every receipt dispatched so far has been sent or has failed.
func (f *Finalizer) Wait() {
	f.pending.Wait()
}
