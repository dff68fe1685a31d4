package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-parking-payments/app/entity"
	"github.com/vibast-solutions/ms-go-parking-payments/app/provider"
)

type createOrderRequest interface {
	GetTierID() string
	GetLicensePlate() string
}

type createPaymentIntentRequest interface {
	GetTierID() string
	GetLicensePlate() string
	GetCardName() string
	GetCardEmail() string
}

type tierCatalog interface {
	Find(id string) (entity.Tier, bool)
	List() []entity.Tier
}

type pendingPaymentRepository interface {
	Put(key string, payment *entity.PendingPayment)
	Get(key string) (*entity.PendingPayment, bool)
	Remove(key string)
	Take(key string) (*entity.PendingPayment, bool)
	ExpireBefore(cutoff time.Time) []*entity.PendingPayment
	Count() int
}

type OrderResult struct {
	ID     string
	Status string
}

type PaymentIntentResult struct {
	ID           string
	ClientSecret string
}

type CheckoutService struct {
	catalog     tierCatalog
	pendingRepo pendingPaymentRepository
	providerReg *provider.Registry
	finalizer   *Finalizer
	baseURL     string
	pendingTTL  time.Duration
	logger      logrus.FieldLogger
	now         func() time.Time
	newRefID    func() string
}

func NewCheckoutService(
	catalog tierCatalog,
	pendingRepo pendingPaymentRepository,
	providerReg *provider.Registry,
	finalizer *Finalizer,
	baseURL string,
	pendingTTL time.Duration,
	logger logrus.FieldLogger,
) *CheckoutService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CheckoutService{
		catalog:     catalog,
		pendingRepo: pendingRepo,
		providerReg: providerReg,
		finalizer:   finalizer,
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		pendingTTL:  pendingTTL,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		newRefID:    func() string { return uuid.NewString() },
	}
}

func (s *CheckoutService) Tiers() []entity.Tier {
	return s.catalog.List()
}

func (s *CheckoutService) CreateOrder(ctx context.Context, req createOrderRequest) (*OrderResult, error) {
	out, err := s.initiate(ctx, provider.PayPal, req.GetTierID(), req.GetLicensePlate(), "", "")
	if err != nil {
		return nil, err
	}
	return &OrderResult{ID: out.ProviderPaymentID, Status: out.Status}, nil
}

func (s *CheckoutService) CreatePaymentIntent(ctx context.Context, req createPaymentIntentRequest) (*PaymentIntentResult, error) {
	out, err := s.initiate(ctx, provider.Stripe, req.GetTierID(), req.GetLicensePlate(), req.GetCardName(), req.GetCardEmail())
	if err != nil {
		return nil, err
	}
	return &PaymentIntentResult{ID: out.ProviderPaymentID, ClientSecret: out.ClientSecret}, nil
}

func (s *CheckoutService) initiate(
	ctx context.Context,
	providerName string,
	tierID string,
	licensePlate string,
	cardName string,
	cardEmail string,
) (*provider.InitiateOutput, error) {
	tier, ok := s.catalog.Find(strings.TrimSpace(tierID))
	if !ok {
		return nil, ErrInvalidTier
	}
	plate := normalizePlate(licensePlate)
	if plate == "" {
		return nil, ErrMissingLicensePlate
	}

	providerClient, err := s.providerReg.Get(providerName)
	if err != nil {
		if errors.Is(err, provider.ErrProviderNotConfigured) {
			return nil, ErrProviderNotConfigured
		}
		return nil, err
	}

	input := &provider.InitiateInput{
		ReferenceID:     s.newRefID(),
		TierID:          tier.ID,
		TierName:        tier.Name,
		TierDescription: tier.Description,
		AmountCents:     tier.PriceCents,
		Currency:        tier.Currency,
		LicensePlate:    plate,
		CardholderName:  strings.TrimSpace(cardName),
		CardholderEmail: strings.TrimSpace(cardEmail),
		ReturnURL:       s.baseURL + "/success",
		CancelURL:       s.baseURL + "/payment-cancel",
	}

	out, err := providerClient.Initiate(ctx, input)
	if err != nil {
		return nil, &ProviderError{Provider: providerName, Err: err}
	}
	if out == nil || strings.TrimSpace(out.ProviderPaymentID) == "" {
		return nil, &ProviderError{Provider: providerName, Err: errors.New("provider returned no payment id")}
	}

	s.pendingRepo.Put(out.ProviderPaymentID, &entity.PendingPayment{
		Provider:        providerName,
		ReferenceID:     input.ReferenceID,
		TierID:          tier.ID,
		Tier:            tier,
		LicensePlate:    plate,
		CardholderName:  optionalString(input.CardholderName),
		CardholderEmail: optionalString(input.CardholderEmail),
		CreatedAt:       s.now(),
	})

	s.logger.WithFields(logrus.Fields{
		"provider":            providerName,
		"provider_payment_id": out.ProviderPaymentID,
		"tier":                tier.ID,
		"license_plate":       plate,
	}).Info("pending_payment_created")

	return out, nil
}

func normalizePlate(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
