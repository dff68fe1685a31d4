package provider

import (
	"context"
	"errors"
	"strings"
)

const (
	PayPal = "paypal"
	Stripe = "stripe"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

type InitiateInput struct {
	ReferenceID string

	TierID          string
	TierName        string
	TierDescription string

	AmountCents int64
	Currency    string

	LicensePlate    string
	CardholderName  string
	CardholderEmail string

	ReturnURL string
	CancelURL string
}

type InitiateOutput struct {
	ProviderPaymentID string
	Status            string
	ClientSecret      string
}

// ConfirmInput carries whichever half of the confirmation the provider works with:
// an order id for capture-style providers, a signed payload for webhook-style ones.
type ConfirmInput struct {
	ProviderPaymentID string
	Payload           []byte
	Signature         string
}

type Confirmation struct {
	ProviderEventID   string
	ProviderPaymentID string
	EventType         string
	Status            string
	Succeeded         bool
}

type Provider interface {
	Name() string
	Initiate(ctx context.Context, input *InitiateInput) (*InitiateOutput, error)
	Confirm(ctx context.Context, input *ConfirmInput) (*Confirmation, error)
}

func passDescription(input *InitiateInput) string {
	name := strings.TrimSpace(input.TierName)
	if name == "" {
		name = "Parking"
	}
	return name + " Parking Pass - License Plate: " + strings.ToUpper(strings.TrimSpace(input.LicensePlate))
}
