package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	stripeBaseURL = "https://api.stripe.com"

	StripeEventPaymentSucceeded = "payment_intent.succeeded"
)

type StripeConfig struct {
	SecretKey                 string
	WebhookSecret             string
	BaseURL                   string
	SignatureToleranceSeconds int64
	HTTPTimeout               time.Duration
}

type StripeProvider struct {
	cfg StripeConfig
	api *apiClient
	now func() time.Time
}

func NewStripeProvider(cfg StripeConfig) *StripeProvider {
	tolerance := cfg.SignatureToleranceSeconds
	if tolerance <= 0 {
		tolerance = 300
	}
	cfg.SignatureToleranceSeconds = tolerance

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = stripeBaseURL
	}

	return &StripeProvider{
		cfg: cfg,
		api: newAPIClient(Stripe, baseURL, cfg.HTTPTimeout),
		now: time.Now,
	}
}

func (p *StripeProvider) Name() string {
	return Stripe
}

func (p *StripeProvider) Initiate(ctx context.Context, input *InitiateInput) (*InitiateOutput, error) {
	if strings.TrimSpace(p.cfg.SecretKey) == "" {
		return nil, errors.New("stripe secret key is not configured")
	}

	plate := strings.ToUpper(strings.TrimSpace(input.LicensePlate))
	values := url.Values{}
	values.Set("amount", strconv.FormatInt(input.AmountCents, 10))
	values.Set("currency", strings.ToLower(input.Currency))
	values.Set("description", passDescription(input))
	values.Set("metadata[licensePlate]", plate)
	values.Set("metadata[tierId]", input.TierID)
	values.Set("metadata[tierName]", input.TierName)
	values.Set("metadata[cardName]", input.CardholderName)
	values.Set("metadata[cardEmail]", input.CardholderEmail)
	values.Set("metadata[reference_id]", input.ReferenceID)

	req, err := p.api.newRequest(ctx, http.MethodPost, "/v1/payment_intents", strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if input.ReferenceID != "" {
		req.Header.Set("Idempotency-Key", input.ReferenceID)
	}

	body, err := p.api.do(req)
	if err != nil {
		return nil, err
	}

	var payload struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
		Status       string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	id := strings.TrimSpace(payload.ID)
	if id == "" {
		return nil, errors.New("stripe payment intent id missing")
	}

	return &InitiateOutput{
		ProviderPaymentID: id,
		Status:            payload.Status,
		ClientSecret:      payload.ClientSecret,
	}, nil
}

// Confirm verifies and decodes a webhook delivery. Only payment_intent.succeeded is
// reported as a successful confirmation.
func (p *StripeProvider) Confirm(_ context.Context, input *ConfirmInput) (*Confirmation, error) {
	if strings.TrimSpace(p.cfg.WebhookSecret) == "" {
		return nil, fmt.Errorf("%w: stripe webhook secret is not configured", ErrInvalidSignature)
	}
	if !verifyStripeSignature(input.Payload, input.Signature, p.cfg.WebhookSecret, p.cfg.SignatureToleranceSeconds, p.now()) {
		return nil, ErrInvalidSignature
	}

	var event struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(input.Payload, &event); err != nil {
		return nil, fmt.Errorf("decode stripe event: %w", err)
	}

	return &Confirmation{
		ProviderEventID:   strings.TrimSpace(event.ID),
		ProviderPaymentID: strings.TrimSpace(event.Data.Object.ID),
		EventType:         event.Type,
		Status:            event.Data.Object.Status,
		Succeeded:         event.Type == StripeEventPaymentSucceeded,
	}, nil
}

func verifyStripeSignature(payload []byte, signatureHeader string, webhookSecret string, toleranceSeconds int64, now time.Time) bool {
	signatureHeader = strings.TrimSpace(signatureHeader)
	if signatureHeader == "" || strings.TrimSpace(webhookSecret) == "" {
		return false
	}

	parts := strings.Split(signatureHeader, ",")
	var ts string
	v1 := make([]string, 0, 1)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "t=") {
			ts = strings.TrimSpace(strings.TrimPrefix(part, "t="))
		}
		if strings.HasPrefix(part, "v1=") {
			v1 = append(v1, strings.TrimSpace(strings.TrimPrefix(part, "v1=")))
		}
	}
	if ts == "" || len(v1) == 0 {
		return false
	}

	tsUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}
	nowUnix := now.Unix()
	if nowUnix-tsUnix > toleranceSeconds || tsUnix-nowUnix > toleranceSeconds {
		return false
	}

	mac := hmac.New(sha256.New, []byte(webhookSecret))
	_, _ = mac.Write([]byte(ts + "." + string(payload)))
	expected := mac.Sum(nil)

	for _, sig := range v1 {
		candidate, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(candidate, expected) {
			return true
		}
	}

	return false
}

// SignStripePayload builds a Stripe-Signature header value for payload.
func SignStripePayload(payload []byte, secret string, ts time.Time) string {
	unix := strconv.FormatInt(ts.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(unix + "." + string(payload)))
	return "t=" + unix + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}
