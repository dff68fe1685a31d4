package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/vibast-solutions/ms-go-parking-payments/app/entity"
)

const (
	payPalSandboxBaseURL = "https://api-m.sandbox.paypal.com"
	payPalLiveBaseURL    = "https://api-m.paypal.com"

	PayPalStatusCompleted = "COMPLETED"
)

type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	Live         bool
	// BaseURL overrides the sandbox/live API host.
	BaseURL     string
	BrandName   string
	HTTPTimeout time.Duration
}

type PayPalProvider struct {
	cfg PayPalConfig
	api *apiClient
	now func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewPayPalProvider(cfg PayPalConfig) *PayPalProvider {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = payPalSandboxBaseURL
		if cfg.Live {
			baseURL = payPalLiveBaseURL
		}
	}

	return &PayPalProvider{
		cfg: cfg,
		api: newAPIClient(PayPal, baseURL, cfg.HTTPTimeout),
		now: time.Now,
	}
}

func (p *PayPalProvider) Name() string {
	return PayPal
}

type payPalMoney struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type payPalAmount struct {
	payPalMoney
	Breakdown struct {
		ItemTotal payPalMoney `json:"item_total"`
	} `json:"breakdown"`
}

type payPalItem struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	SKU         string      `json:"sku,omitempty"`
	UnitAmount  payPalMoney `json:"unit_amount"`
	Quantity    string      `json:"quantity"`
}

type payPalPurchaseUnit struct {
	ReferenceID string       `json:"reference_id"`
	Amount      payPalAmount `json:"amount"`
	Items       []payPalItem `json:"items"`
	CustomID    string       `json:"custom_id"`
}

type payPalApplicationContext struct {
	BrandName  string `json:"brand_name,omitempty"`
	UserAction string `json:"user_action"`
	ReturnURL  string `json:"return_url,omitempty"`
	CancelURL  string `json:"cancel_url,omitempty"`
}

type payPalOrderRequest struct {
	Intent             string                   `json:"intent"`
	PurchaseUnits      []payPalPurchaseUnit     `json:"purchase_units"`
	ApplicationContext payPalApplicationContext `json:"application_context"`
}

type payPalOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (p *PayPalProvider) Initiate(ctx context.Context, input *InitiateInput) (*InitiateOutput, error) {
	money := payPalMoney{
		CurrencyCode: strings.ToUpper(input.Currency),
		Value:        entity.FormatAmount(input.AmountCents),
	}

	amount := payPalAmount{payPalMoney: money}
	amount.Breakdown.ItemTotal = money

	order := payPalOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []payPalPurchaseUnit{{
			ReferenceID: input.ReferenceID,
			Amount:      amount,
			Items: []payPalItem{{
				Name:        passDescription(input),
				Description: input.TierDescription,
				SKU:         input.TierID,
				UnitAmount:  money,
				Quantity:    "1",
			}},
			CustomID: strings.ToUpper(strings.TrimSpace(input.LicensePlate)),
		}},
		ApplicationContext: payPalApplicationContext{
			BrandName:  p.cfg.BrandName,
			UserAction: "PAY_NOW",
			ReturnURL:  input.ReturnURL,
			CancelURL:  input.CancelURL,
		},
	}

	payload, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{"Prefer": "return=representation"}
	if input.ReferenceID != "" {
		headers["PayPal-Request-Id"] = input.ReferenceID
	}
	body, err := p.postJSON(ctx, "/v2/checkout/orders", payload, headers)
	if err != nil {
		return nil, err
	}

	var created payPalOrderResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, err
	}
	id := strings.TrimSpace(created.ID)
	if id == "" {
		return nil, errors.New("paypal order id missing")
	}

	return &InitiateOutput{ProviderPaymentID: id, Status: created.Status}, nil
}

// Confirm captures the order. The caller decides what a non-COMPLETED status means.
func (p *PayPalProvider) Confirm(ctx context.Context, input *ConfirmInput) (*Confirmation, error) {
	orderID := strings.TrimSpace(input.ProviderPaymentID)
	if orderID == "" {
		return nil, errors.New("paypal order id is required")
	}

	body, err := p.postJSON(ctx, "/v2/checkout/orders/"+url.PathEscape(orderID)+"/capture", []byte("{}"), map[string]string{
		"Prefer": "return=representation",
	})
	if err != nil {
		return nil, err
	}

	var captured payPalOrderResponse
	if err := json.Unmarshal(body, &captured); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(captured.ID)
	if id == "" {
		id = orderID
	}

	return &Confirmation{
		ProviderPaymentID: id,
		EventType:         "order.capture",
		Status:            captured.Status,
		Succeeded:         captured.Status == PayPalStatusCompleted,
	}, nil
}

func (p *PayPalProvider) postJSON(ctx context.Context, path string, payload []byte, headers map[string]string) ([]byte, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := p.api.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	body, err := p.api.do(req)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		p.resetToken()
	}
	return body, err
}

func (p *PayPalProvider) accessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.now().Before(p.tokenExpiry) {
		return p.token, nil
	}
	if strings.TrimSpace(p.cfg.ClientID) == "" || strings.TrimSpace(p.cfg.ClientSecret) == "" {
		return "", errors.New("paypal client credentials are not configured")
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := p.api.newRequest(ctx, http.MethodPost, "/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.cfg.ClientID, p.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	body, err := p.api.do(req)
	if err != nil {
		return "", err
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		return "", errors.New("paypal token response missing access_token")
	}

	// refresh a minute early so an in-flight call never carries an expired token
	lifetime := time.Duration(payload.ExpiresIn)*time.Second - time.Minute
	if lifetime < 0 {
		lifetime = 0
	}
	p.token = payload.AccessToken
	p.tokenExpiry = p.now().Add(lifetime)

	return p.token, nil
}

func (p *PayPalProvider) resetToken() {
	p.mu.Lock()
	p.token = ""
	p.tokenExpiry = time.Time{}
	p.mu.Unlock()
}
