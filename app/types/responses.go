package types

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Status  string `json:"status,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type TierResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

type ListTiersResponse struct {
	Tiers []*TierResponse `json:"tiers"`
}

type CreateOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type CaptureOrderResponse struct {
	Status  string `json:"status"`
	OrderID string `json:"orderId"`
}

type CreatePaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}
