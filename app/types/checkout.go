package types

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

const (
	StripeSignatureHeader = "Stripe-Signature"

	maxWebhookBytes = 1 << 20
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type CreateOrderRequest struct {
	TierID       string `json:"tierId" validate:"max=32"`
	LicensePlate string `json:"licensePlate"`
}

func (r *CreateOrderRequest) GetTierID() string       { return r.TierID }
func (r *CreateOrderRequest) GetLicensePlate() string { return r.LicensePlate }

func NewCreateOrderRequestFromContext(ctx echo.Context) (*CreateOrderRequest, error) {
	var body CreateOrderRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.TierID = strings.TrimSpace(body.TierID)
	body.LicensePlate = strings.TrimSpace(body.LicensePlate)

	return &body, nil
}

func (r *CreateOrderRequest) Validate() error {
	return validationError(validate.Struct(r))
}

type CaptureOrderRequest struct {
	OrderID string `json:"orderId" validate:"required,max=64"`
}

func (r *CaptureOrderRequest) GetOrderID() string { return r.OrderID }

func NewCaptureOrderRequestFromContext(ctx echo.Context) (*CaptureOrderRequest, error) {
	return &CaptureOrderRequest{OrderID: strings.TrimSpace(ctx.Param("orderID"))}, nil
}

func (r *CaptureOrderRequest) Validate() error {
	if strings.TrimSpace(r.OrderID) == "" {
		return errors.New("order id is required")
	}
	return validationError(validate.Struct(r))
}

type CreatePaymentIntentRequest struct {
	TierID       string `json:"tierId" validate:"max=32"`
	LicensePlate string `json:"licensePlate"`
	CardName     string `json:"cardName" validate:"max=128"`
	CardEmail    string `json:"cardEmail" validate:"max=254"`
}

func (r *CreatePaymentIntentRequest) GetTierID() string       { return r.TierID }
func (r *CreatePaymentIntentRequest) GetLicensePlate() string { return r.LicensePlate }
func (r *CreatePaymentIntentRequest) GetCardName() string     { return r.CardName }
func (r *CreatePaymentIntentRequest) GetCardEmail() string    { return r.CardEmail }

func NewCreatePaymentIntentRequestFromContext(ctx echo.Context) (*CreatePaymentIntentRequest, error) {
	var body CreatePaymentIntentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.TierID = strings.TrimSpace(body.TierID)
	body.LicensePlate = strings.TrimSpace(body.LicensePlate)
	body.CardName = strings.TrimSpace(body.CardName)
	body.CardEmail = strings.TrimSpace(body.CardEmail)

	return &body, nil
}

func (r *CreatePaymentIntentRequest) Validate() error {
	return validationError(validate.Struct(r))
}

// WebhookRequest keeps the body byte-for-byte; the signature covers the raw payload.
type WebhookRequest struct {
	Payload   []byte
	Signature string
}

func (r *WebhookRequest) GetPayload() []byte   { return r.Payload }
func (r *WebhookRequest) GetSignature() string { return r.Signature }

func NewWebhookRequestFromContext(ctx echo.Context) (*WebhookRequest, error) {
	payload, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxWebhookBytes))
	if err != nil {
		return nil, err
	}
	return &WebhookRequest{
		Payload:   payload,
		Signature: strings.TrimSpace(ctx.Request().Header.Get(StripeSignatureHeader)),
	}, nil
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "max":
		return fmt.Errorf("%s must be at most %s characters", fieldName(fe), fe.Param())
	case "required":
		return fmt.Errorf("%s is required", fieldName(fe))
	default:
		return fmt.Errorf("%s is invalid", fieldName(fe))
	}
}

func fieldName(fe validator.FieldError) string {
	if fe.Field() != "" {
		return fe.Field()
	}
	return fe.StructField()
}
