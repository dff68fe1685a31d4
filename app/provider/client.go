package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

const maxResponseBytes = 1 << 20

var ErrProviderUnavailable = errors.New("provider temporarily unavailable")

// APIError is a non-2xx answer from a provider API.
type APIError struct {
	Provider   string
	Path       string
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	detail := e.Message
	if detail == "" {
		detail = e.Body
	}
	return fmt.Sprintf("%s request failed: path=%s status=%d message=%s", e.Provider, e.Path, e.StatusCode, detail)
}

type apiClient struct {
	name    string
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func newAPIClient(name, baseURL string, timeout time.Duration) *apiClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: countsAsHealthy,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logrus.WithFields(logrus.Fields{
				"provider": name,
				"from":     from.String(),
				"to":       to.String(),
			}).Warn("provider_circuit_state_changed")
		},
	})

	return &apiClient{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		breaker: breaker,
	}
}

func (c *apiClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
}

// do sends req through the circuit breaker and returns the body of a 2xx response.
func (c *apiClient) do(req *http.Request) ([]byte, error) {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			return nil, &APIError{
				Provider:   c.name,
				Path:       req.URL.Path,
				StatusCode: resp.StatusCode,
				Message:    extractErrorMessage(body),
				Body:       string(body),
			}
		}
		return body, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s: %w: %v", c.name, ErrProviderUnavailable, err)
	}
	return body, err
}

// countsAsHealthy keeps client-side mistakes and caller cancellations from tripping the breaker.
func countsAsHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode < 500
	}
	return false
}

// extractErrorMessage understands the PayPal ({"message","details"}), PayPal OAuth
// ({"error_description"}) and Stripe ({"error":{"message"}}) error envelopes.
func extractErrorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Details []struct {
			Issue       string `json:"issue"`
			Description string `json:"description"`
		} `json:"details"`
		Error            json.RawMessage `json:"error"`
		ErrorDescription string          `json:"error_description"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}

	if len(payload.Error) > 0 {
		var stripeErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(payload.Error, &stripeErr) == nil && stripeErr.Message != "" {
			return strings.TrimSpace(stripeErr.Message)
		}
	}

	message := strings.TrimSpace(payload.Message)
	if len(payload.Details) > 0 {
		detail := strings.TrimSpace(payload.Details[0].Issue)
		if d := strings.TrimSpace(payload.Details[0].Description); d != "" {
			detail = strings.TrimSpace(detail + " " + d)
		}
		if detail != "" {
			if message == "" {
				return detail
			}
			return message + ": " + detail
		}
	}
	if message == "" {
		message = strings.TrimSpace(payload.ErrorDescription)
	}
	return message
}
