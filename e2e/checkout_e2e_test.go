//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-parking-payments/app/provider"
	"github.com/vibast-solutions/ms-go-parking-payments/app/types"
)

const defaultParkingHTTPBase = "http://localhost:3000"

type httpClient struct {
	baseURL string
	client  *http.Client
}

func newHTTPClient(baseURL string) *httpClient {
	return &httpClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *httpClient) do(t *testing.T, method, path string, body []byte, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("new request failed: %v", err)
	}
	req.Header.Set("X-Request-ID", fmt.Sprintf("e2e-http-%d", time.Now().UnixNano()))
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		t.Fatalf("http request failed: %v", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response failed: %v", err)
	}

	return resp, bodyBytes
}

func (c *httpClient) doJSON(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal failed: %v", err)
		}
	}
	return c.do(t, method, path, data, map[string]string{"Content-Type": "application/json"})
}

func waitForHTTP(baseURL string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 2 * time.Second}
	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("http service not ready at %s", baseURL)
}

func TestCheckoutE2E(t *testing.T) {
	httpBase := os.Getenv("PARKING_HTTP_URL")
	if httpBase == "" {
		httpBase = defaultParkingHTTPBase
	}

	if err := waitForHTTP(httpBase, 30*time.Second); err != nil {
		t.Fatalf("http not ready: %v", err)
	}

	client := newHTTPClient(httpBase)

	t.Run("HTTPHealthEchoesRequestID", func(t *testing.T) {
		resp, _ := client.do(t, http.MethodGet, "/health", nil, map[string]string{"X-Request-ID": "e2e-fixed"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if got := resp.Header.Get("X-Request-ID"); got != "e2e-fixed" {
			t.Fatalf("expected request id to be echoed, got %q", got)
		}
	})

	t.Run("HTTPListTiers", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodGet, "/api/tiers", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", resp.StatusCode, string(body))
		}
		var payload types.ListTiersResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("unmarshal tiers failed: %v body=%s", err, string(body))
		}
		if len(payload.Tiers) != 4 {
			t.Fatalf("expected 4 tiers, got %d", len(payload.Tiers))
		}
	})

	t.Run("HTTPCreateOrderInvalidTier", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodPost, "/api/orders", map[string]any{"tierId": "nope", "licensePlate": "ABC123"})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", resp.StatusCode, string(body))
		}
	})

	t.Run("HTTPCreateOrderMissingPlate", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodPost, "/api/orders", map[string]any{"tierId": "1hr", "licensePlate": "  "})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", resp.StatusCode, string(body))
		}
	})

	t.Run("HTTPWebhookBadSignature", func(t *testing.T) {
		resp, body := client.do(t, http.MethodPost, "/api/webhook", []byte(`{"type":"payment_intent.succeeded"}`), map[string]string{
			types.StripeSignatureHeader: "t=1,v1=deadbeef",
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", resp.StatusCode, string(body))
		}
	})

	t.Run("HTTPWebhookSignedUnknownIntent", func(t *testing.T) {
		secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		if secret == "" {
			t.Skip("STRIPE_WEBHOOK_SECRET not set")
		}
		payload := []byte(fmt.Sprintf(`{"id":"evt_e2e_%d","type":"payment_intent.succeeded","data":{"object":{"id":"pi_e2e_unknown"}}}`, time.Now().UnixNano()))
		resp, body := client.do(t, http.MethodPost, "/api/webhook", payload, map[string]string{
			types.StripeSignatureHeader: provider.SignStripePayload(payload, secret, time.Now()),
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", resp.StatusCode, string(body))
		}
		var ack types.WebhookResponse
		if err := json.Unmarshal(body, &ack); err != nil || !ack.Received {
			t.Fatalf("expected received=true, got %s", string(body))
		}
	})
}
