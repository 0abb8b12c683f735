package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Intent statuses we care about. Anything but succeeded means the money
// is not ours yet.
const StatusSucceeded = "succeeded"

// Intent is the processor's view of a payment. Amount is in the
// currency's minor unit (cents). Metadata is attached by our frontend
// at intent-creation time and carried back to us on webhook events.
type Intent struct {
	ID            string            `json:"id"`
	Status        string            `json:"status"`
	Amount        int64             `json:"amount"`
	Currency      string            `json:"currency"`
	PaymentMethod string            `json:"payment_method"`
	Metadata      map[string]string `json:"metadata"`
}

// Verifier confirms a payment intent's status with the processor. The
// checkout service treats a succeeded intent as ground truth.
type Verifier interface {
	VerifyIntent(ctx context.Context, intentID string) (*Intent, error)
}

// Client talks to the payment processor's REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a processor client. baseURL is overridable for
// tests; pass "" for the production endpoint.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) VerifyIntent(ctx context.Context, intentID string) (*Intent, error) {
	url := fmt.Sprintf("%s/v1/payment_intents/%s", c.baseURL, intentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment processor unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("payment intent %s not found", intentID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment processor returned status %d", resp.StatusCode)
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, err
	}
	return &intent, nil
}
