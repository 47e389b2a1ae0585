package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/config"
)

// PaymentClient handles communication with the external payment provider.
// The provider exposes a Stripe-style form-encoded API; the core only uses
// intent creation and confirmation.
type PaymentClient struct {
	baseURL    string
	secretKey  string
	currency   string
	httpClient *http.Client
}

// NewPaymentClient creates a new payment provider client
func NewPaymentClient(cfg config.PaymentConfig) *PaymentClient {
	return &PaymentClient{
		baseURL:   cfg.BaseURL,
		secretKey: cfg.SecretKey,
		currency:  cfg.Currency,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// PaymentIntent is the provider's view of a payment
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// providerError is the provider's error envelope
type providerError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateIntent creates a payment intent for the given amount. The amount is
// taken in major units and converted to the provider's minor units.
func (c *PaymentClient) CreateIntent(ctx context.Context, amount float64, orderID string) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(int64(amount*100+0.5), 10))
	form.Set("currency", c.currency)
	form.Set("metadata[order_id]", orderID)
	form.Set("automatic_payment_methods[enabled]", "true")

	return c.do(ctx, http.MethodPost, "/payment_intents", form)
}

// ConfirmIntent confirms a payment intent with the provider
func (c *PaymentClient) ConfirmIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	return c.do(ctx, http.MethodPost, "/payment_intents/"+intentID+"/confirm", url.Values{})
}

// GetIntent fetches the current provider state of an intent
func (c *PaymentClient) GetIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	return c.do(ctx, http.MethodGet, "/payment_intents/"+intentID, nil)
}

func (c *PaymentClient) do(ctx context.Context, method, path string, form url.Values) (*PaymentIntent, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build payment request: %w", err)
	}
	req.SetBasicAuth(c.secretKey, "")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment provider request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read payment response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var pe providerError
		if err := json.Unmarshal(data, &pe); err == nil && pe.Error.Message != "" {
			return nil, fmt.Errorf("payment provider error: %s", pe.Error.Message)
		}
		return nil, fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}

	var intent PaymentIntent
	if err := json.Unmarshal(data, &intent); err != nil {
		return nil, fmt.Errorf("failed to decode payment response: %w", err)
	}
	return &intent, nil
}
