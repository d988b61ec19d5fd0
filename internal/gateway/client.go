package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Config holds the gateway connection settings.
type Config struct {
	BaseURL     string
	MerchantID  string
	CallbackURL string
}

// PaymentRequestResult is the gateway's answer to a payment request. A zero
// status with a non-zero token means the payer can be redirected.
type PaymentRequestResult struct {
	Token   int64  `json:"token"`
	Status  int32  `json:"status"`
	Message string `json:"message"`
}

func (r *PaymentRequestResult) Success() bool {
	return r.Status == 0 && r.Token > 0
}

// VerifyResult is the gateway's answer to a verification call.
type VerifyResult struct {
	Status int32  `json:"status"`
	RefID  string `json:"ref_id"`
}

func (r *VerifyResult) Success() bool {
	return r.Status == 0 && r.RefID != ""
}

// Client talks to the external payment gateway.
type Client interface {
	RequestPayment(ctx context.Context, orderID uint64, amount decimal.Decimal) (*PaymentRequestResult, error)
	VerifyPayment(ctx context.Context, token int64) (*VerifyResult, error)
	PaymentURL(token int64) string
}

type httpClient struct {
	cfg    Config
	client *http.Client
}

func NewClient(cfg Config) Client {
	return &httpClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *httpClient) RequestPayment(ctx context.Context, orderID uint64, amount decimal.Decimal) (*PaymentRequestResult, error) {
	payload := map[string]interface{}{
		"merchant_id":  c.cfg.MerchantID,
		"order_id":     orderID,
		"amount":       amount.String(),
		"callback_url": c.cfg.CallbackURL,
	}

	result := &PaymentRequestResult{}
	if err := c.post(ctx, "/api/v1/payment/request", payload, result); err != nil {
		return nil, err
	}

	return result, nil
}

func (c *httpClient) VerifyPayment(ctx context.Context, token int64) (*VerifyResult, error) {
	payload := map[string]interface{}{
		"merchant_id": c.cfg.MerchantID,
		"token":       token,
	}

	result := &VerifyResult{}
	if err := c.post(ctx, "/api/v1/payment/verify", payload, result); err != nil {
		return nil, err
	}

	return result, nil
}

// PaymentURL is where the payer is redirected to complete the charge.
func (c *httpClient) PaymentURL(token int64) string {
	return fmt.Sprintf("%s/pay/%d", c.cfg.BaseURL, token)
}

func (c *httpClient) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: gateway returned %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}

	return nil
}
