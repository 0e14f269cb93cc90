// Package gateway implements the payment processor client.
// It keeps the decline-vs-fault contract of payment.Gateway: an HTTP answer
// saying "declined" is a normal result, a transport failure is an error.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/learnhub/enrollment-hub/internal/domain/payment"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the gateway client.
type ClientConfig struct {
	// BaseURL is the gateway API base URL.
	BaseURL string

	// APIKey is the API key for authentication.
	APIKey string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the HTTP payment gateway client implementing payment.Gateway.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new gateway client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: config.Logger.With("component", "payment_gateway"),
	}
}

// chargeRequest is the wire format of a charge call.
type chargeRequest struct {
	PaymentRef string `json:"payment_ref"`
	Cents      int64  `json:"amount_cents"`
	Currency   string `json:"currency"`
	CardNumber string `json:"card_number"`
	CardHolder string `json:"card_holder,omitempty"`
	ExpiryMon  int    `json:"expiry_month"`
	ExpiryYear int    `json:"expiry_year"`
	CVV        string `json:"cvv,omitempty"`
}

// refundRequest is the wire format of a refund call.
type refundRequest struct {
	TransactionID string `json:"transaction_id"`
	Cents         int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	Reason        string `json:"reason,omitempty"`
}

// gatewayResponse is the wire format of both answers.
type gatewayResponse struct {
	Approved      bool   `json:"approved"`
	TransactionID string `json:"transaction_id,omitempty"`
	RefundID      string `json:"refund_id,omitempty"`
	DeclineReason string `json:"decline_reason,omitempty"`
}

// Charge attempts to collect the amount from the card.
func (c *Client) Charge(ctx context.Context, paymentRef string, amount shared.Money, card payment.Card) (*payment.ChargeResult, error) {
	body := chargeRequest{
		PaymentRef: paymentRef,
		Cents:      amount.Cents,
		Currency:   amount.Currency,
		CardNumber: card.Number,
		CardHolder: card.HolderName,
		ExpiryMon:  card.ExpiryMonth,
		ExpiryYear: card.ExpiryYear,
		CVV:        card.CVV,
	}

	var resp gatewayResponse
	if err := c.post(ctx, "/v1/charges", body, &resp); err != nil {
		return nil, shared.WrapError("payment", "Charge", shared.ErrInfrastructure,
			"payment gateway unreachable", err)
	}

	c.logger.Info("charge answered",
		"payment_ref", paymentRef,
		"approved", resp.Approved,
	)

	return &payment.ChargeResult{
		Approved:      resp.Approved,
		TransactionID: resp.TransactionID,
		DeclineReason: resp.DeclineReason,
	}, nil
}

// Refund returns a previously charged amount.
func (c *Client) Refund(ctx context.Context, transactionID string, amount shared.Money, reason string) (*payment.RefundResult, error) {
	body := refundRequest{
		TransactionID: transactionID,
		Cents:         amount.Cents,
		Currency:      amount.Currency,
		Reason:        reason,
	}

	var resp gatewayResponse
	if err := c.post(ctx, "/v1/refunds", body, &resp); err != nil {
		return nil, shared.WrapError("payment", "Refund", shared.ErrInfrastructure,
			"payment gateway unreachable", err)
	}

	c.logger.Info("refund answered",
		"transaction_id", transactionID,
		"approved", resp.Approved,
	)

	return &payment.RefundResult{
		Approved:      resp.Approved,
		RefundID:      resp.RefundID,
		DeclineReason: resp.DeclineReason,
	}, nil
}

// post executes a JSON POST against the gateway.
func (c *Client) post(ctx context.Context, path string, body, dest interface{}) error {
	payloadBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	// 4xx/5xx with no parseable decline payload is a fault, not a decline.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, dest); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	return nil
}
