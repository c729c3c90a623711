// Package mercadopago is a thin client for the Mercado Pago payments
// API: creating pix charges and fetching payment status. It also
// adapts fetched payments into reconciler events.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"iq-report-service/internal/domain"
)

const defaultBaseURL = "https://api.mercadopago.com"

type Client struct {
	baseURL     string
	accessToken string
	httpc       *http.Client
}

// NewClient requires an access token; payment-capable paths must not
// silently run unconfigured.
func NewClient(accessToken string, opts ...Option) (*Client, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("%w: mercado pago access token", domain.ErrMissingConfig)
	}
	c := &Client{
		baseURL:     defaultBaseURL,
		accessToken: accessToken,
		httpc:       &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type Option func(*Client)

// WithBaseURL points the client at a test server.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient overrides the underlying transport.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// Payment is the subset of the payment resource this service reads.
type Payment struct {
	ID                json.Number `json:"id"`
	Status            string      `json:"status"`
	StatusDetail      string      `json:"status_detail"`
	TransactionAmount float64     `json:"transaction_amount"`
	DateApproved      string      `json:"date_approved"`
	DateCreated       string      `json:"date_created"`
	DateOfExpiration  string      `json:"date_of_expiration"`
	Payer             struct {
		Email string `json:"email"`
	} `json:"payer"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
			TicketURL    string `json:"ticket_url"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

// GetPayment fetches a payment by id.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (Payment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/payments/"+paymentID, nil)
	if err != nil {
		return Payment{}, err
	}
	return c.do(req)
}

// CreatePixRequest describes a pix charge for the report paywall.
type CreatePixRequest struct {
	Email       string
	Name        string
	CPF         string
	Amount      float64
	Description string
}

// CreatePixPayment creates a pix payment and returns the QR data the
// client renders.
func (c *Client) CreatePixPayment(ctx context.Context, in CreatePixRequest) (Payment, error) {
	firstName, lastName := splitName(in.Name)
	payload := map[string]any{
		"transaction_amount": in.Amount,
		"description":        in.Description,
		"payment_method_id":  "pix",
		"payer": map[string]any{
			"email":      in.Email,
			"first_name": firstName,
			"last_name":  lastName,
			"identification": map[string]string{
				"type":   "CPF",
				"number": digitsOnly(in.CPF),
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Payment{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payments", bytes.NewReader(body))
	if err != nil {
		return Payment{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// LookupPayment satisfies app.PaymentLookup: it resolves a notification
// reference into a classified event carrying the payer email.
func (c *Client) LookupPayment(ctx context.Context, paymentID string) (domain.PaymentEvent, error) {
	payment, err := c.GetPayment(ctx, paymentID)
	if err != nil {
		return domain.PaymentEvent{}, err
	}
	return domain.PaymentEvent{
		Provider:  "mercadopago",
		Kind:      classifyStatus(payment.Status),
		RawStatus: payment.Status,
		OrderID:   payment.ID.String(),
		Email:     domain.NormalizeEmail(payment.Payer.Email),
		PaymentID: payment.ID.String(),
	}, nil
}

func classifyStatus(status string) domain.EventKind {
	switch strings.ToLower(status) {
	case "approved":
		return domain.EventPaid
	case "rejected", "cancelled":
		return domain.EventRefused
	case "refunded", "charged_back":
		return domain.EventRefunded
	default:
		return domain.EventIgnored
	}
}

func (c *Client) do(req *http.Request) (Payment, error) {
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Payment{}, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
		return Payment{}, fmt.Errorf("%w: mercado pago: %s", domain.ErrUpstream, apiErr.Message)
	}

	var payment Payment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return Payment{}, fmt.Errorf("%w: decode payment: %v", domain.ErrUpstream, err)
	}
	return payment, nil
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], parts[0]
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
