package statusclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-payout-settlement/internal/orders"
)

const (
	defaultTimeout = 15 * time.Second
	apiKeyHeader   = "API-Key"
	orderPath      = "/sender/orders/{id}"
	maxErrorBody   = 4 << 10
)

// ErrEmptyOrderID is returned when the caller passes an empty order id.
var ErrEmptyOrderID = errors.New("order id is required")

// APIError is a non-2xx response from the provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status api returned %d: %s", e.StatusCode, e.Message)
}

// Client fetches order snapshots from the settlement provider. It makes exactly
// one request per call and never retries.
type Client struct {
	rc *resty.Client
}

// New returns a Client. timeout <= 0 uses the default request timeout.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rc := resty.New().
		SetTimeout(timeout).
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		rc = rc.SetHeader(apiKeyHeader, apiKey)
	}
	return &Client{rc: rc}
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type orderPayload struct {
	ID         string      `json:"id"`
	Amount     amountField `json:"amount"`
	AmountPaid amountField `json:"amountPaid"`
	Status     string      `json:"status"`
	TxHash     string      `json:"txHash"`
	Recipient  struct {
		Institution       string `json:"institution"`
		AccountIdentifier string `json:"accountIdentifier"`
		AccountName       string `json:"accountName"`
		Currency          string `json:"currency"`
		Memo              string `json:"memo"`
	} `json:"recipient"`
}

// GetOrderStatus fetches the current snapshot of orderID.
func (c *Client) GetOrderStatus(ctx context.Context, orderID string) (*orders.Snapshot, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, ErrEmptyOrderID
	}

	resp, err := c.rc.R().
		SetContext(ctx).
		SetPathParam("id", orderID).
		Get(orderPath)
	if err != nil {
		return nil, fmt.Errorf("get order status: %w", err)
	}

	if !resp.IsSuccess() {
		body := resp.Body()
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: errorMessage(body, resp.Status())}
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !strings.EqualFold(env.Status, "success") {
		return nil, fmt.Errorf("status api error: %s", env.Message)
	}

	var payload orderPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return toSnapshot(orderID, payload)
}

func toSnapshot(orderID string, p orderPayload) (*orders.Snapshot, error) {
	amount, err := parseAmount(string(p.Amount))
	if err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	paid, err := parseAmount(string(p.AmountPaid))
	if err != nil {
		return nil, fmt.Errorf("parse amountPaid: %w", err)
	}

	id := p.ID
	if id == "" {
		id = orderID
	}
	return &orders.Snapshot{
		OrderID:         id,
		Status:          orders.ParseStatus(p.Status),
		RawStatus:       p.Status,
		TransactionHash: strings.TrimSpace(p.TxHash),
		Amount:          amount,
		AmountPaid:      paid,
		Recipient: orders.Recipient{
			Institution:       p.Recipient.Institution,
			AccountIdentifier: p.Recipient.AccountIdentifier,
			AccountName:       p.Recipient.AccountName,
			Currency:          p.Recipient.Currency,
			Memo:              p.Recipient.Memo,
		},
	}, nil
}

// amountField accepts amounts encoded either as JSON strings or numbers.
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*a = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountField(s)
		return nil
	}
	*a = amountField(raw)
	return nil
}

// parseAmount treats an empty string as an absent amount.
func parseAmount(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func errorMessage(body []byte, fallback string) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return env.Message
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return fallback
}

// Func adapts a function to the status client contract.
type Func func(ctx context.Context, orderID string) (*orders.Snapshot, error)

// GetOrderStatus calls f.
func (f Func) GetOrderStatus(ctx context.Context, orderID string) (*orders.Snapshot, error) {
	return f(ctx, orderID)
}
