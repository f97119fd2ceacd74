package records

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusError is recorded as the observed status of an attempt whose status
// call failed.
const StatusError = "error"

// Attempt is one poll attempt. Attempts are append-only.
type Attempt struct {
	RecordID      string        `dynamodbav:"record_id"`
	OrderID       string        `dynamodbav:"order_id"`
	OrderDBID     string        `dynamodbav:"order_db_id"`
	AttemptNumber int           `dynamodbav:"attempt_number"`
	Status        string        `dynamodbav:"status"`
	ResponseTime  time.Duration `dynamodbav:"-"`
	ResponseMs    int64         `dynamodbav:"response_time_ms"`
	ErrorMessage  string        `dynamodbav:"error_message,omitempty"`
	Timestamp     time.Time     `dynamodbav:"timestamp"`
}

// Settlement is written once per poll run that reaches settled.
type Settlement struct {
	RecordID          string              `dynamodbav:"record_id"`
	OrderID           string              `dynamodbav:"order_id"`
	OrderDBID         string              `dynamodbav:"order_db_id"`
	Status            string              `dynamodbav:"status"`
	SettlementSeconds float64             `dynamodbav:"settlement_seconds"`
	TransactionHash   string              `dynamodbav:"transaction_hash,omitempty"`
	AmountPaid        decimal.NullDecimal `dynamodbav:"-"`
	RecipientAccount  string              `dynamodbav:"recipient_account,omitempty"`
	RecipientName     string              `dynamodbav:"recipient_name,omitempty"`
	Currency          string              `dynamodbav:"currency,omitempty"`
	Timestamp         time.Time           `dynamodbav:"timestamp"`
}

// AmountPaidString returns the paid amount, or "" when the provider did not report one.
func (s Settlement) AmountPaidString() string {
	if !s.AmountPaid.Valid {
		return ""
	}
	return s.AmountPaid.Decimal.String()
}
