package orders

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is a provider order status. Raw provider strings are parsed once, at
// the status client boundary, so the rest of the code never matches on them.
type Status string

// Provider order statuses (v1 of the provider API).
const (
	StatusInitiated Status = "initiated"
	StatusPending   Status = "pending"
	// StatusValidated means the recipient has been paid out but the transfer
	// is not yet settled on-chain. It does not stop polling.
	StatusValidated Status = "validated"
	StatusSettled   Status = "settled"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"

	// StatusUnrecognized covers any value this version does not know about.
	StatusUnrecognized Status = "unrecognized"
)

var knownStatuses = map[string]Status{
	string(StatusInitiated): StatusInitiated,
	string(StatusPending):   StatusPending,
	string(StatusValidated): StatusValidated,
	string(StatusSettled):   StatusSettled,
	string(StatusFailed):    StatusFailed,
	string(StatusCancelled): StatusCancelled,
}

// ParseStatus maps a raw provider status onto Status. Unknown values map to
// StatusUnrecognized, which is non-terminal.
func ParseStatus(raw string) Status {
	if s, ok := knownStatuses[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return StatusUnrecognized
}

// IsSuccess reports whether s is the terminal success state.
func (s Status) IsSuccess() bool { return s == StatusSettled }

// IsFailure reports whether s is a terminal failure state.
func (s Status) IsFailure() bool { return s == StatusFailed || s == StatusCancelled }

// IsTerminal reports whether polling can stop at s.
func (s Status) IsTerminal() bool { return s.IsSuccess() || s.IsFailure() }

// Recipient is forwarded into settlement records, never interpreted.
type Recipient struct {
	Institution       string `json:"institution,omitempty"`
	AccountIdentifier string `json:"account_identifier,omitempty"`
	AccountName       string `json:"account_name,omitempty"`
	Currency          string `json:"currency,omitempty"`
	Memo              string `json:"memo,omitempty"`
}

// Snapshot is a read-only view of a provider order at one point in time.
type Snapshot struct {
	OrderID         string              `json:"order_id"`
	Status          Status              `json:"status"`
	RawStatus       string              `json:"raw_status,omitempty"`
	TransactionHash string              `json:"transaction_hash,omitempty"`
	Amount          decimal.NullDecimal `json:"amount"`
	AmountPaid      decimal.NullDecimal `json:"amount_paid"`
	Recipient       Recipient           `json:"recipient"`
}

// ObservedStatus is the string recorded for the snapshot's status.
func (s *Snapshot) ObservedStatus() string {
	if s.Status == StatusUnrecognized && s.RawStatus != "" {
		return s.RawStatus
	}
	return string(s.Status)
}

// Order represents the item stored in the Orders DynamoDB table. It maps the
// provider order id onto the internal id used by the record tables.
type Order struct {
	OrderID   string    `dynamodbav:"order_id" json:"order_id"`       // PK, provider order id
	OrderDBID string    `dynamodbav:"order_db_id" json:"order_db_id"` // internal id
	Status    Status    `dynamodbav:"status" json:"status"`           // last mirrored provider status
	CreatedAt time.Time `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at" json:"updated_at"`
}
