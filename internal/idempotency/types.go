package idempotency

import "time"

// Status values for idempotency entries
const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// IdempotencyRecord is the shape persisted in the idempotency DynamoDB table.
// One record guards one monitoring run for one order.
type IdempotencyRecord struct {
	IdempotencyKey string    `dynamodbav:"idempotency_key"` // PK
	Status         string    `dynamodbav:"status"`
	OrderID        string    `dynamodbav:"order_id,omitempty"`
	ResponseBody   string    `dynamodbav:"response_body,omitempty"` // JSON poll result
	Claims         int       `dynamodbav:"claims"`
	LeaseUntil     int64     `dynamodbav:"lease_until"` // epoch seconds; an IN_PROGRESS claim past this may be retaken
	CreatedAt      time.Time `dynamodbav:"created_at"`
	UpdatedAt      time.Time `dynamodbav:"updated_at"`
	ExpiresAt      int64     `dynamodbav:"expires_at"` // TTL epoch seconds
	Note           string    `dynamodbav:"note,omitempty"`
}

// ClaimResult describes the outcome of Claim.
type ClaimResult int

const (
	// Claimed means the caller owns the run and must finish it with MarkDone or MarkFailed.
	Claimed ClaimResult = iota
	// AlreadyDone means a previous run concluded; the record holds its result.
	AlreadyDone
	// InFlight means another worker holds a live lease.
	InFlight
)

func (c ClaimResult) String() string {
	switch c {
	case Claimed:
		return "claimed"
	case AlreadyDone:
		return "already_done"
	case InFlight:
		return "in_flight"
	default:
		return "unknown"
	}
}
