package validation

import (
	"time"

	"github.com/imrishuroy/go-payout-settlement/internal/polling"
)

// PollingOptionsRequest carries per-request polling overrides. Durations are
// in milliseconds; zero means "use the configured value".
type PollingOptionsRequest struct {
	MaxAttempts       int     `json:"max_attempts,omitempty" validate:"omitempty,min=1,max=500"`
	BaseDelayMs       int64   `json:"base_delay_ms,omitempty" validate:"omitempty,min=100"`
	MaxDelayMs        int64   `json:"max_delay_ms,omitempty" validate:"omitempty,min=100"`
	TimeoutMs         int64   `json:"timeout_ms,omitempty" validate:"omitempty,min=1000"`
	ExponentialFactor float64 `json:"exponential_factor,omitempty" validate:"omitempty,gte=1,lte=10"`
}

// MonitorRequest is the payload for POST /orders/:order_id/monitor. The body
// may be empty.
type MonitorRequest struct {
	Options    *PollingOptionsRequest `json:"options,omitempty"`
	DeadlineMs int64                  `json:"deadline_ms,omitempty" validate:"omitempty,min=1000"` // overrides MONITOR_DEADLINE
	Metadata   map[string]string      `json:"metadata,omitempty"`
}

// ToOptions overlays the request onto base.
func (r *PollingOptionsRequest) ToOptions(base polling.Options) polling.Options {
	if r == nil {
		return base
	}
	if r.MaxAttempts > 0 {
		base.MaxAttempts = r.MaxAttempts
	}
	if r.BaseDelayMs > 0 {
		base.BaseDelay = time.Duration(r.BaseDelayMs) * time.Millisecond
	}
	if r.MaxDelayMs > 0 {
		base.MaxDelay = time.Duration(r.MaxDelayMs) * time.Millisecond
	}
	if r.TimeoutMs > 0 {
		base.Timeout = time.Duration(r.TimeoutMs) * time.Millisecond
	}
	if r.ExponentialFactor > 0 {
		base.ExponentialFactor = r.ExponentialFactor
	}
	return base
}

// MonitorMessage is the payload sent from API -> SQS -> Worker.
type MonitorMessage struct {
	OrderID       string                 `json:"order_id" validate:"required"`
	OrderDBID     string                 `json:"order_db_id,omitempty"`
	Options       *PollingOptionsRequest `json:"options,omitempty"`
	DeadlineMs    int64                  `json:"deadline_ms,omitempty" validate:"omitempty,min=1000"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Metadata      map[string]string      `json:"metadata,omitempty"`
}

// Deadline returns the requested monitoring deadline, or fallback when unset.
func (m MonitorMessage) Deadline(fallback time.Duration) time.Duration {
	if m.DeadlineMs > 0 {
		return time.Duration(m.DeadlineMs) * time.Millisecond
	}
	return fallback
}
