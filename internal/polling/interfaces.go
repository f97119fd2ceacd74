package polling

import (
	"context"

	"github.com/imrishuroy/go-payout-settlement/internal/orders"
	"github.com/imrishuroy/go-payout-settlement/internal/records"
)

// StatusClient makes one status request for an order. Transport and non-2xx
// failures must be returned as errors.
type StatusClient interface {
	GetOrderStatus(ctx context.Context, orderID string) (*orders.Snapshot, error)
}

// AttemptRecorder persists poll attempts. Errors are logged, never propagated.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, a records.Attempt) error
}

// SettlementRecorder persists settlement records. Errors are logged, never propagated.
type SettlementRecorder interface {
	RecordSettlement(ctx context.Context, s records.Settlement) error
}
