package polling

import (
	"fmt"

	"github.com/imrishuroy/go-payout-settlement/internal/orders"
)

// Machine-readable outcome classifications carried in Result.Error.
const (
	ErrTimeout             = "timeout"
	ErrMaxAttempts         = "maximum polling attempts reached"
	ErrOrderFailed         = "order failed"
	ErrOrderCancelled      = "order cancelled"
	ErrInvalidOptions      = "invalid polling options"
	ErrPollingCancelled    = "polling cancelled"
	ErrMonitoringTimeout   = "payment monitoring timeout"
	ErrMonitoringCancelled = "payment monitoring cancelled"
)

// Human-readable messages carried in Result.Message.
const (
	MsgSettled        = "Payment settled"
	MsgManualCheck    = "Check order status manually or contact support"
	MsgOrderFailed    = "The payment order failed at the settlement provider"
	MsgOrderCancelled = "The payment order was cancelled"
	MsgStillPending   = ErrMaxAttempts + ", payment is still processing. " + MsgManualCheck
	MsgProviderDown   = "Could not reach the settlement provider. " + MsgManualCheck
)

// Result is the outcome of one poll run. Completed is false only when the run
// was abandoned before the loop reached its own conclusion.
type Result struct {
	Success        bool             `json:"success"`
	Completed      bool             `json:"completed"`
	Order          *orders.Snapshot `json:"order,omitempty"`
	Error          string           `json:"error,omitempty"`
	Message        string           `json:"message,omitempty"`
	TimeoutReached bool             `json:"timeout_reached,omitempty"`
	Attempts       int              `json:"attempts"`
}

func exhaustedError(attempts int) string {
	return fmt.Sprintf("%d attempts exhausted", attempts)
}

func terminalFailure(order *orders.Snapshot, attempts int) Result {
	res := Result{
		Completed: true,
		Order:     order,
		Error:     ErrOrderFailed,
		Message:   MsgOrderFailed,
		Attempts:  attempts,
	}
	if order.Status == orders.StatusCancelled {
		res.Error = ErrOrderCancelled
		res.Message = MsgOrderCancelled
	}
	return res
}
