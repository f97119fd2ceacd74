package polling

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-payout-settlement/internal/orders"
)

// AmountTolerance is the largest absolute difference between requested and
// paid amounts that still counts as a match.
var AmountTolerance = decimal.RequireFromString("0.01")

// ReasonVerified is the reason reported when every layer passes.
const ReasonVerified = "settlement verified through three-layer check"

// Verification is the verdict of a settlement check.
type Verification struct {
	Verified bool             `json:"verified"`
	Reason   string           `json:"reason"`
	Order    *orders.Snapshot `json:"order,omitempty"`
}

// Verifier checks a settlement against the provider's current view of the order.
type Verifier struct {
	client StatusClient
}

// NewVerifier returns a Verifier reading through client.
func NewVerifier(client StatusClient) *Verifier {
	return &Verifier{client: client}
}

// VerifySettlement fetches orderID and runs Verify on it. It has no side
// effects. The error is non-nil only when the order could not be fetched.
func (v *Verifier) VerifySettlement(ctx context.Context, orderID string) (Verification, error) {
	order, err := v.client.GetOrderStatus(ctx, orderID)
	if err == nil && order == nil {
		err = errEmptySnapshot
	}
	if err != nil {
		return Verification{Reason: fmt.Sprintf("unable to fetch order: %v", err)}, err
	}
	return Verify(order), nil
}

// Verify runs the status, proof and amount checks in order and stops at the
// first failure.
func Verify(order *orders.Snapshot) Verification {
	res := Verification{Order: order}

	if !order.Status.IsSuccess() {
		res.Reason = fmt.Sprintf("order not settled (status: %s)", order.ObservedStatus())
		return res
	}

	if strings.TrimSpace(order.TransactionHash) == "" {
		res.Reason = "missing transaction hash"
		return res
	}

	// skipped when the provider reports no paid amount
	if order.AmountPaid.Valid {
		requested, paid := order.Amount, order.AmountPaid.Decimal
		if !requested.Valid || requested.Decimal.Sub(paid).Abs().GreaterThanOrEqual(AmountTolerance) {
			res.Reason = fmt.Sprintf("amount mismatch: expected %s, paid %s", formatAmount(requested), paid.String())
			return res
		}
	}

	res.Verified = true
	res.Reason = ReasonVerified
	return res
}

func formatAmount(d decimal.NullDecimal) string {
	if !d.Valid {
		return "unknown"
	}
	return d.Decimal.String()
}
