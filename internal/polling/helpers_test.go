package polling

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-payout-settlement/internal/orders"
	"github.com/imrishuroy/go-payout-settlement/internal/records"
)

// scriptedClient replays responses in order and repeats the last one.
type scriptedClient struct {
	mu        sync.Mutex
	responses []response
	calls     int
}

type response struct {
	status orders.Status
	err    error
}

func (c *scriptedClient) GetOrderStatus(ctx context.Context, orderID string) (*orders.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.calls
	if i >= len(c.responses) {
		i = len(c.responses) - 1
	}
	c.calls++
	r := c.responses[i]
	if r.err != nil {
		return nil, r.err
	}
	snap := &orders.Snapshot{
		OrderID:   orderID,
		Status:    r.status,
		RawStatus: string(r.status),
		Amount:    decimal.NewNullDecimal(decimal.RequireFromString("100")),
	}
	if r.status == orders.StatusSettled {
		snap.TransactionHash = "0xabc"
		snap.AmountPaid = decimal.NewNullDecimal(decimal.RequireFromString("100"))
	}
	return snap, nil
}

func (c *scriptedClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func repeat(status orders.Status, n int) []response {
	out := make([]response, n)
	for i := range out {
		out[i] = response{status: status}
	}
	return out
}

// fakeClock advances only when the orchestrator sleeps.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sleeps = append(f.sleeps, d)
	f.now = f.now.Add(d)
	return nil
}

type memRecorder struct {
	mu          sync.Mutex
	attempts    []records.Attempt
	settlements []records.Settlement
	err         error
}

func (m *memRecorder) RecordAttempt(_ context.Context, a records.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, a)
	return m.err
}

func (m *memRecorder) RecordSettlement(_ context.Context, s records.Settlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settlements = append(m.settlements, s)
	return m.err
}

func (m *memRecorder) AttemptCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.attempts)
}

func newTestOrchestrator(client StatusClient, rec *memRecorder, clock *fakeClock) *Orchestrator {
	o := NewOrchestrator(client, rec, rec, nil)
	o.nowFunc = clock.Now
	o.sleepFunc = clock.Sleep
	return o
}

var errUpstream = errors.New("connection reset by peer")
