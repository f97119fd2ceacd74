package polling

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultMonitorDeadline bounds MonitorPayment when no deadline is given.
	DefaultMonitorDeadline = 10 * time.Minute
	// abandonGrace is how long MonitorPayment waits for a cancelled poll run
	// to stop before returning without it.
	abandonGrace = 250 * time.Millisecond
)

// Guard bounds a poll run by an absolute deadline that is independent of the
// orchestrator's own timeout.
type Guard struct {
	orchestrator *Orchestrator
	deadline     time.Duration
	options      Options
	logger       *zap.Logger
	grace        time.Duration
}

// NewGuard returns a Guard. deadline <= 0 uses DefaultMonitorDeadline.
func NewGuard(orchestrator *Orchestrator, deadline time.Duration, opts Options) *Guard {
	if deadline <= 0 {
		deadline = DefaultMonitorDeadline
	}
	return &Guard{
		orchestrator: orchestrator,
		deadline:     deadline,
		options:      opts,
		logger:       orchestrator.logger,
		grace:        abandonGrace,
	}
}

// WithOptions returns a copy of g that polls with opts.
func (g *Guard) WithOptions(opts Options) *Guard {
	cp := *g
	cp.options = opts
	return &cp
}

// WithDeadline returns a copy of g bounded by d. d <= 0 keeps the current deadline.
func (g *Guard) WithDeadline(d time.Duration) *Guard {
	cp := *g
	if d > 0 {
		cp.deadline = d
	}
	return &cp
}

// Deadline returns the guard's deadline.
func (g *Guard) Deadline() time.Duration { return g.deadline }

// MonitorPayment polls orderID until the orchestrator concludes or the
// deadline elapses. On deadline the poll run is cancelled and the guard waits
// a short grace period for it to stop. A status call that ignores its context
// is left behind; the cancelled run records nothing once it resumes.
// The result then has Completed=false: the true outcome is unknown.
func (g *Guard) MonitorPayment(ctx context.Context, orderID string) Result {
	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan Result, 1)
	go func() {
		done <- g.orchestrator.PollOrderStatus(pollCtx, orderID, g.options)
	}()

	timer := time.NewTimer(g.deadline)
	defer timer.Stop()

	var res Result
	select {
	case r := <-done:
		if r.Error != ErrPollingCancelled {
			return r
		}
		// the parent context won the race to the orchestrator
		return Result{Error: ErrMonitoringCancelled, Message: MsgManualCheck, Attempts: r.Attempts}
	case <-timer.C:
		res = Result{
			TimeoutReached: true,
			Error:          ErrMonitoringTimeout,
			Message:        MsgManualCheck,
		}
	case <-ctx.Done():
		res = Result{
			Error:   ErrMonitoringCancelled,
			Message: MsgManualCheck,
		}
	}

	cancel()
	grace := time.NewTimer(g.grace)
	defer grace.Stop()

	stopped := true
	select {
	case abandoned := <-done:
		res.Attempts = abandoned.Attempts
	case <-grace.C:
		stopped = false
	}
	g.logger.Warn("payment monitoring abandoned",
		zap.String("order_id", orderID),
		zap.String("error", res.Error),
		zap.Duration("deadline", g.deadline),
		zap.Int("attempts", res.Attempts),
		zap.Bool("run_stopped", stopped),
	)
	return res
}
