package polling

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/imrishuroy/go-payout-settlement/internal/orders"
	"github.com/imrishuroy/go-payout-settlement/internal/records"
)

var errEmptySnapshot = errors.New("status client returned no order")

// Orchestrator polls a provider order until it reaches a terminal status, the
// attempt budget runs out, or the run times out. It holds no per-run state, so
// one Orchestrator may poll many orders concurrently.
type Orchestrator struct {
	client      StatusClient
	attempts    AttemptRecorder
	settlements SettlementRecorder
	logger      *zap.Logger

	nowFunc   func() time.Time
	sleepFunc func(ctx context.Context, d time.Duration) error
}

// NewOrchestrator wires an orchestrator. Recorders may be nil.
func NewOrchestrator(client StatusClient, attempts AttemptRecorder, settlements SettlementRecorder, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		client:      client,
		attempts:    attempts,
		settlements: settlements,
		logger:      logger,
		nowFunc:     time.Now,
		sleepFunc:   sleepCtx,
	}
}

// PollOrderStatus runs the poll loop for orderID. The outcome is always
// reported through Result; ctx cancellation stops the loop at the next call or
// sleep and suppresses any further recording.
func (o *Orchestrator) PollOrderStatus(ctx context.Context, orderID string, opts Options) Result {
	if err := opts.Validate(); err != nil {
		return Result{Completed: true, Error: ErrInvalidOptions, Message: err.Error()}
	}
	opts = opts.WithDefaults()
	log := o.logger.With(zap.String("order_id", orderID))

	start := o.nowFunc()
	attempts := 0
	for attempts < opts.MaxAttempts {
		if ctx.Err() != nil {
			return cancelled(attempts)
		}
		if elapsed := o.nowFunc().Sub(start); elapsed > opts.Timeout {
			log.Info("polling timed out", zap.Duration("elapsed", elapsed), zap.Int("attempts", attempts))
			return Result{
				Completed:      true,
				TimeoutReached: true,
				Error:          ErrTimeout,
				Message:        MsgManualCheck,
				Attempts:       attempts,
			}
		}

		callStart := o.nowFunc()
		order, err := o.client.GetOrderStatus(ctx, orderID)
		responseTime := o.nowFunc().Sub(callStart)
		if err == nil && order == nil {
			err = errEmptySnapshot
		}
		if ctx.Err() != nil {
			return cancelled(attempts)
		}
		attempts++

		if err != nil {
			o.recordAttempt(ctx, log, records.Attempt{
				OrderID:       orderID,
				AttemptNumber: attempts,
				Status:        records.StatusError,
				ResponseTime:  responseTime,
				ErrorMessage:  err.Error(),
				Timestamp:     o.nowFunc(),
			})
			if attempts >= opts.MaxAttempts {
				log.Warn("status calls exhausted", zap.Int("attempts", attempts), zap.Error(err))
				return Result{
					Completed: true,
					Error:     exhaustedError(attempts),
					Message:   MsgProviderDown,
					Attempts:  attempts,
				}
			}
			delay := LinearDelay(opts, attempts)
			log.Warn("status call failed, retrying",
				zap.Int("attempt", attempts),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
			if err := o.sleepFunc(ctx, delay); err != nil {
				return cancelled(attempts)
			}
			continue
		}

		o.recordAttempt(ctx, log, records.Attempt{
			OrderID:       orderID,
			AttemptNumber: attempts,
			Status:        order.ObservedStatus(),
			ResponseTime:  responseTime,
			Timestamp:     o.nowFunc(),
		})

		switch {
		case order.Status.IsSuccess():
			elapsed := o.nowFunc().Sub(start)
			o.recordSettlement(ctx, log, orderID, order, elapsed)
			log.Info("order settled", zap.Int("attempts", attempts), zap.Duration("elapsed", elapsed))
			return Result{
				Success:   true,
				Completed: true,
				Order:     order,
				Message:   MsgSettled,
				Attempts:  attempts,
			}
		case order.Status.IsFailure():
			log.Info("order reached terminal failure", zap.String("status", string(order.Status)))
			return terminalFailure(order, attempts)
		}

		if attempts >= opts.MaxAttempts {
			break
		}
		delay := ExponentialDelay(opts, attempts)
		log.Debug("order still processing",
			zap.Int("attempt", attempts),
			zap.String("status", order.ObservedStatus()),
			zap.Duration("delay", delay),
		)
		if err := o.sleepFunc(ctx, delay); err != nil {
			return cancelled(attempts)
		}
	}

	log.Info("polling attempts exhausted", zap.Int("attempts", attempts))
	return Result{
		Completed: true,
		Error:     ErrMaxAttempts,
		Message:   MsgStillPending,
		Attempts:  attempts,
	}
}

func (o *Orchestrator) recordAttempt(ctx context.Context, log *zap.Logger, a records.Attempt) {
	if o.attempts == nil || ctx.Err() != nil {
		return
	}
	if err := o.attempts.RecordAttempt(ctx, a); err != nil {
		log.Warn("record poll attempt failed", zap.Int("attempt", a.AttemptNumber), zap.Error(err))
	}
}

func (o *Orchestrator) recordSettlement(ctx context.Context, log *zap.Logger, orderID string, order *orders.Snapshot, elapsed time.Duration) {
	if o.settlements == nil || ctx.Err() != nil {
		return
	}
	s := records.Settlement{
		OrderID:           orderID,
		Status:            string(order.Status),
		SettlementSeconds: elapsed.Seconds(),
		TransactionHash:   order.TransactionHash,
		AmountPaid:        order.AmountPaid,
		RecipientAccount:  order.Recipient.AccountIdentifier,
		RecipientName:     order.Recipient.AccountName,
		Currency:          order.Recipient.Currency,
		Timestamp:         o.nowFunc(),
	}
	if err := o.settlements.RecordSettlement(ctx, s); err != nil {
		log.Warn("record settlement failed", zap.Error(err))
	}
}

func cancelled(attempts int) Result {
	return Result{
		Error:    ErrPollingCancelled,
		Message:  MsgManualCheck,
		Attempts: attempts,
	}
}
