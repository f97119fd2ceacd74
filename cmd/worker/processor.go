package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-payout-settlement/internal/idempotency"
	"github.com/imrishuroy/go-payout-settlement/internal/orders"
	"github.com/imrishuroy/go-payout-settlement/internal/polling"
	"github.com/imrishuroy/go-payout-settlement/internal/validation"
)

// ClaimStore guards a monitoring run against duplicate deliveries.
type ClaimStore interface {
	Claim(ctx context.Context, key, orderID string, lease time.Duration) (idempotency.ClaimResult, *idempotency.IdempotencyRecord, error)
	MarkDone(ctx context.Context, key, responseBody string) error
	MarkFailed(ctx context.Context, key, note string) error
}

// OrderStore mirrors provider status onto the order record.
type OrderStore interface {
	Register(ctx context.Context, orderID string) (*orders.Order, error)
	UpdateStatus(ctx context.Context, orderID string, expectedStatus, newStatus orders.Status) error
}

// Flusher drains buffered attempt and settlement records.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Processor handles SQS monitor messages: one guarded poll run per order.
type Processor struct {
	claims   ClaimStore
	orders   OrderStore
	guard    *polling.Guard
	defaults polling.Options
	flusher  Flusher
	validate *validatorv10.Validate
	logger   *zap.Logger
}

// NewProcessor creates a new worker processor. flusher may be nil.
func NewProcessor(claims ClaimStore, orderStore OrderStore, guard *polling.Guard, defaults polling.Options, flusher Flusher, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		claims:   claims,
		orders:   orderStore,
		guard:    guard,
		defaults: defaults,
		flusher:  flusher,
		validate: validation.New(),
		logger:   logger,
	}
}

// errRetry marks an outcome that should be redelivered by SQS.
var errRetry = errors.New("monitoring inconclusive")

// leaseSlack keeps a claim alive past its run's deadline.
const leaseSlack = time.Minute

// Handle processes each record independently and reports the ones to retry
// as batch item failures.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			p.logger.Warn("monitor message failed",
				zap.String("message_id", rec.MessageId),
				zap.Error(err),
			)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: rec.MessageId,
			})
		}
	}
	if p.flusher != nil {
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.flusher.Flush(flushCtx); err != nil {
			p.logger.Warn("flush records failed", zap.Error(err))
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg validation.MonitorMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		// redelivery cannot fix a malformed body
		p.logger.Error("dropping malformed monitor message", zap.String("message_id", rec.MessageId), zap.Error(err))
		return nil
	}
	if err := p.validate.Struct(msg); err != nil {
		p.logger.Error("dropping invalid monitor message", zap.String("message_id", rec.MessageId), zap.Error(err))
		return nil
	}

	log := p.logger.With(
		zap.String("order_id", msg.OrderID),
		zap.String("correlation_id", msg.CorrelationID),
	)
	key := idempotency.MonitorKey(msg.OrderID)
	deadline := msg.Deadline(p.guard.Deadline())

	claim, existing, err := p.claims.Claim(ctx, key, msg.OrderID, deadline+leaseSlack)
	if err != nil {
		return fmt.Errorf("claim %s: %w", key, err)
	}
	switch claim {
	case idempotency.AlreadyDone:
		log.Info("monitoring already concluded", zap.String("result", existing.ResponseBody))
		return nil
	case idempotency.InFlight:
		log.Info("monitoring already in flight", zap.Int64("lease_until", existing.LeaseUntil))
		return nil
	}

	opts := msg.Options.ToOptions(p.defaults)
	if err := opts.Validate(); err != nil {
		log.Error("rejecting monitor options", zap.Error(err))
		if err := p.claims.MarkFailed(ctx, key, err.Error()); err != nil {
			return fmt.Errorf("mark failed: %w", err)
		}
		return nil
	}

	order, err := p.orders.Register(ctx, msg.OrderID)
	if err != nil {
		if mErr := p.claims.MarkFailed(ctx, key, fmt.Sprintf("register order: %v", err)); mErr != nil {
			// the claim stays IN_PROGRESS until its lease expires
			log.Warn("mark claim failed", zap.Error(mErr))
		}
		return fmt.Errorf("register order: %w", err)
	}

	guard := p.guard.WithOptions(opts).WithDeadline(deadline)
	res := guard.MonitorPayment(ctx, msg.OrderID)

	if res.Order != nil && res.Order.Status != orders.StatusUnrecognized && res.Order.Status != order.Status {
		err := p.orders.UpdateStatus(ctx, msg.OrderID, order.Status, res.Order.Status)
		if errors.Is(err, orders.ErrStatusMismatch) {
			log.Warn("order status changed concurrently", zap.String("status", string(res.Order.Status)))
		} else if err != nil {
			log.Error("mirror order status failed", zap.Error(err))
		}
	}

	body, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	if !res.Completed {
		if err := p.claims.MarkFailed(ctx, key, res.Error); err != nil {
			return fmt.Errorf("mark failed: %w", err)
		}
		return fmt.Errorf("%w: %s", errRetry, res.Error)
	}

	if err := p.claims.MarkDone(ctx, key, string(body)); err != nil {
		return fmt.Errorf("mark done: %w", err)
	}
	log.Info("monitoring concluded",
		zap.Bool("success", res.Success),
		zap.String("error", res.Error),
		zap.Int("attempts", res.Attempts),
	)
	return nil
}
