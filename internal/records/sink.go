package records

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBuffer = 256
	writeTimeout  = 5 * time.Second
)

var (
	// ErrSinkFull is returned when the sink buffer is full and the record was dropped.
	ErrSinkFull = errors.New("record sink full")
	// ErrSinkClosed is returned for records submitted after Close.
	ErrSinkClosed = errors.New("record sink closed")
)

// Writer persists resolved records.
type Writer interface {
	WriteAttempt(ctx context.Context, a Attempt) error
	WriteSettlement(ctx context.Context, s Settlement) error
}

// Resolver maps a provider order id onto the internal order id.
type Resolver interface {
	ResolveDBID(ctx context.Context, orderID string) (string, error)
}

// PassthroughResolver uses the provider order id as the internal id.
type PassthroughResolver struct{}

// ResolveDBID implements Resolver.
func (PassthroughResolver) ResolveDBID(_ context.Context, orderID string) (string, error) {
	return orderID, nil
}

type event struct {
	attempt    *Attempt
	settlement *Settlement
	flushed    chan struct{}
}

func (e event) orderID() string {
	if e.attempt != nil {
		return e.attempt.OrderID
	}
	return e.settlement.OrderID
}

// Sink accepts records without blocking the caller and writes them from a
// single background goroutine.
type Sink struct {
	resolver Resolver
	writers  []Writer
	logger   *zap.Logger

	mu     sync.RWMutex
	closed bool
	events chan event
	done   chan struct{}
}

// NewSink starts the writer goroutine. buffer <= 0 uses the default size.
func NewSink(resolver Resolver, logger *zap.Logger, buffer int, writers ...Writer) *Sink {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver == nil {
		resolver = PassthroughResolver{}
	}
	s := &Sink{
		resolver: resolver,
		writers:  writers,
		logger:   logger,
		events:   make(chan event, buffer),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

// RecordAttempt queues a poll attempt.
func (s *Sink) RecordAttempt(_ context.Context, a Attempt) error {
	return s.enqueue(event{attempt: &a})
}

// RecordSettlement queues a settlement record.
func (s *Sink) RecordSettlement(_ context.Context, st Settlement) error {
	return s.enqueue(event{settlement: &st})
}

func (s *Sink) enqueue(ev event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrSinkClosed
	}
	select {
	case s.events <- ev:
		return nil
	default:
		return ErrSinkFull
	}
}

// Flush blocks until every record queued before the call has been written, or
// until ctx is done. Lambda handlers call it before returning so the runtime is
// not frozen with records still in the buffer.
func (s *Sink) Flush(ctx context.Context) error {
	marker := event{flushed: make(chan struct{})}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrSinkClosed
	}
	select {
	case s.events <- marker:
	case <-ctx.Done():
		s.mu.RUnlock()
		return ctx.Err()
	}
	s.mu.RUnlock()

	select {
	case <-marker.flushed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting records and waits until queued ones are written.
func (s *Sink) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	s.mu.Unlock()
	<-s.done
}

func (s *Sink) run() {
	defer close(s.done)
	for ev := range s.events {
		if ev.flushed != nil {
			close(ev.flushed)
			continue
		}
		s.write(ev)
	}
}

func (s *Sink) write(ev event) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	orderID := ev.orderID()
	dbID, err := s.resolver.ResolveDBID(ctx, orderID)
	if err != nil {
		s.logger.Warn("skip recording: order id not resolved",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return
	}

	for _, w := range s.writers {
		if ev.attempt != nil {
			a := *ev.attempt
			a.OrderDBID = dbID
			if err := w.WriteAttempt(ctx, a); err != nil {
				s.logger.Warn("write poll attempt failed",
					zap.String("order_id", orderID),
					zap.Int("attempt", a.AttemptNumber),
					zap.Error(err),
				)
			}
			continue
		}
		st := *ev.settlement
		st.OrderDBID = dbID
		if err := w.WriteSettlement(ctx, st); err != nil {
			s.logger.Warn("write settlement failed",
				zap.String("order_id", orderID),
				zap.Error(err),
			)
		}
	}
}

// LogWriter writes records to the logger only.
type LogWriter struct {
	Logger *zap.Logger
}

// WriteAttempt implements Writer.
func (w LogWriter) WriteAttempt(_ context.Context, a Attempt) error {
	w.Logger.Info("poll attempt",
		zap.String("order_id", a.OrderID),
		zap.Int("attempt", a.AttemptNumber),
		zap.String("status", a.Status),
		zap.Duration("response_time", a.ResponseTime),
		zap.String("error", a.ErrorMessage),
	)
	return nil
}

// WriteSettlement implements Writer.
func (w LogWriter) WriteSettlement(_ context.Context, st Settlement) error {
	w.Logger.Info("settlement",
		zap.String("order_id", st.OrderID),
		zap.String("tx_hash", st.TransactionHash),
		zap.Float64("settlement_seconds", st.SettlementSeconds),
		zap.String("amount_paid", st.AmountPaidString()),
	)
	return nil
}
