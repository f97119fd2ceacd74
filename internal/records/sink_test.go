package records

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryWriter struct {
	mu          sync.Mutex
	attempts    []Attempt
	settlements []Settlement
	err         error
}

func (w *memoryWriter) WriteAttempt(_ context.Context, a Attempt) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attempts = append(w.attempts, a)
	return w.err
}

func (w *memoryWriter) WriteSettlement(_ context.Context, s Settlement) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.settlements = append(w.settlements, s)
	return w.err
}

type mapResolver map[string]string

func (m mapResolver) ResolveDBID(_ context.Context, orderID string) (string, error) {
	id, ok := m[orderID]
	if !ok {
		return "", errors.New("unknown order")
	}
	return id, nil
}

type blockingResolver struct{ release chan struct{} }

func (b blockingResolver) ResolveDBID(_ context.Context, orderID string) (string, error) {
	<-b.release
	return orderID, nil
}

func TestSink_ResolvesAndFansOut(t *testing.T) {
	w1, w2 := &memoryWriter{}, &memoryWriter{}
	s := NewSink(mapResolver{"o-1": "db-1"}, nil, 8, w1, w2)

	require.NoError(t, s.RecordAttempt(context.Background(), Attempt{OrderID: "o-1", AttemptNumber: 1}))
	require.NoError(t, s.RecordSettlement(context.Background(), Settlement{OrderID: "o-1"}))
	s.Close()

	for _, w := range []*memoryWriter{w1, w2} {
		require.Len(t, w.attempts, 1)
		require.Equal(t, "db-1", w.attempts[0].OrderDBID)
		require.Len(t, w.settlements, 1)
		require.Equal(t, "db-1", w.settlements[0].OrderDBID)
	}
}

func TestSink_SkipsUnresolvedOrders(t *testing.T) {
	w := &memoryWriter{}
	s := NewSink(mapResolver{}, nil, 8, w)

	require.NoError(t, s.RecordAttempt(context.Background(), Attempt{OrderID: "ghost"}))
	s.Close()

	require.Empty(t, w.attempts)
}

func TestSink_WriterErrorsDoNotStopTheSink(t *testing.T) {
	failing := &memoryWriter{err: errors.New("throttled")}
	ok := &memoryWriter{}
	s := NewSink(nil, nil, 8, failing, ok)

	require.NoError(t, s.RecordAttempt(context.Background(), Attempt{OrderID: "o", AttemptNumber: 1}))
	require.NoError(t, s.RecordAttempt(context.Background(), Attempt{OrderID: "o", AttemptNumber: 2}))
	s.Close()

	require.Len(t, ok.attempts, 2)
	require.Len(t, failing.attempts, 2)
}

func TestSink_FullBufferDropsWithoutBlocking(t *testing.T) {
	release := make(chan struct{})
	w := &memoryWriter{}
	s := NewSink(blockingResolver{release: release}, nil, 1, w)

	// the first record is picked up by the writer and blocks in the resolver,
	// the second fills the buffer, the third is dropped.
	require.NoError(t, s.RecordAttempt(context.Background(), Attempt{OrderID: "o", AttemptNumber: 1}))
	var dropped bool
	for i := 2; i < 10; i++ {
		if err := s.RecordAttempt(context.Background(), Attempt{OrderID: "o", AttemptNumber: i}); errors.Is(err, ErrSinkFull) {
			dropped = true
			break
		}
	}
	require.True(t, dropped)

	close(release)
	s.Close()
}

func TestSink_RejectsAfterClose(t *testing.T) {
	s := NewSink(nil, nil, 1)
	s.Close()
	s.Close()

	require.ErrorIs(t, s.RecordAttempt(context.Background(), Attempt{OrderID: "o"}), ErrSinkClosed)
}

func TestSink_FlushWaitsForQueuedRecords(t *testing.T) {
	w := &memoryWriter{}
	s := NewSink(nil, nil, 8, w)
	defer s.Close()

	for i := 1; i <= 3; i++ {
		require.NoError(t, s.RecordAttempt(context.Background(), Attempt{OrderID: "o", AttemptNumber: i}))
	}
	require.NoError(t, s.Flush(context.Background()))

	w.mu.Lock()
	defer w.mu.Unlock()
	require.Len(t, w.attempts, 3)
}

func TestSink_FlushHonorsContext(t *testing.T) {
	release := make(chan struct{})
	s := NewSink(blockingResolver{release: release}, nil, 8, &memoryWriter{})
	require.NoError(t, s.RecordAttempt(context.Background(), Attempt{OrderID: "o"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.Flush(ctx), context.Canceled)

	close(release)
	s.Close()
	require.ErrorIs(t, s.Flush(context.Background()), ErrSinkClosed)
}
