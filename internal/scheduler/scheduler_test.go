package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BatmanBruc/yt-audio-bot/types"
)

type ctxKey struct{}

func event(user types.UserID) types.Event {
	return types.Event{Message: &types.MessageEvent{UserID: user, ChatID: int64(user), Text: "x"}}
}

func TestSchedulerRunsEveryEvent(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []types.UserID
	)
	s := NewScheduler(func(ctx context.Context, ev types.Event) {
		mu.Lock()
		seen = append(seen, ev.UserID())
		mu.Unlock()
	}, Config{Workers: 4}, zerolog.Nop())
	s.Start()

	for i := 1; i <= 50; i++ {
		require.NoError(t, s.Enqueue(context.Background(), event(types.UserID(i))))
	}
	require.NoError(t, s.Stop(context.Background()))

	assert.Len(t, seen, 50)
}

func TestSchedulerCapsConcurrency(t *testing.T) {
	var current, peak int32
	s := NewScheduler(func(ctx context.Context, ev types.Event) {
		n := atomic.AddInt32(&current, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&current, -1)
	}, Config{Workers: 3}, zerolog.Nop())
	s.Start()

	for i := 0; i < 30; i++ {
		require.NoError(t, s.Enqueue(context.Background(), event(1)))
	}
	require.NoError(t, s.Stop(context.Background()))

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestSchedulerKeepsValuesDropsCancellation(t *testing.T) {
	got := make(chan context.Context, 1)
	s := NewScheduler(func(ctx context.Context, ev types.Event) {
		got <- ctx
	}, Config{Workers: 1}, zerolog.Nop())
	s.Start()
	defer s.Stop(context.Background())

	parent, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "req-1"))
	require.NoError(t, s.Enqueue(parent, event(1)))
	cancel()

	ctx := <-got
	assert.Equal(t, "req-1", ctx.Value(ctxKey{}))
}

func TestSchedulerEnqueueAfterStop(t *testing.T) {
	s := NewScheduler(func(ctx context.Context, ev types.Event) {}, Config{}, zerolog.Nop())
	s.Start()
	require.NoError(t, s.Stop(context.Background()))

	assert.ErrorIs(t, s.Enqueue(context.Background(), event(1)), ErrStopped)
	assert.NoError(t, s.Stop(context.Background()), "second stop is a no-op")
}

func TestSchedulerEnqueueRespectsContext(t *testing.T) {
	release := make(chan struct{})
	s := NewScheduler(func(ctx context.Context, ev types.Event) {
		<-release
	}, Config{Workers: 1, QueueSize: 1}, zerolog.Nop())
	s.Start()

	require.NoError(t, s.Enqueue(context.Background(), event(1)))
	// The worker may or may not have taken the first job yet; fill until blocked.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	var err error
	for i := 0; i < 3 && err == nil; i++ {
		err = s.Enqueue(ctx, event(2))
	}
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, s.Stop(context.Background()))
}

func TestSchedulerStopTimeoutCancelsHandlers(t *testing.T) {
	cancelled := make(chan struct{})
	s := NewScheduler(func(ctx context.Context, ev types.Event) {
		<-ctx.Done()
		close(cancelled)
	}, Config{Workers: 1}, zerolog.Nop())
	s.Start()
	require.NoError(t, s.Enqueue(context.Background(), event(1)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.Stop(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("handler context was not cancelled")
	}
}

func TestSchedulerRecoversPanics(t *testing.T) {
	var ran int32
	s := NewScheduler(func(ctx context.Context, ev types.Event) {
		if ev.UserID() == 1 {
			panic("boom")
		}
		atomic.AddInt32(&ran, 1)
	}, Config{Workers: 1}, zerolog.Nop())
	s.Start()

	require.NoError(t, s.Enqueue(context.Background(), event(1)))
	require.NoError(t, s.Enqueue(context.Background(), event(2)))
	require.NoError(t, s.Stop(context.Background()))

	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
}
