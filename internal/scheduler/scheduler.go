package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/BatmanBruc/yt-audio-bot/internal/telemetry"
	"github.com/BatmanBruc/yt-audio-bot/types"
)

var ErrStopped = errors.New("scheduler stopped")

// Handler runs one event to completion.
type Handler func(ctx context.Context, ev types.Event)

type Scheduler struct {
	handle  Handler
	workers int
	log     zerolog.Logger

	// ctx cancels running handlers once Stop gives up waiting.
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	running bool
	queue   chan job
}

type job struct {
	ctx context.Context
	ev  types.Event
}

type Config struct {
	Workers   int
	QueueSize int
}

func NewScheduler(handle Handler, config Config, log zerolog.Logger) *Scheduler {
	if config.Workers <= 0 {
		config.Workers = 3
	}
	if config.QueueSize <= 0 {
		config.QueueSize = config.Workers * 2
		if config.QueueSize < 10 {
			config.QueueSize = 10
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		handle:  handle,
		workers: config.Workers,
		log:     log.With().Str("component", "scheduler").Logger(),
		ctx:     ctx,
		cancel:  cancel,
		queue:   make(chan job, config.QueueSize),
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.log.Info().Int("workers", s.workers).Msg("scheduler started")

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

// Enqueue hands ev to the pool. It blocks while the queue is full and
// returns ctx.Err() if ctx ends first. Values on ctx (logger, request id)
// reach the handler; its cancellation does not.
func (s *Scheduler) Enqueue(ctx context.Context, ev types.Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return ErrStopped
	}
	select {
	case s.queue <- job{ctx: ctx, ev: ev}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop refuses new events and waits for queued and running ones. If ctx ends
// first the remaining handlers see a cancelled context and Stop returns
// ctx.Err() once they return.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.queue)
	s.mu.Unlock()

	s.log.Info().Msg("stopping scheduler...")

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		s.log.Info().Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done
		s.log.Warn().Msg("scheduler drain timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for j := range s.queue {
		s.run(id, j)
	}
	s.log.Debug().Int("worker", id).Msg("worker stopped")
}

func (s *Scheduler) run(id int, j job) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(j.ctx))
	stop := context.AfterFunc(s.ctx, cancel)
	defer func() {
		stop()
		cancel()
	}()

	telemetry.InflightEvents.Inc()
	defer telemetry.InflightEvents.Dec()

	defer func() {
		if r := recover(); r != nil {
			s.logger(ctx).Error().
				Int("worker", id).
				Err(fmt.Errorf("panic: %v", r)).
				Msg("event handler panicked")
		}
	}()

	s.handle(ctx, j.ev)
}

func (s *Scheduler) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.log
}
