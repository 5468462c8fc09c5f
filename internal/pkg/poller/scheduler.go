package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler drives the poller on a fixed tick. A tick that finds the
// previous one still running is skipped, so a slow endpoint can never stack
// concurrent passes.
type Scheduler struct {
	poller   *Poller
	interval time.Duration
	logger   *slog.Logger

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler ticking at the given interval.
func NewScheduler(p *Poller, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		poller:   p,
		interval: interval,
		logger:   logger,
	}
}

// Start begins ticking in the background. The first pass runs immediately.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("polling scheduler started", "interval", s.interval)
}

// Stop cancels the tick loop and waits for an in-flight pass to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping polling scheduler")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("polling scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var passes sync.WaitGroup
	defer passes.Wait()

	s.tick(ctx, &passes)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, &passes)
		}
	}
}

// tick starts one pass in its own goroutine so the ticker keeps firing; the
// guard turns an overlapping fire into a skip instead of a queue.
func (s *Scheduler) tick(ctx context.Context, passes *sync.WaitGroup) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("previous poll pass still running, skipping tick")
		return
	}

	passes.Add(1)
	go func() {
		defer passes.Done()
		defer s.running.Store(false)
		s.runPass(ctx)
	}()
}

func (s *Scheduler) runPass(ctx context.Context) {
	start := time.Now()
	if err := s.poller.RunTick(ctx, start); err != nil {
		s.logger.Error("poll pass failed", "error", err, "duration", time.Since(start))
	}
}
