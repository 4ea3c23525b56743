package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is the work executed on every tick.
type Job func(ctx context.Context) error

// Scheduler runs a Job on a fixed interval.
type Scheduler struct {
	cfg    Config
	job    Job
	logger *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New creates a scheduler for job.
func New(cfg Config, job Job, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{cfg: cfg, job: job, logger: logger}
}

// Start runs the loop and blocks until Stop is called or ctx is done.
// It returns immediately when the scheduler is disabled or already running.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.cfg.Enabled() {
		s.logger.Info("Scheduler disabled")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	s.logger.Info("Scheduler started", zap.Duration("interval", s.cfg.Interval))

	if s.cfg.RunOnStart {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.markStopped()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// Stop ends the loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) markStopped() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *Scheduler) runOnce(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	started := time.Now()
	if err := s.job(ctx); err != nil {
		s.logger.Error("Scheduled run failed", zap.Error(err), zap.Duration("duration", time.Since(started)))
		return
	}
	s.logger.Info("Scheduled run finished", zap.Duration("duration", time.Since(started)))
}
