package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const defaultRunInterval = 24 * time.Hour

var ErrRunInProgress = errors.New("batch run already in progress")

// BatchRun executes one batch.
type BatchRun interface {
	Run(ctx context.Context) (Summary, error)
}

// Scheduler runs the batch on a fixed interval and on demand. Runs never
// overlap.
type Scheduler struct {
	runner   BatchRun
	interval time.Duration
	logger   *zap.Logger

	running atomic.Bool
	mu      sync.RWMutex
	last    *Summary
	wg      sync.WaitGroup
	baseCtx context.Context
}

func NewScheduler(runner BatchRun, interval time.Duration, logger *zap.Logger) (*Scheduler, error) {
	if runner == nil {
		return nil, errors.New("batch runner is required")
	}
	if interval <= 0 {
		interval = defaultRunInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
		baseCtx:  context.Background(),
	}, nil
}

// Start blocks until ctx is done. The first run starts immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// Trigger starts a run in the background. It returns ErrRunInProgress when
// a run is already executing.
func (s *Scheduler) Trigger() error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}

	s.mu.RLock()
	ctx := s.baseCtx
	s.mu.RUnlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)
		s.execute(ctx)
	}()
	return nil
}

// LastSummary returns the summary of the most recent finished run.
func (s *Scheduler) LastSummary() (Summary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return Summary{}, false
	}
	return *s.last, true
}

// Running reports whether a run is executing.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Info("previous batch run still in progress, skipping tick")
		return
	}
	defer s.running.Store(false)
	s.execute(ctx)
}

func (s *Scheduler) execute(ctx context.Context) {
	summary, err := s.runner.Run(ctx)
	if err != nil && ctx.Err() == nil {
		s.logger.Error("scheduled batch run failed", zap.Error(err))
	}

	s.mu.Lock()
	s.last = &summary
	s.mu.Unlock()
}
