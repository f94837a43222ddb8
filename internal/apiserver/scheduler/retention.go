package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper is anything the scheduler can run on an interval
type Sweeper interface {
	Cleanup(ctx context.Context) error
}

// RetentionScheduler runs the voice memo retention sweep in the
// background.
type RetentionScheduler struct {
	logger   *zap.Logger
	sweeper  Sweeper
	interval time.Duration

	ctx          context.Context
	cancel       context.CancelFunc
	running      bool
	runningMutex sync.RWMutex
	lastRun      time.Time
	lastError    error
	statusMutex  sync.RWMutex
}

// NewRetentionScheduler creates a retention scheduler
func NewRetentionScheduler(sweeper Sweeper, interval time.Duration, logger *zap.Logger) *RetentionScheduler {
	return &RetentionScheduler{
		logger:   logger.Named("scheduler.retention"),
		sweeper:  sweeper,
		interval: interval,
	}
}

// Start launches the sweep loop. Idempotent; an immediate sweep runs
// before the first tick.
func (s *RetentionScheduler) Start() {
	s.runningMutex.Lock()
	defer s.runningMutex.Unlock()
	if s.running {
		return
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.running = true

	go s.run()
	s.logger.Info("retention scheduler started", zap.Duration("interval", s.interval))
}

// Stop halts the sweep loop
func (s *RetentionScheduler) Stop() {
	s.runningMutex.Lock()
	defer s.runningMutex.Unlock()
	if !s.running {
		return
	}
	s.cancel()
	s.running = false
	s.logger.Info("retention scheduler stopped")
}

// IsRunning reports whether the loop is active
func (s *RetentionScheduler) IsRunning() bool {
	s.runningMutex.RLock()
	defer s.runningMutex.RUnlock()
	return s.running
}

// LastRun returns the completion time and error of the most recent sweep
func (s *RetentionScheduler) LastRun() (time.Time, error) {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	return s.lastRun, s.lastError
}

func (s *RetentionScheduler) run() {
	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *RetentionScheduler) sweep() {
	err := s.sweeper.Cleanup(s.ctx)
	if err != nil {
		s.logger.Error("retention sweep failed", zap.Error(err))
	}

	s.statusMutex.Lock()
	s.lastRun = time.Now()
	s.lastError = err
	s.statusMutex.Unlock()
}
