package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	appbilling "github.com/invoiceapp/backend/internal/application/billing"
	"go.uber.org/zap"
)

// ErrSchedulerNotRunning is returned when triggering a stopped scheduler
var ErrSchedulerNotRunning = errors.New("sweep scheduler is not running")

// SweepRunner executes one overdue sweep as of a reference time
type SweepRunner interface {
	Run(ctx context.Context, now time.Time) (appbilling.SweepResult, error)
}

// SweepSchedulerConfig holds configuration for the daily sweep trigger
type SweepSchedulerConfig struct {
	// Hour and Minute give the local time of day to run the sweep
	Hour   int
	Minute int

	// CheckInterval is how often to check whether it is time to run
	CheckInterval time.Duration

	// RunTimeout bounds a single sweep execution
	RunTimeout time.Duration
}

// DefaultSweepSchedulerConfig returns default sweep trigger configuration
func DefaultSweepSchedulerConfig() SweepSchedulerConfig {
	return SweepSchedulerConfig{
		Hour:          0,
		Minute:        10,
		CheckInterval: time.Minute,
		RunTimeout:    10 * time.Minute,
	}
}

// SweepScheduler runs the overdue sweep once per day at a configured
// local time. A sweep that fails is not retried until the next day;
// the sweep itself is idempotent, so the next run simply picks up
// whatever is still pending.
type SweepScheduler struct {
	config SweepSchedulerConfig
	runner SweepRunner
	logger *zap.Logger

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewSweepScheduler creates a new SweepScheduler
func NewSweepScheduler(config SweepSchedulerConfig, runner SweepRunner, logger *zap.Logger) *SweepScheduler {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = 10 * time.Minute
	}
	return &SweepScheduler{
		config: config,
		runner: runner,
		logger: logger,
	}
}

// Start starts the scheduler loop
func (s *SweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Overdue sweep scheduler started",
		zap.Int("hour", s.config.Hour),
		zap.Int("minute", s.config.Minute),
		zap.Duration("check_interval", s.config.CheckInterval),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *SweepScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Overdue sweep scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Overdue sweep scheduler stop timed out")
		return ctx.Err()
	}
}

// TriggerNow runs a sweep immediately, outside the daily schedule
func (s *SweepScheduler) TriggerNow(ctx context.Context) (appbilling.SweepResult, error) {
	s.mu.Lock()
	running := s.isRunning
	s.mu.Unlock()
	if !running {
		return appbilling.SweepResult{}, ErrSchedulerNotRunning
	}
	return s.runSweep(ctx)
}

// runLoop checks periodically whether it is time to sweep
func (s *SweepScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAndTrigger(ctx)
		}
	}
}

// checkAndTrigger runs the sweep when the scheduled minute arrives and
// it has not already run today
func (s *SweepScheduler) checkAndTrigger(ctx context.Context) {
	now := time.Now()
	currentDate := now.Format("2006-01-02")

	s.mu.Lock()
	alreadyRan := s.lastRunDate == currentDate
	s.mu.Unlock()
	if alreadyRan {
		return
	}

	if now.Hour() != s.config.Hour || now.Minute() != s.config.Minute {
		return
	}

	s.mu.Lock()
	s.lastRunDate = currentDate
	s.mu.Unlock()

	s.logger.Info("Triggering daily overdue sweep")
	if _, err := s.runSweep(ctx); err != nil {
		s.logger.Error("Daily overdue sweep failed", zap.Error(err))
	}
}

// runSweep executes a single sweep with the configured timeout
func (s *SweepScheduler) runSweep(ctx context.Context) (appbilling.SweepResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	result, err := s.runner.Run(ctx, time.Now())
	if err != nil {
		return result, err
	}

	s.logger.Info("Overdue sweep finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("marked", result.Marked),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
