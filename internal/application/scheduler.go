package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wms-platform/exception-service/pkg/logging"
)

// SchedulerConfig holds the cadences of the two periodic jobs.
type SchedulerConfig struct {
	SweepInterval      time.Duration
	CompletionInterval time.Duration
}

// DefaultSchedulerConfig runs both jobs once per minute.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		SweepInterval:      time.Minute,
		CompletionInterval: time.Minute,
	}
}

// Scheduler drives the engine's two periodic jobs on independent
// cadences. A failed or panicking run never stops the cadence; the next
// tick fires regardless.
type Scheduler struct {
	service *ExceptionService
	config  SchedulerConfig
	logger  *logging.Logger

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	done     sync.WaitGroup
}

// NewScheduler creates a scheduler for the given engine.
func NewScheduler(service *ExceptionService, config SchedulerConfig, logger *logging.Logger) *Scheduler {
	if config.SweepInterval <= 0 {
		config.SweepInterval = time.Minute
	}
	if config.CompletionInterval <= 0 {
		config.CompletionInterval = time.Minute
	}

	return &Scheduler{
		service: service,
		config:  config,
		logger:  logger.WithComponent("scheduler"),
	}
}

// Start launches both periodic loops.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}
	s.running = true
	s.stopChan = make(chan struct{})

	s.done.Add(2)
	go s.runLoop(ctx, "exception-sweep", s.config.SweepInterval, s.service.HandleExceptions)
	go s.runLoop(ctx, "pick-completions", s.config.CompletionInterval, s.service.ProcessCompletedPicks)

	s.logger.Info("Scheduler started",
		"sweepInterval", s.config.SweepInterval.String(),
		"completionInterval", s.config.CompletionInterval.String(),
	)
	return nil
}

// Stop halts both loops and waits for them to exit. In-flight runs
// finish; there is no cross-task cancellation.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	s.running = false
	s.mu.Unlock()

	s.done.Wait()
	s.logger.Info("Scheduler stopped")
}

// IsRunning reports whether the loops are active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) runLoop(ctx context.Context, job string, interval time.Duration, run func(context.Context)) {
	defer s.done.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runGuarded(ctx, job, run)
		}
	}
}

// runGuarded keeps a panicking run from killing the loop.
func (s *Scheduler) runGuarded(ctx context.Context, job string, run func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Scheduled job panicked", "job", job, "panic", fmt.Sprintf("%v", r))
		}
	}()

	run(ctx)
}
