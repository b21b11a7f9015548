package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"logiscore/internal/config"
)

// SessionPurger deletes sessions whose tokens have expired
type SessionPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// TokenPurger clears expired verification codes and reset tokens
type TokenPurger interface {
	ClearExpiredTokens(ctx context.Context) (int64, error)
}

// Scheduler runs periodic maintenance tasks
type Scheduler struct {
	sessions SessionPurger
	tokens   TokenPurger
	config   *config.SchedulerConfig
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a new scheduler
func NewScheduler(sessions SessionPurger, tokens TokenPurger, cfg *config.SchedulerConfig) *Scheduler {
	return &Scheduler{
		sessions: sessions,
		tokens:   tokens,
		config:   cfg,
		stopChan: make(chan struct{}),
	}
}

// Start starts all scheduled tasks
func (s *Scheduler) Start() {
	if !s.config.Enabled {
		slog.Info("Scheduler disabled")
		return
	}

	interval := s.config.SessionCleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}

	s.scheduleIntervalTask(interval, "session_cleanup", s.purgeExpiredSessions)
	s.scheduleIntervalTask(interval, "token_cleanup", s.purgeExpiredTokens)

	slog.Info("Scheduler started", "cleanup_interval", interval)
}

// Stop stops all tasks and waits for a running task to finish
func (s *Scheduler) Stop() {
	slog.Info("Stopping scheduler")
	close(s.stopChan)
	s.wg.Wait()
}

// scheduleIntervalTask runs task immediately and then every interval
func (s *Scheduler) scheduleIntervalTask(interval time.Duration, taskName string, task func(context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.run(taskName, task)
		for {
			select {
			case <-ticker.C:
				s.run(taskName, task)
			case <-s.stopChan:
				return
			}
		}
	}()
}

func (s *Scheduler) run(taskName string, task func(context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	slog.Debug("Running scheduled task", "task", taskName)
	task(ctx)
}

func (s *Scheduler) purgeExpiredSessions(ctx context.Context) {
	n, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		slog.Error("Failed to purge expired sessions", "error", err)
		return
	}
	if n > 0 {
		slog.Info("Purged expired sessions", "count", n)
	}
}

func (s *Scheduler) purgeExpiredTokens(ctx context.Context) {
	n, err := s.tokens.ClearExpiredTokens(ctx)
	if err != nil {
		slog.Error("Failed to clear expired tokens", "error", err)
		return
	}
	if n > 0 {
		slog.Info("Cleared expired verification and reset tokens", "count", n)
	}
}
