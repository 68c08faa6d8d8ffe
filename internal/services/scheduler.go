package services

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// staleAttemptAge is how long a checkout may stay pending before its key is released
const staleAttemptAge = 15 * time.Minute

// SchedulerService runs periodic housekeeping: expired sessions and stuck checkout attempts
type SchedulerService struct {
	sessions *SessionService
	checkout *CheckoutService
	logger   *zap.Logger
	ticker   *time.Ticker
	stopChan chan bool
	stopOnce sync.Once
	now      func() time.Time
}

// NewSchedulerService creates a new scheduler service. checkout may be nil.
func NewSchedulerService(sessions *SessionService, checkout *CheckoutService, logger *zap.Logger) *SchedulerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulerService{
		sessions: sessions,
		checkout: checkout,
		logger:   logger,
		stopChan: make(chan bool),
		now:      time.Now,
	}
}

// Start begins the scheduler with a specified interval. A non-positive
// interval leaves it idle.
func (s *SchedulerService) Start(interval time.Duration) {
	if interval <= 0 {
		s.logger.Warn("scheduler not started", zap.Duration("interval", interval))
		return
	}
	s.ticker = time.NewTicker(interval)

	s.logger.Info("scheduler started", zap.Duration("interval", interval))

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.RunOnce()
			case <-s.stopChan:
				s.logger.Info("scheduler stopped")
				return
			}
		}
	}()
}

// Stop stops the scheduler
func (s *SchedulerService) Stop() {
	s.stopOnce.Do(func() {
		if s.ticker != nil {
			s.ticker.Stop()
			s.stopChan <- true
		}
	})
}

// RunOnce executes every housekeeping task once
func (s *SchedulerService) RunOnce() {
	s.cleanupSessions()
	s.releaseStaleAttempts()
}

func (s *SchedulerService) cleanupSessions() {
	deleted, err := s.sessions.DeleteExpired(s.now())
	if err != nil {
		s.logger.Error("failed to clean up sessions", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("cleaned up expired sessions", zap.Int64("count", deleted))
	}
}

func (s *SchedulerService) releaseStaleAttempts() {
	if s.checkout == nil {
		return
	}
	released, err := s.checkout.FailStaleAttempts(s.now().Add(-staleAttemptAge))
	if err != nil {
		s.logger.Error("failed to release stale checkout attempts", zap.Error(err))
		return
	}
	if released > 0 {
		s.logger.Warn("released stale checkout attempts", zap.Int64("count", released))
	}
}
