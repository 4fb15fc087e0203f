package scheduler

import (
	"time"

	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// FinalizeRecoverer is the part of the checkout service the scheduler drives
type FinalizeRecoverer interface {
	RecoverStuckFinalizations(before time.Time) (int, error)
}

// FinalizeRecoveryScheduler periodically resumes checkouts whose finalize
// stopped between writing the order and clearing the cart
type FinalizeRecoveryScheduler struct {
	cron      *cron.Cron
	recoverer FinalizeRecoverer
	schedule  string
	grace     time.Duration
	now       func() time.Time
}

// NewFinalizeRecoveryScheduler creates the scheduler. Checkouts touched
// within grace are left alone so in-flight requests can finish.
func NewFinalizeRecoveryScheduler(recoverer FinalizeRecoverer, schedule string, grace time.Duration) *FinalizeRecoveryScheduler {
	return &FinalizeRecoveryScheduler{
		cron:      cron.New(),
		recoverer: recoverer,
		schedule:  schedule,
		grace:     grace,
		now:       time.Now,
	}
}

func (s *FinalizeRecoveryScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		s.RunOnce()
	})
	if err != nil {
		logger.Error("Failed to add cron job for finalize recovery", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Finalize recovery scheduler started", map[string]interface{}{
		"schedule": s.schedule,
		"grace":    s.grace.String(),
	})
	return nil
}

// RunOnce performs a single recovery sweep and reports how many checkouts completed
func (s *FinalizeRecoveryScheduler) RunOnce() int {
	recovered, err := s.recoverer.RecoverStuckFinalizations(s.now().Add(-s.grace))
	if err != nil {
		logger.Error("Finalize recovery sweep failed", err)
		return 0
	}
	if recovered > 0 {
		logger.Info("Finalize recovery sweep completed", map[string]interface{}{
			"recovered": recovered,
		})
	}
	return recovered
}

func (s *FinalizeRecoveryScheduler) Stop() {
	logger.Info("Stopping finalize recovery scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Finalize recovery scheduler stopped")
}
