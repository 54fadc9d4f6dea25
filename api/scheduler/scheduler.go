package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/linesmerrill/dinebuddies-api/services"
)

const cleanupTimeout = 5 * time.Minute

// HistoryCleaner prunes expired cancellation history and restrictions
type HistoryCleaner interface {
	CleanupHistory(ctx context.Context, now time.Time) (services.CleanupReport, error)
}

// Scheduler handles periodic background jobs
type Scheduler struct {
	cron       *cron.Cron
	cleaner    HistoryCleaner
	spec       string
	now        func() time.Time
	instanceID string
}

// NewScheduler creates a new scheduler instance that runs the cleanup job on
// the given cron spec
func NewScheduler(cleaner HistoryCleaner, spec string) *Scheduler {
	// Heroku sets DYNO to "web.1", "web.2", etc.
	instanceID := os.Getenv("DYNO")
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		cleaner:    cleaner,
		spec:       spec,
		now:        time.Now,
		instanceID: instanceID,
	}
}

// Start registers the jobs and starts the cron loop
func (s *Scheduler) Start() error {
	// cleanup is idempotent, so every instance may run it without a lock
	if _, err := s.cron.AddFunc(s.spec, s.cleanupHistory); err != nil {
		return fmt.Errorf("failed to register cleanup job: %w", err)
	}

	s.cron.Start()
	zap.S().Infow("scheduler started", "cleanup", s.spec, "instance", s.instanceID)
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("scheduler stopped")
}

// cleanupHistory drops cancellations that left the penalty window and
// lifts restrictions that ran out
func (s *Scheduler) cleanupHistory() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	start := s.now()
	rep, err := s.cleaner.CleanupHistory(ctx, start)
	if err != nil {
		zap.S().Errorw("cancellation cleanup failed", "instance", s.instanceID, "error", err)
		return
	}
	zap.S().Infow("cancellation cleanup finished",
		"instance", s.instanceID,
		"prunedUsers", rep.PrunedUsers,
		"clearedRestrictions", rep.ClearedRestrictions,
		"duration", time.Since(start))
}
