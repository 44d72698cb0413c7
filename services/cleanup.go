package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"dynamocards-backend/internal/logger"
)

const cleanupTag = "analysis-retention"

// CleanupService prunes analyses older than the retention window on a cron schedule.
type CleanupService struct {
	scheduler *gocron.Scheduler
	store     AnalysisStore
	retention time.Duration
	now       func() time.Time
}

// NewCleanupService creates a retention scheduler
func NewCleanupService(store AnalysisStore, retentionDays int) *CleanupService {
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()

	return &CleanupService{
		scheduler: s,
		store:     store,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

// Schedule registers the pruning job under cronExpr. It does not start the scheduler.
func (c *CleanupService) Schedule(cronExpr string) error {
	_, err := c.scheduler.Cron(cronExpr).Tag(cleanupTag).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := c.Prune(ctx); err != nil {
			logger.Error("analysis cleanup failed", "error", err)
		}
	})
	return err
}

// Prune deletes every analysis created before now minus the retention window.
func (c *CleanupService) Prune(ctx context.Context) (int64, error) {
	if c.retention <= 0 {
		return 0, nil
	}
	cutoff := c.now().UTC().Add(-c.retention)
	deleted, err := c.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	logger.Info("analysis cleanup finished", "deleted", deleted, "cutoff", cutoff)
	return deleted, nil
}

// Jobs returns the registered jobs.
func (c *CleanupService) Jobs() []*gocron.Job {
	return c.scheduler.Jobs()
}

func (c *CleanupService) Start() {
	c.scheduler.StartAsync()
}

func (c *CleanupService) Stop() {
	c.scheduler.Stop()
}
