package usecases

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StagingSweeper removes staged files older than a cutoff.
type StagingSweeper interface {
	SweepOlderThan(maxAge time.Duration, now time.Time) (int, error)
}

type CleanupService interface {
	CleanupStaleStagedFiles(maxAge time.Duration) (int, error)
	Schedule(c *cron.Cron, spec string, maxAge time.Duration) (cron.EntryID, error)
}

type cleanupService struct {
	sweeper StagingSweeper
	now     func() time.Time
	log     *zap.Logger
}

func NewCleanupService(sweeper StagingSweeper, log *zap.Logger) CleanupService {
	return &cleanupService{
		sweeper: sweeper,
		now:     time.Now,
		log:     log,
	}
}

// CleanupStaleStagedFiles removes files left in the staging root by crashed
// or killed processes.
func (s *cleanupService) CleanupStaleStagedFiles(maxAge time.Duration) (int, error) {
	removed, err := s.sweeper.SweepOlderThan(maxAge, s.now())
	if removed > 0 {
		s.log.Info("removed stale staged files", zap.Int("count", removed))
	}
	return removed, err
}

func (s *cleanupService) Schedule(c *cron.Cron, spec string, maxAge time.Duration) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		if _, err := s.CleanupStaleStagedFiles(maxAge); err != nil {
			s.log.Warn("error cleaning up stale staged files", zap.Error(err))
		}
	})
}
