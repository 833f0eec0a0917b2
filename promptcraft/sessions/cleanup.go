package sessions

import (
	"context"
	"time"

	"codeberg.org/promptcraft/server/internal/logger"
)

// purges expired sessions and used or expired magic links
type CleanupService struct {
	repo          Purger
	checkInterval time.Duration
	now           func() time.Time
}

// creates a new cleanup service
func NewCleanupService(repo Purger, checkInterval time.Duration) *CleanupService {
	return &CleanupService{
		repo:          repo,
		checkInterval: checkInterval,
		now:           time.Now,
	}
}

// begins the cleanup service background loop
func (s *CleanupService) Start(ctx context.Context) {
	logger.Info("starting session cleanup service", "check_interval", s.checkInterval)

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("session cleanup service stopped")
			return
		case <-ticker.C:
			s.purge(ctx)
		}
	}
}

// one cleanup pass; a failing table does not stop the other
func (s *CleanupService) purge(ctx context.Context) {
	now := s.now()

	sessions, err := s.repo.DeleteExpiredSessions(ctx, now)
	if err != nil {
		logger.ErrorErr(err, "failed to purge expired sessions")
	}

	links, err := s.repo.DeleteExpiredMagicLinks(ctx, now)
	if err != nil {
		logger.ErrorErr(err, "failed to purge magic links")
	}

	if sessions > 0 || links > 0 {
		logger.Info("purged expired credentials",
			"sessions", sessions,
			"magic_links", links,
		)
	}
}
