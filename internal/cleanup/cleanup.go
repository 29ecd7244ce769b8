package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CleanupService struct {
	db   *gorm.DB
	idle time.Duration
	now  func() time.Time
	log  *zap.Logger
}

func NewCleanupService(db *gorm.DB, idle time.Duration, log *zap.Logger) *CleanupService {
	return &CleanupService{
		db:   db,
		idle: idle,
		now:  time.Now,
		log:  log,
	}
}

// CleanupExpiredSessions deletes web sessions that are revoked, past their
// absolute expiry, or idle longer than the idle timeout.
func (c *CleanupService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	now := c.now().UTC()
	result := c.db.WithContext(ctx).Exec(
		"DELETE FROM web_sessions WHERE revoked = true OR expires_at <= ? OR last_seen_at < ?",
		now, now.Add(-c.idle),
	)
	if result.Error != nil {
		c.log.Error("failed to cleanup web sessions", zap.Error(result.Error))
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		c.log.Info("cleaned up web sessions", zap.Int64("count", result.RowsAffected))
	}
	return result.RowsAffected, nil
}
