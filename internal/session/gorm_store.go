package session

import (
	"context"
	"time"

	"retail-service/internal/models"
	"retail-service/internal/repository"
)

// GormStore keeps sessions in the web_sessions table. Expired rows are
// removed by the cleanup scheduler.
type GormStore struct {
	repo repository.SessionRepo
}

func NewGormStore(repo repository.SessionRepo) *GormStore { return &GormStore{repo: repo} }

func (s *GormStore) Save(ctx context.Context, rec Record, _ time.Duration) error {
	return s.repo.Create(ctx, &models.WebSession{
		ID:         rec.ID,
		UserID:     rec.UserID,
		Login:      rec.Login,
		Role:       rec.Role,
		FullName:   rec.FullName,
		IssuedAt:   rec.IssuedAt,
		ExpiresAt:  rec.ExpiresAt,
		LastSeenAt: rec.LastSeenAt,
	})
}

func (s *GormStore) Load(ctx context.Context, id string) (*Record, error) {
	ws, err := s.repo.Get(ctx, id)
	if err != nil || ws == nil {
		return nil, err
	}
	return &Record{
		ID:         ws.ID,
		UserID:     ws.UserID,
		Login:      ws.Login,
		Role:       ws.Role,
		FullName:   ws.FullName,
		IssuedAt:   ws.IssuedAt,
		ExpiresAt:  ws.ExpiresAt,
		LastSeenAt: ws.LastSeenAt,
	}, nil
}

func (s *GormStore) Touch(ctx context.Context, id string, at time.Time, _ time.Duration) error {
	return s.repo.Touch(ctx, id, at)
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	return s.repo.Revoke(ctx, id)
}
