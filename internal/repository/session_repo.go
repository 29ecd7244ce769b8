package repository

import (
	"context"
	"errors"
	"time"

	"retail-service/internal/models"

	"gorm.io/gorm"
)

type SessionRepo interface {
	Create(ctx context.Context, s *models.WebSession) error
	Get(ctx context.Context, id string) (*models.WebSession, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Revoke(ctx context.Context, id string) error
}

type sessionRepo struct{ db *gorm.DB }

func NewSessionRepo(db *gorm.DB) SessionRepo { return &sessionRepo{db: db} }

func (r *sessionRepo) Create(ctx context.Context, s *models.WebSession) error {
	return translate(r.db.WithContext(ctx).Create(s).Error)
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*models.WebSession, error) {
	var s models.WebSession
	err := r.db.WithContext(ctx).First(&s, "id = ? AND revoked = false", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &s, err
}

func (r *sessionRepo) Touch(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.WebSession{}).Where("id = ?", id).Update("last_seen_at", at).Error
}

func (r *sessionRepo) Revoke(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.WebSession{}).Where("id = ?", id).Update("revoked", true).Error
}
