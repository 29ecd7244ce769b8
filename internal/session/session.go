package session

import (
	"context"
	"errors"
	"time"

	"retail-service/internal/service"

	"github.com/google/uuid"
	"github.com/nanorand/nanorand"
)

const idLength = 32

var ErrEmptyID = errors.New("empty session id")

// Record is the persisted form of a web session.
type Record struct {
	ID         string    `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Login      string    `json:"login"`
	Role       string    `json:"role"`
	FullName   string    `json:"full_name"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

type Store interface {
	Save(ctx context.Context, rec Record, ttl time.Duration) error
	// Load returns nil, nil when the session does not exist.
	Load(ctx context.Context, id string) (*Record, error)
	Touch(ctx context.Context, id string, at time.Time, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// Binder keeps browser sessions alive while they are used: every resolve
// slides the idle window, but never past the claims expiry.
type Binder struct {
	store Store
	idle  time.Duration
	now   func() time.Time
	newID func() (string, error)
}

func NewBinder(store Store, idle time.Duration) *Binder {
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	return &Binder{
		store: store,
		idle:  idle,
		now:   time.Now,
		newID: func() (string, error) { return nanorand.Gen(idLength) },
	}
}

func (b *Binder) ttl(now, expires time.Time) time.Duration {
	left := expires.Sub(now)
	if left < b.idle {
		return left
	}
	return b.idle
}

func (b *Binder) Bind(ctx context.Context, c service.Claims) (string, error) {
	id, err := b.newID()
	if err != nil {
		return "", err
	}
	now := b.now().UTC()
	rec := Record{
		ID:         id,
		UserID:     c.UserID,
		Login:      c.Login,
		Role:       string(c.Role),
		FullName:   c.FullName,
		IssuedAt:   c.IssuedAt,
		ExpiresAt:  c.ExpiresAt,
		LastSeenAt: now,
	}
	if err := b.store.Save(ctx, rec, b.ttl(now, c.ExpiresAt)); err != nil {
		return "", err
	}
	return id, nil
}

func (b *Binder) Resolve(ctx context.Context, id string) (*service.Claims, error) {
	if id == "" {
		return nil, nil
	}
	rec, err := b.store.Load(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}

	now := b.now().UTC()
	if !now.Before(rec.ExpiresAt) || now.Sub(rec.LastSeenAt) > b.idle {
		return nil, b.store.Delete(ctx, id)
	}

	role, err := service.ParseRole(rec.Role)
	if err != nil {
		return nil, b.store.Delete(ctx, id)
	}

	if err := b.store.Touch(ctx, id, now, b.ttl(now, rec.ExpiresAt)); err != nil {
		return nil, err
	}
	return &service.Claims{
		UserID:    rec.UserID,
		Login:     rec.Login,
		Role:      role,
		FullName:  rec.FullName,
		IssuedAt:  rec.IssuedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

func (b *Binder) Revoke(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	return b.store.Delete(ctx, id)
}
