package service

import (
	"time"

	"retail-service/internal/models"

	"github.com/google/uuid"
)

// Claims is the identity projection carried by both the bearer token and
// the web session.
type Claims struct {
	UserID    uuid.UUID
	Login     string
	Role      Role
	FullName  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ProjectClaims is the only place claims are derived from a user record.
func ProjectClaims(u *models.User, role Role, now time.Time, ttl time.Duration) Claims {
	now = now.UTC().Truncate(time.Second)
	return Claims{
		UserID:    u.ID,
		Login:     u.Login,
		Role:      role,
		FullName:  u.FullName,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}
