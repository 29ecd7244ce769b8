package service

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const ctxPrincipalKey ctxKey = "principal"

// Principal is the authenticated caller as resolved by either surface.
type Principal struct {
	UserID   uuid.UUID
	Login    string
	Role     Role
	FullName string
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	v, ok := ctx.Value(ctxPrincipalKey).(Principal)
	if !ok {
		return nil, false
	}
	return &v, true
}

func PrincipalFromClaims(c Claims) Principal {
	return Principal{UserID: c.UserID, Login: c.Login, Role: c.Role, FullName: c.FullName}
}
