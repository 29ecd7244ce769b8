package service

import (
	"context"

	"retail-service/internal/repository"
)

// TxRunner runs fn against repositories bound to a single transaction.
// *repository.Repository satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *repository.Repository) error) error
}

// PasswordVerifier checks a presented secret against the stored one.
type PasswordVerifier interface {
	Compare(stored, presented string) bool
}

type TokenIssuer interface {
	Sign(ctx context.Context, c Claims) (string, error)
	Parse(ctx context.Context, token string) (*Claims, error)
}

type SessionBinder interface {
	Bind(ctx context.Context, c Claims) (string, error)
	// Resolve returns nil claims for unknown, revoked or expired sessions.
	Resolve(ctx context.Context, id string) (*Claims, error)
	Revoke(ctx context.Context, id string) error
}
