package service

import (
	"context"
	"time"

	"retail-service/internal/repository"

	"go.uber.org/zap"
)

type AuthResult struct {
	Token  string
	Claims Claims
}

type WebSession struct {
	ID     string
	Claims Claims
}

type AuthService struct {
	users    repository.UserRepo
	verifier PasswordVerifier
	tokens   TokenIssuer
	sessions SessionBinder

	accessTTL time.Duration
	now       func() time.Time

	log *zap.Logger
}

func NewAuthService(
	users repository.UserRepo,
	verifier PasswordVerifier,
	tokens TokenIssuer,
	sessions SessionBinder,
	accessTTL time.Duration,
	log *zap.Logger,
) *AuthService {
	if accessTTL <= 0 {
		accessTTL = 3 * time.Hour
	}
	return &AuthService{
		users:     users,
		verifier:  verifier,
		tokens:    tokens,
		sessions:  sessions,
		accessTTL: accessTTL,
		now:       time.Now,
		log:       log,
	}
}

// identify resolves login and password into claims. Unknown logins and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) identify(ctx context.Context, login, password string) (Claims, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		return Claims{}, storeErr("get user", err)
	}
	if user == nil || !s.verifier.Compare(user.Password, password) {
		s.log.Info("authentication failed", zap.String("login", login))
		return Claims{}, ErrInvalidCredentials
	}

	role, err := ParseRoleName(user.Role.Name)
	if err != nil {
		s.log.Error("user has unmapped role", zap.String("login", login), zap.String("role", user.Role.Name))
		return Claims{}, err
	}
	return ProjectClaims(user, role, s.now(), s.accessTTL), nil
}

// Authenticate issues a bearer token for the API surface.
func (s *AuthService) Authenticate(ctx context.Context, login, password string) (*AuthResult, error) {
	claims, err := s.identify(ctx, login, password)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Sign(ctx, claims)
	if err != nil {
		return nil, err
	}
	s.log.Info("token issued", zap.String("login", login), zap.String("role", string(claims.Role)))
	return &AuthResult{Token: token, Claims: claims}, nil
}

// StartSession binds the same claims to a server-side browser session.
func (s *AuthService) StartSession(ctx context.Context, login, password string) (*WebSession, error) {
	claims, err := s.identify(ctx, login, password)
	if err != nil {
		return nil, err
	}
	id, err := s.sessions.Bind(ctx, claims)
	if err != nil {
		return nil, storeErr("bind session", err)
	}
	s.log.Info("web session started", zap.String("login", login))
	return &WebSession{ID: id, Claims: claims}, nil
}

// VerifyToken returns the claims of a valid bearer token.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*Claims, error) {
	c, err := s.tokens.Parse(ctx, token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return c, nil
}

// ResolveSession returns nil claims when the session is gone or expired.
func (s *AuthService) ResolveSession(ctx context.Context, id string) (*Claims, error) {
	c, err := s.sessions.Resolve(ctx, id)
	if err != nil {
		return nil, storeErr("resolve session", err)
	}
	return c, nil
}

func (s *AuthService) EndSession(ctx context.Context, id string) error {
	return storeErr("revoke session", s.sessions.Revoke(ctx, id))
}
