package token

import (
	"context"
	"errors"

	"retail-service/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

type HSProvider struct {
	secret   []byte
	issuer   string
	audience string
}

func NewHSProvider(secret, issuer, audience string) *HSProvider {
	return &HSProvider{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}
}

type customClaims struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	FullName string `json:"full_name,omitempty"`
	jwt.RegisteredClaims
}

// Sign encodes the claims with the role's display name; issue and expiry
// times come from the claims projection, not from this provider.
func (p *HSProvider) Sign(_ context.Context, c service.Claims) (string, error) {
	claims := customClaims{
		Name:     c.Login,
		Role:     c.Role.DisplayName(),
		FullName: c.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Subject:   c.UserID.String(),
			Audience:  []string{p.audience},
			IssuedAt:  jwt.NewNumericDate(c.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

func (p *HSProvider) Parse(_ context.Context, token string) (*service.Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &customClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	}, jwt.WithAudience(p.audience), jwt.WithIssuer(p.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	cc, ok := parsed.Claims.(*customClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	uid, err := uuid.Parse(cc.Subject)
	if err != nil {
		return nil, err
	}
	role, err := service.ParseRole(cc.Role)
	if err != nil {
		return nil, err
	}
	out := &service.Claims{
		UserID:    uid,
		Login:     cc.Name,
		Role:      role,
		FullName:  cc.FullName,
		ExpiresAt: cc.ExpiresAt.Time,
	}
	if cc.IssuedAt != nil {
		out.IssuedAt = cc.IssuedAt.Time
	}
	return out, nil
}
