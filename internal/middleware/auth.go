package middleware

import (
	"context"
	"net/http"
	"strings"

	"retail-service/internal/dto"
	"retail-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const CtxPrincipal = "principal"

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*service.Claims, error)
}

type SessionResolver interface {
	ResolveSession(ctx context.Context, id string) (*service.Claims, error)
}

func setPrincipal(c *gin.Context, claims service.Claims) {
	p := service.PrincipalFromClaims(claims)
	c.Set(CtxPrincipal, p)
	c.Request = c.Request.WithContext(service.WithPrincipal(c.Request.Context(), p))
}

// Principal returns the caller resolved by Bearer or Session, nil if anonymous.
func Principal(c *gin.Context) *service.Principal {
	v, ok := c.Get(CtxPrincipal)
	if !ok {
		return nil
	}
	p, ok := v.(service.Principal)
	if !ok {
		return nil
	}
	return &p
}

// Bearer resolves an Authorization header when present. Requests without
// one pass through anonymously; a bad token is rejected.
func Bearer(v TokenVerifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" {
			c.Next()
			return
		}
		token, ok := ExtractBearerToken(authz)
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid Authorization header"))
			return
		}

		claims, err := v.VerifyToken(c.Request.Context(), token)
		if err != nil {
			log.Debug("token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid token"))
			return
		}
		setPrincipal(c, *claims)
		c.Next()
	}
}

// Session resolves the session cookie when present. Stale cookies are
// cleared and the request continues anonymously.
func Session(r SessionResolver, cookieName string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cookieName)
		if err != nil || id == "" {
			c.Next()
			return
		}

		claims, err := r.ResolveSession(c.Request.Context(), id)
		if err != nil {
			log.Error("session lookup failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewUnavailableError("session store unavailable"))
			return
		}
		if claims == nil {
			c.SetCookie(cookieName, "", -1, "/", "", false, true)
			c.Next()
			return
		}
		setPrincipal(c, *claims)
		c.Next()
	}
}

// AuthRequired rejects anonymous callers.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Principal(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("authentication required"))
			return
		}
		c.Next()
	}
}

// ExtractBearerToken takes the token out of an Authorization header,
// tolerating quotes and trailing junk:
//   - "Bearer abc.def.ghi"
//   - "Bearer \"abc.def.ghi\""
//   - "Bearer abc.def.ghi, extra"
func ExtractBearerToken(authz string) (string, bool) {
	if authz == "" {
		return "", false
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	t := strings.Trim(strings.TrimSpace(parts[1]), " \"'")
	if i := strings.IndexRune(t, ','); i >= 0 {
		t = strings.Trim(t[:i], " \"'")
	}
	if i := strings.IndexByte(t, ' '); i >= 0 {
		t = t[:i]
	}
	return strings.Trim(t, " \"'"), true
}
