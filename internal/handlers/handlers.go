package handlers

import (
	"context"
	"errors"
	"net/http"

	"retail-service/internal/dto"
	"retail-service/internal/middleware"
	"retail-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Authenticator interface {
	Authenticate(ctx context.Context, login, password string) (*service.AuthResult, error)
	StartSession(ctx context.Context, login, password string) (*service.WebSession, error)
	EndSession(ctx context.Context, id string) error
}

type Catalog interface {
	List(ctx context.Context, q service.ProductQuery) (*service.ProductPage, error)
	GetByArticle(ctx context.Context, article string) (*service.ProductView, error)
	Create(ctx context.Context, in service.ProductInput) (*service.ProductView, error)
	Update(ctx context.Context, id uuid.UUID, in service.ProductInput) (*service.ProductView, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Categories(ctx context.Context) ([]service.ReferenceItem, error)
	Manufacturers(ctx context.Context) ([]service.ReferenceItem, error)
	Suppliers(ctx context.Context) ([]service.ReferenceItem, error)
	Units(ctx context.Context) ([]string, error)
}

// writeError translates service errors into HTTP responses.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError(err.Error()))
	case errors.Is(err, service.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError(err.Error()))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.NewForbiddenError("access denied"))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, dto.NewConflictError(err.Error()))
	case errors.Is(err, service.ErrStoreUnavailable):
		log.Error("store unavailable", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, dto.NewUnavailableError("storage is temporarily unavailable"))
	default:
		log.Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
	}
}

// authorize runs a policy check against the caller and writes the denial.
func authorize(c *gin.Context, log *zap.Logger, check func(*service.Principal) error) (*service.Principal, bool) {
	p := middleware.Principal(c)
	if err := check(p); err != nil {
		writeError(c, log, err)
		return nil, false
	}
	return p, true
}

// productQuery reads the catalog listing filters from the query string.
func productQuery(c *gin.Context, log *zap.Logger) (service.ProductQuery, bool) {
	var req dto.ProductListQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, log, "invalid query", err)
		return service.ProductQuery{}, false
	}
	q, err := req.ToQuery()
	if err != nil {
		badRequest(c, log, "invalid query", err)
		return service.ProductQuery{}, false
	}
	return q, true
}

func badRequest(c *gin.Context, log *zap.Logger, msg string, err error) {
	log.Warn(msg, zap.Error(err))
	c.JSON(http.StatusBadRequest, dto.NewValidationError(msg, nil))
}
