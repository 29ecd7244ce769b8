package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"retail-service/internal/dto"
	"retail-service/internal/middleware"
	"retail-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CookieOptions struct {
	Name   string
	Secure bool
}

// WebHandler serves the browser surface, authenticated by session cookie.
type WebHandler struct {
	auth    Authenticator
	catalog Catalog
	orders  service.OrderService
	policy  service.Policy
	cookie  CookieOptions
	log     *zap.Logger
}

func NewWebHandler(auth Authenticator, catalog Catalog, orders service.OrderService, policy service.Policy, cookie CookieOptions, log *zap.Logger) *WebHandler {
	return &WebHandler{auth: auth, catalog: catalog, orders: orders, policy: policy, cookie: cookie, log: log}
}

func (h *WebHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}

// POST /web/login (form or JSON)
func (h *WebHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, h.log, "login and password are required", err)
		return
	}

	sess, err := h.auth.StartSession(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	h.setCookie(c, sess.ID, int(time.Until(sess.Claims.ExpiresAt).Seconds()))
	c.JSON(http.StatusOK, dto.FromClaims("", sess.Claims))
}

// POST /web/logout
func (h *WebHandler) Logout(c *gin.Context) {
	if id, err := c.Cookie(h.cookie.Name); err == nil && id != "" {
		if err := h.auth.EndSession(c.Request.Context(), id); err != nil {
			h.log.Warn("failed to revoke session", zap.Error(err))
		}
	}
	h.setCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

// GET /web/products (same filters as /api/products)
func (h *WebHandler) Products(c *gin.Context) {
	q, ok := productQuery(c, h.log)
	if !ok {
		return
	}
	page, err := h.catalog.List(c.Request.Context(), q)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromProductPage(page))
}

// Orders shows staff every order and clients their own.
// GET /web/orders
func (h *WebHandler) Orders(c *gin.Context) {
	p := middleware.Principal(c)
	if p == nil {
		writeError(c, h.log, service.ErrUnauthorized)
		return
	}

	var (
		list []service.OrderSummary
		err  error
	)
	if h.policy.ViewAllOrders(p) == nil {
		list, err = h.orders.ListAllOrders(c.Request.Context())
	} else {
		list, err = h.orders.ListOrdersForUser(c.Request.Context(), p.Login)
	}
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrderSummaries(list))
}

// QuickOrder buys a single product; quantity defaults to 1.
// POST /web/products/:id/order
func (h *WebHandler) QuickOrder(c *gin.Context) {
	p, ok := authorize(c, h.log, h.policy.PlaceOrder)
	if !ok {
		return
	}
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, h.log, "invalid product id", err)
		return
	}

	// chunked bodies report no length, so only an absent or empty body
	// means "no quantity"
	var req dto.QuickOrderRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, h.log, "invalid request body", err)
			return
		}
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	sum, err := h.orders.CreateSingleItemOrder(c.Request.Context(), p.UserID, productID, qty)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromOrderSummary(*sum))
}
