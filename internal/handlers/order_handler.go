package handlers

import (
	"net/http"

	"retail-service/internal/dto"
	"retail-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders service.OrderService
	policy service.Policy
	log    *zap.Logger
}

func NewOrderHandler(orders service.OrderService, policy service.Policy, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, policy: policy, log: log}
}

// ListForUser returns the orders of one login. Clients may only ask for
// their own.
// GET /api/orders/user/:login
func (h *OrderHandler) ListForUser(c *gin.Context) {
	login := c.Param("login")
	if _, ok := authorize(c, h.log, func(p *service.Principal) error { return h.policy.ViewOrdersOf(p, login) }); !ok {
		return
	}

	list, err := h.orders.ListOrdersForUser(c.Request.Context(), login)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrderSummaries(list))
}

// GET /api/orders
func (h *OrderHandler) ListAll(c *gin.Context) {
	if _, ok := authorize(c, h.log, h.policy.ViewAllOrders); !ok {
		return
	}
	list, err := h.orders.ListAllOrders(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrderSummaries(list))
}

// Create places an order for the calling client.
// POST /api/orders
func (h *OrderHandler) Create(c *gin.Context) {
	p, ok := authorize(c, h.log, h.policy.PlaceOrder)
	if !ok {
		return
	}
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "invalid request body", err)
		return
	}

	in := service.CreateOrderInput{UserID: p.UserID, Items: make([]service.OrderItemInput, 0, len(req.Items))}
	for _, it := range req.Items {
		in.Items = append(in.Items, service.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	sum, err := h.orders.CreateOrder(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromOrderSummary(*sum))
}

// PUT /api/orders/:orderNumber
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	if _, ok := authorize(c, h.log, h.policy.MutateOrders); !ok {
		return
	}
	var req dto.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "invalid request body", err)
		return
	}

	sum, err := h.orders.UpdateStatusAndDelivery(c.Request.Context(), service.UpdateStatusInput{
		OrderNumber:  c.Param("orderNumber"),
		StatusID:     req.StatusID,
		DeliveryDate: req.DeliveryDate,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrderSummary(*sum))
}

// GET /api/order-statuses
func (h *OrderHandler) Statuses(c *gin.Context) {
	if _, ok := authorize(c, h.log, h.policy.ListStatuses); !ok {
		return
	}
	list, err := h.orders.ListStatuses(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromStatuses(list))
}
