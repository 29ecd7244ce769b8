package handlers

import (
	"context"
	"net/http"

	"retail-service/internal/dto"
	"retail-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProductHandler struct {
	catalog Catalog
	policy  service.Policy
	log     *zap.Logger
}

func NewProductHandler(catalog Catalog, policy service.Policy, log *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, policy: policy, log: log}
}

// List is open to anonymous callers.
// GET /api/products?search=&description=&manufacturer_id=&max_price=&only_discounted=&in_stock=&sort=&limit=&offset=
func (h *ProductHandler) List(c *gin.Context) {
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

// GET /api/categories
func (h *ProductHandler) Categories(c *gin.Context) {
	h.references(c, h.catalog.Categories)
}

// GET /api/manufacturers
func (h *ProductHandler) Manufacturers(c *gin.Context) {
	h.references(c, h.catalog.Manufacturers)
}

// GET /api/suppliers
func (h *ProductHandler) Suppliers(c *gin.Context) {
	h.references(c, h.catalog.Suppliers)
}

// GET /api/units
func (h *ProductHandler) Units(c *gin.Context) {
	units, err := h.catalog.Units(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, units)
}

func (h *ProductHandler) references(c *gin.Context, load func(context.Context) ([]service.ReferenceItem, error)) {
	items, err := load(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromReferenceItems(items))
}

// GET /api/products/article/:article
func (h *ProductHandler) GetByArticle(c *gin.Context) {
	v, err := h.catalog.GetByArticle(c.Request.Context(), c.Param("article"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromProductView(*v))
}

// POST /api/products
func (h *ProductHandler) Create(c *gin.Context) {
	if _, ok := authorize(c, h.log, h.policy.MutateCatalog); !ok {
		return
	}
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "invalid request body", err)
		return
	}

	v, err := h.catalog.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromProductView(*v))
}

// PUT /api/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	if _, ok := authorize(c, h.log, h.policy.MutateCatalog); !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, h.log, "invalid product id", err)
		return
	}
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "invalid request body", err)
		return
	}

	v, err := h.catalog.Update(c.Request.Context(), id, req.ToInput())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromProductView(*v))
}

// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	if _, ok := authorize(c, h.log, h.policy.MutateCatalog); !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, h.log, "invalid product id", err)
		return
	}
	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
