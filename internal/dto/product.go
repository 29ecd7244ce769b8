package dto

import (
	"fmt"
	"strings"

	"retail-service/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductRequest struct {
	Article        string          `json:"article" binding:"required"`
	Name           string          `json:"name" binding:"required"`
	Unit           string          `json:"unit"`
	Price          decimal.Decimal `json:"price"`
	Discount       int             `json:"discount" binding:"min=0,max=100"`
	StockQuantity  *int            `json:"stock_quantity"`
	Description    *string         `json:"description"`
	Photo          *string         `json:"photo"`
	CategoryID     uuid.UUID       `json:"category_id" binding:"required"`
	ManufacturerID uuid.UUID       `json:"manufacturer_id" binding:"required"`
	SupplierID     uuid.UUID       `json:"supplier_id" binding:"required"`
}

func (r ProductRequest) ToInput() service.ProductInput {
	return service.ProductInput{
		Article:        r.Article,
		Name:           r.Name,
		Unit:           r.Unit,
		Price:          r.Price,
		Discount:       r.Discount,
		StockQuantity:  r.StockQuantity,
		Description:    r.Description,
		Photo:          r.Photo,
		CategoryID:     r.CategoryID,
		ManufacturerID: r.ManufacturerID,
		SupplierID:     r.SupplierID,
	}
}

type ProductResponse struct {
	ID             string  `json:"id"`
	Article        string  `json:"article"`
	Name           string  `json:"name"`
	Unit           string  `json:"unit"`
	Price          string  `json:"price"`
	Discount       int     `json:"discount"`
	FinalPrice     string  `json:"final_price"`
	StockQuantity  *int    `json:"stock_quantity"`
	Description    *string `json:"description,omitempty"`
	Photo          *string `json:"photo,omitempty"`
	CategoryID     string  `json:"category_id"`
	Category       string  `json:"category,omitempty"`
	ManufacturerID string  `json:"manufacturer_id"`
	Manufacturer   string  `json:"manufacturer,omitempty"`
	SupplierID     string  `json:"supplier_id"`
	Supplier       string  `json:"supplier,omitempty"`
	HasDiscount    bool    `json:"has_discount"`
	HighDiscount   bool    `json:"high_discount"`
	InStock        bool    `json:"in_stock"`
}

// ProductListQuery is the query string of a catalog listing.
type ProductListQuery struct {
	Search         string `form:"search"`
	Description    string `form:"description"`
	ManufacturerID string `form:"manufacturer_id"`
	MaxPrice       string `form:"max_price"`
	OnlyDiscounted bool   `form:"only_discounted"`
	InStock        bool   `form:"in_stock"`
	Sort           string `form:"sort"`
	Limit          int    `form:"limit,default=50"`
	Offset         int    `form:"offset,default=0"`
}

func (q ProductListQuery) ToQuery() (service.ProductQuery, error) {
	out := service.ProductQuery{
		Search:         q.Search,
		Description:    q.Description,
		OnlyDiscounted: q.OnlyDiscounted,
		InStockOnly:    q.InStock,
		SortBy:         q.Sort,
		Limit:          q.Limit,
		Offset:         q.Offset,
	}
	if s := strings.TrimSpace(q.ManufacturerID); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return out, fmt.Errorf("manufacturer_id: %w", err)
		}
		out.ManufacturerID = &id
	}
	if s := strings.TrimSpace(q.MaxPrice); s != "" {
		price, err := decimal.NewFromString(s)
		if err != nil {
			return out, fmt.Errorf("max_price: %w", err)
		}
		if price.IsNegative() {
			return out, fmt.Errorf("max_price: must not be negative")
		}
		out.MaxPrice = &price
	}
	return out, nil
}

type ReferenceResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func FromReferenceItems(items []service.ReferenceItem) []ReferenceResponse {
	out := make([]ReferenceResponse, 0, len(items))
	for _, it := range items {
		out = append(out, ReferenceResponse{ID: it.ID.String(), Name: it.Name})
	}
	return out
}

type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int64             `json:"total"`
}

func FromProductView(v service.ProductView) ProductResponse {
	return ProductResponse{
		ID:             v.ID.String(),
		Article:        v.Article,
		Name:           v.Name,
		Unit:           v.Unit,
		Price:          v.Price.StringFixed(2),
		Discount:       v.Discount,
		FinalPrice:     v.FinalPrice.StringFixed(2),
		StockQuantity:  v.StockQuantity,
		Description:    v.Description,
		Photo:          v.Photo,
		CategoryID:     v.CategoryID.String(),
		Category:       v.Category,
		ManufacturerID: v.ManufacturerID.String(),
		Manufacturer:   v.Manufacturer,
		SupplierID:     v.SupplierID.String(),
		Supplier:       v.Supplier,
		HasDiscount:    v.HasDiscount,
		HighDiscount:   v.HighDiscount,
		InStock:        v.InStock,
	}
}

func FromProductPage(p *service.ProductPage) ProductListResponse {
	out := ProductListResponse{Items: make([]ProductResponse, 0, len(p.Items)), Total: p.Total}
	for _, v := range p.Items {
		out.Items = append(out.Items, FromProductView(v))
	}
	return out
}
