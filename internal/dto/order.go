package dto

import (
	"time"

	"retail-service/internal/service"

	"github.com/google/uuid"
)

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity"`
}

type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required"`
}

type UpdateOrderRequest struct {
	StatusID     uuid.UUID  `json:"status_id" binding:"required"`
	DeliveryDate *time.Time `json:"delivery_date"`
}

type QuickOrderRequest struct {
	Quantity *int `json:"quantity" form:"quantity"`
}

type OrderLineResponse struct {
	ProductID   string `json:"product_id"`
	Article     string `json:"article"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
}

type OrderResponse struct {
	ID           string              `json:"id"`
	OrderNumber  string              `json:"order_number"`
	OrderDate    time.Time           `json:"order_date"`
	DeliveryDate *time.Time          `json:"delivery_date,omitempty"`
	PickupCode   *string             `json:"pickup_code,omitempty"`
	StatusID     string              `json:"status_id"`
	Status       string              `json:"status"`
	UserLogin    string              `json:"user_login"`
	UserFullName string              `json:"user_full_name"`
	Items        []OrderLineResponse `json:"items"`
	Total        string              `json:"total"`
}

type StatusResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func FromOrderSummary(s service.OrderSummary) OrderResponse {
	out := OrderResponse{
		ID:           s.ID.String(),
		OrderNumber:  s.Number,
		OrderDate:    s.OrderDate,
		DeliveryDate: s.DeliveryDate,
		PickupCode:   s.PickupCode,
		StatusID:     s.StatusID.String(),
		Status:       s.Status,
		UserLogin:    s.UserLogin,
		UserFullName: s.UserFullName,
		Items:        make([]OrderLineResponse, 0, len(s.Lines)),
		Total:        s.Total().StringFixed(2),
	}
	for _, l := range s.Lines {
		out.Items = append(out.Items, OrderLineResponse{
			ProductID:   l.ProductID.String(),
			Article:     l.Article,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       l.Price.StringFixed(2),
		})
	}
	return out
}

func FromOrderSummaries(list []service.OrderSummary) []OrderResponse {
	out := make([]OrderResponse, 0, len(list))
	for _, s := range list {
		out = append(out, FromOrderSummary(s))
	}
	return out
}

func FromStatuses(list []service.StatusView) []StatusResponse {
	out := make([]StatusResponse, 0, len(list))
	for _, s := range list {
		out = append(out, StatusResponse{ID: s.ID.String(), Name: s.Name})
	}
	return out
}
