package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const StatusNew = "New"

type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type CreateOrderInput struct {
	UserID uuid.UUID
	Items  []OrderItemInput
}

type UpdateStatusInput struct {
	OrderNumber  string
	StatusID     uuid.UUID
	DeliveryDate *time.Time
}

type OrderLineSummary struct {
	ProductID   uuid.UUID
	Article     string
	ProductName string
	Quantity    int
	Price       decimal.Decimal
}

type OrderSummary struct {
	ID           uuid.UUID
	Number       string
	OrderDate    time.Time
	DeliveryDate *time.Time
	PickupCode   *string
	StatusID     uuid.UUID
	Status       string
	UserID       uuid.UUID
	UserLogin    string
	UserFullName string
	Lines        []OrderLineSummary
}

// Total sums the undiscounted price snapshots.
func (o OrderSummary) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

type OrderOptions struct {
	// EnableStockDecrement subtracts ordered quantities from tracked stock
	// in the order transaction.
	EnableStockDecrement bool
	DeliveryLeadTime     time.Duration
	MaxNumberAttempts    int
	Transitions          TransitionPolicy
	Rand                 Rand
	// Location is the calendar the order number's date is taken from.
	// Order timestamps are stored in UTC regardless. Nil means time.Local.
	Location *time.Location
}

func DefaultOrderOptions() OrderOptions {
	return OrderOptions{
		EnableStockDecrement: false,
		DeliveryLeadTime:     7 * 24 * time.Hour,
		MaxNumberAttempts:    100,
		Transitions:          AllowAnyTransition,
		Rand:                 DefaultRand,
		Location:             time.Local,
	}
}

type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*OrderSummary, error)
	CreateSingleItemOrder(ctx context.Context, userID, productID uuid.UUID, quantity int) (*OrderSummary, error)
	UpdateStatusAndDelivery(ctx context.Context, in UpdateStatusInput) (*OrderSummary, error)
	ListOrdersForUser(ctx context.Context, login string) ([]OrderSummary, error)
	ListAllOrders(ctx context.Context) ([]OrderSummary, error)
	ListStatuses(ctx context.Context) ([]StatusView, error)
}

type StatusView struct {
	ID   uuid.UUID
	Name string
}
