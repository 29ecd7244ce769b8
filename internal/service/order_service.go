package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"retail-service/internal/models"
	"retail-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type orderService struct {
	repo   *repository.Repository
	tx     TxRunner
	events EventBus
	opts   OrderOptions
	now    func() time.Time
	log    *zap.Logger
}

func NewOrderService(repo *repository.Repository, tx TxRunner, events EventBus, opts OrderOptions, log *zap.Logger) OrderService {
	def := DefaultOrderOptions()
	if opts.DeliveryLeadTime <= 0 {
		opts.DeliveryLeadTime = def.DeliveryLeadTime
	}
	if opts.MaxNumberAttempts <= 0 {
		opts.MaxNumberAttempts = def.MaxNumberAttempts
	}
	if opts.Transitions == nil {
		opts.Transitions = def.Transitions
	}
	if opts.Rand == nil {
		opts.Rand = def.Rand
	}
	if opts.Location == nil {
		opts.Location = def.Location
	}
	return &orderService{
		repo:   repo,
		tx:     tx,
		events: events,
		opts:   opts,
		now:    time.Now,
		log:    log,
	}
}

// mergeItems validates quantities and folds repeated products into one line,
// since (order, product) identifies a line.
func mergeItems(items []OrderItemInput) ([]OrderItemInput, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	idx := make(map[uuid.UUID]int, len(items))
	out := make([]OrderItemInput, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, ErrQuantityInvalid
		}
		if i, ok := idx[it.ProductID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		idx[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out, nil
}

func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*OrderSummary, error) {
	items, err := mergeItems(in.Items)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, storeErr("get user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	rows, err := s.repo.Products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr("get products", err)
	}
	products := make(map[uuid.UUID]models.Product, len(rows))
	for _, p := range rows {
		products[p.ID] = p
	}

	lines := make([]models.OrderLine, 0, len(items))
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
		}
		if p.StockQuantity != nil && *p.StockQuantity < it.Quantity {
			return nil, fmt.Errorf("%w: %s has %d, requested %d", ErrInsufficientStock, p.Article, *p.StockQuantity, it.Quantity)
		}
		lines = append(lines, models.OrderLine{
			ProductID: p.ID,
			Product:   p,
			Quantity:  it.Quantity,
			Price:     p.Price,
		})
	}

	status, err := s.repo.Statuses.EnsureByName(ctx, StatusNew)
	if err != nil {
		return nil, storeErr("ensure status", err)
	}

	now := s.now().UTC()
	delivery := now.Add(s.opts.DeliveryLeadTime)
	pickup := NewPickupCode(s.opts.Rand)

	for attempt := 1; attempt <= s.opts.MaxNumberAttempts; attempt++ {
		number := NewOrderNumber(s.opts.Rand, now.In(s.opts.Location))

		exists, err := s.repo.Orders.ExistsByNumber(ctx, number)
		if err != nil {
			return nil, storeErr("check order number", err)
		}
		if exists {
			continue
		}

		order := &models.Order{
			ID:           uuid.New(),
			OrderNumber:  number,
			OrderDate:    now,
			DeliveryDate: &delivery,
			PickupCode:   &pickup,
			StatusID:     status.ID,
			UserID:       user.ID,
		}

		err = s.tx.WithTx(ctx, func(tx *repository.Repository) error {
			if err := tx.Orders.Create(ctx, order); err != nil {
				return err
			}
			for i := range lines {
				lines[i].OrderID = order.ID
			}
			if err := tx.OrderLines.BulkCreate(ctx, lines); err != nil {
				return err
			}
			if !s.opts.EnableStockDecrement {
				return nil
			}
			for _, l := range lines {
				ok, err := tx.Products.DecrementStock(ctx, l.ProductID, l.Quantity)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%w: %s", ErrInsufficientStock, l.Product.Article)
				}
			}
			return nil
		})
		switch {
		case err == nil:
		case errors.Is(err, repository.ErrDuplicate):
			// another writer took the number between the check and the insert
			s.log.Debug("order number collision, retrying", zap.String("number", number), zap.Int("attempt", attempt))
			continue
		case errors.Is(err, ErrInsufficientStock):
			return nil, err
		default:
			return nil, storeErr("create order", err)
		}

		order.Status = *status
		order.User = *user
		order.Lines = lines
		sum := toSummary(order)

		s.log.Info("order created",
			zap.String("number", sum.Number),
			zap.String("user", user.Login),
			zap.Int("lines", len(sum.Lines)),
		)
		s.publishCreated(ctx, sum)
		return &sum, nil
	}

	s.log.Error("order number space exhausted", zap.Int("attempts", s.opts.MaxNumberAttempts))
	return nil, ErrOrderNumberExhausted
}

func (s *orderService) CreateSingleItemOrder(ctx context.Context, userID, productID uuid.UUID, quantity int) (*OrderSummary, error) {
	return s.CreateOrder(ctx, CreateOrderInput{
		UserID: userID,
		Items:  []OrderItemInput{{ProductID: productID, Quantity: quantity}},
	})
}

func (s *orderService) UpdateStatusAndDelivery(ctx context.Context, in UpdateStatusInput) (*OrderSummary, error) {
	order, err := s.repo.Orders.GetByNumber(ctx, in.OrderNumber)
	if err != nil {
		return nil, storeErr("get order", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	status, err := s.repo.Statuses.GetByID(ctx, in.StatusID)
	if err != nil {
		return nil, storeErr("get status", err)
	}
	if status == nil {
		return nil, ErrStatusNotFound
	}

	if in.DeliveryDate != nil && in.DeliveryDate.Before(order.OrderDate) {
		return nil, ErrDeliveryBeforeOrder
	}
	if !s.opts.Transitions(order.Status, *status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, order.Status.Name, status.Name)
	}

	if err := s.repo.Orders.UpdateStatusAndDelivery(ctx, order.ID, status.ID, in.DeliveryDate); err != nil {
		return nil, storeErr("update order", err)
	}

	from := order.Status.Name
	order.StatusID = status.ID
	order.Status = *status
	if in.DeliveryDate != nil {
		d := *in.DeliveryDate
		order.DeliveryDate = &d
	}
	sum := toSummary(order)

	if s.events != nil {
		if err := s.events.PublishOrderStatusChanged(ctx, OrderStatusChangedEvent{
			OrderID:      order.ID,
			OrderNumber:  order.OrderNumber,
			FromStatus:   from,
			ToStatus:     status.Name,
			DeliveryDate: order.DeliveryDate,
			ChangedAt:    s.now().UTC(),
		}); err != nil {
			s.log.Warn("failed to publish status change", zap.String("number", order.OrderNumber), zap.Error(err))
		}
	}
	return &sum, nil
}

func (s *orderService) ListOrdersForUser(ctx context.Context, login string) ([]OrderSummary, error) {
	user, err := s.repo.Users.GetByLogin(ctx, login)
	if err != nil {
		return nil, storeErr("get user", err)
	}
	if user == nil {
		return []OrderSummary{}, nil
	}
	rows, err := s.repo.Orders.List(ctx, repository.OrderListFilter{UserID: &user.ID})
	if err != nil {
		return nil, storeErr("list orders", err)
	}
	return toSummaries(rows), nil
}

func (s *orderService) ListAllOrders(ctx context.Context) ([]OrderSummary, error) {
	rows, err := s.repo.Orders.List(ctx, repository.OrderListFilter{})
	if err != nil {
		return nil, storeErr("list orders", err)
	}
	return toSummaries(rows), nil
}

func (s *orderService) ListStatuses(ctx context.Context) ([]StatusView, error) {
	rows, err := s.repo.Statuses.List(ctx)
	if err != nil {
		return nil, storeErr("list statuses", err)
	}
	out := make([]StatusView, 0, len(rows))
	for _, st := range rows {
		out = append(out, StatusView{ID: st.ID, Name: st.Name})
	}
	return out, nil
}

func (s *orderService) publishCreated(ctx context.Context, sum OrderSummary) {
	if s.events == nil {
		return
	}
	ev := OrderCreatedEvent{
		OrderID:     sum.ID,
		OrderNumber: sum.Number,
		UserID:      sum.UserID,
		Lines:       make([]OrderLineEvent, 0, len(sum.Lines)),
		Total:       sum.Total(),
		CreatedAt:   sum.OrderDate,
	}
	for _, l := range sum.Lines {
		ev.Lines = append(ev.Lines, OrderLineEvent{
			ProductID: l.ProductID,
			Article:   l.Article,
			Quantity:  l.Quantity,
			Price:     l.Price,
		})
	}
	if err := s.events.PublishOrderCreated(ctx, ev); err != nil {
		s.log.Warn("failed to publish order created", zap.String("number", sum.Number), zap.Error(err))
	}
}

func toSummary(o *models.Order) OrderSummary {
	sum := OrderSummary{
		ID:           o.ID,
		Number:       o.OrderNumber,
		OrderDate:    o.OrderDate,
		DeliveryDate: o.DeliveryDate,
		PickupCode:   o.PickupCode,
		StatusID:     o.StatusID,
		Status:       o.Status.Name,
		UserID:       o.UserID,
		UserLogin:    o.User.Login,
		UserFullName: o.User.FullName,
		Lines:        make([]OrderLineSummary, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		sum.Lines = append(sum.Lines, OrderLineSummary{
			ProductID:   l.ProductID,
			Article:     l.Product.Article,
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			Price:       l.Price,
		})
	}
	return sum
}

func toSummaries(rows []models.Order) []OrderSummary {
	out := make([]OrderSummary, 0, len(rows))
	for i := range rows {
		out = append(out, toSummary(&rows[i]))
	}
	return out
}
