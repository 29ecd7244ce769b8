package repository

import (
	"context"
	"errors"
	"time"

	"retail-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderListFilter struct {
	UserID *uuid.UUID
}

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByNumber(ctx context.Context, number string) (*models.Order, error)
	// List returns fully populated orders, newest first.
	List(ctx context.Context, f OrderListFilter) ([]models.Order, error)
	UpdateStatusAndDelivery(ctx context.Context, id, statusID uuid.UUID, delivery *time.Time) error
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(o).Error)
}

func (r *orderRepo) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("order_number = ?", number).Count(&cnt).Error
	return cnt > 0, err
}

func (r *orderRepo) populated(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Status").
		Preload("User").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("product_id ASC") }).
		Preload("Lines.Product")
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	err := r.populated(ctx).First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &o, err
}

func (r *orderRepo) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	var o models.Order
	err := r.populated(ctx).First(&o, "order_number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &o, err
}

func (r *orderRepo) List(ctx context.Context, f OrderListFilter) ([]models.Order, error) {
	q := r.populated(ctx)
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}

	var list []models.Order
	err := q.Order("order_date DESC").Order("order_number DESC").Find(&list).Error
	return list, err
}

func (r *orderRepo) UpdateStatusAndDelivery(ctx context.Context, id, statusID uuid.UUID, delivery *time.Time) error {
	upd := map[string]any{"status_id": statusID}
	if delivery != nil {
		upd["delivery_date"] = *delivery
	}
	return translate(r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(upd).Error)
}

type OrderLineRepo interface {
	BulkCreate(ctx context.Context, lines []models.OrderLine) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error)
}

type orderLineRepo struct{ db *gorm.DB }

func NewOrderLineRepo(db *gorm.DB) OrderLineRepo { return &orderLineRepo{db: db} }

func (r *orderLineRepo) BulkCreate(ctx context.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(&lines).Error)
}

func (r *orderLineRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error) {
	var rows []models.OrderLine
	err := r.db.WithContext(ctx).Preload("Product").Where("order_id = ?", orderID).Order("product_id ASC").Find(&rows).Error
	return rows, err
}
