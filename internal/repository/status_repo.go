package repository

import (
	"context"
	"errors"

	"retail-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatusRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.OrderStatus, error)
	GetByName(ctx context.Context, name string) (*models.OrderStatus, error)
	// EnsureByName returns the status with that name, inserting it first if
	// absent. Concurrent callers converge on the same row.
	EnsureByName(ctx context.Context, name string) (*models.OrderStatus, error)
	List(ctx context.Context) ([]models.OrderStatus, error)
}

type statusRepo struct{ db *gorm.DB }

func NewStatusRepo(db *gorm.DB) StatusRepo { return &statusRepo{db: db} }

func (r *statusRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.OrderStatus, error) {
	var st models.OrderStatus
	err := r.db.WithContext(ctx).First(&st, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &st, err
}

func (r *statusRepo) GetByName(ctx context.Context, name string) (*models.OrderStatus, error) {
	var st models.OrderStatus
	err := r.db.WithContext(ctx).First(&st, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &st, err
}

func (r *statusRepo) EnsureByName(ctx context.Context, name string) (*models.OrderStatus, error) {
	if st, err := r.GetByName(ctx, name); err != nil || st != nil {
		return st, err
	}

	// insert-ignore then reread: the unique index on name arbitrates races
	seed := models.OrderStatus{Name: name}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&seed).Error; err != nil {
		return nil, translate(err)
	}

	st, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, errors.New("status vanished after insert: " + name)
	}
	return st, nil
}

func (r *statusRepo) List(ctx context.Context) ([]models.OrderStatus, error) {
	var list []models.OrderStatus
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}
