package repository

import (
	"context"

	"retail-service/internal/models"

	"gorm.io/gorm"
)

// ReferenceRepo reads the lookup tables behind product forms and filters.
type ReferenceRepo interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Manufacturers(ctx context.Context) ([]models.Manufacturer, error)
	Suppliers(ctx context.Context) ([]models.Supplier, error)
	// Units lists the distinct units already used by products.
	Units(ctx context.Context) ([]string, error)
}

type referenceRepo struct{ db *gorm.DB }

func NewReferenceRepo(db *gorm.DB) ReferenceRepo { return &referenceRepo{db: db} }

func (r *referenceRepo) Categories(ctx context.Context) ([]models.Category, error) {
	var list []models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

func (r *referenceRepo) Manufacturers(ctx context.Context) ([]models.Manufacturer, error) {
	var list []models.Manufacturer
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

func (r *referenceRepo) Suppliers(ctx context.Context) ([]models.Supplier, error) {
	var list []models.Supplier
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

func (r *referenceRepo) Units(ctx context.Context) ([]string, error) {
	var units []string
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Distinct("unit").Order("unit ASC").Pluck("unit", &units).Error
	return units, err
}
