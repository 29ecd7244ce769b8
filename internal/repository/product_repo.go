package repository

import (
	"context"
	"errors"

	"retail-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sort keys accepted by ProductListFilter.SortBy. Anything else sorts by name.
const (
	SortName         = "name"
	SortNameDesc     = "name_desc"
	SortSupplier     = "supplier"
	SortSupplierDesc = "supplier_desc"
	SortPrice        = "price"
	SortPriceDesc    = "price_desc"
)

type ProductListFilter struct {
	// Search matches name or article, Description matches the description.
	// Both are case-insensitive substrings.
	Search         string
	Description    string
	ManufacturerID *uuid.UUID
	MaxPrice       *decimal.Decimal
	OnlyDiscounted bool
	InStockOnly    bool
	SortBy         string
	Limit          int
	Offset         int
}

var productOrder = map[string]string{
	SortName:         "products.name ASC",
	SortNameDesc:     "products.name DESC",
	SortSupplier:     "suppliers.name ASC",
	SortSupplierDesc: "suppliers.name DESC",
	SortPrice:        "products.price ASC",
	SortPriceDesc:    "products.price DESC",
}

type ProductRepo interface {
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetByArticle(ctx context.Context, article string) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	List(ctx context.Context, f ProductListFilter) ([]models.Product, int64, error)

	// DecrementStock subtracts qty from a tracked stock if enough is left.
	// Untracked (NULL) stock is reported as success and left untouched.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) ProductRepo { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error)
}

func (r *productRepo) Update(ctx context.Context, p *models.Product) error {
	return translate(r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", p.ID).Updates(map[string]any{
		"article":         p.Article,
		"name":            p.Name,
		"unit":            p.Unit,
		"price":           p.Price,
		"discount":        p.Discount,
		"stock_quantity":  p.StockQuantity,
		"description":     p.Description,
		"photo":           p.Photo,
		"category_id":     p.CategoryID,
		"manufacturer_id": p.ManufacturerID,
		"supplier_id":     p.SupplierID,
		"updated_at":      gorm.Expr("now()"),
	}).Error)
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	return tx.RowsAffected > 0, translate(tx.Error)
}

func (r *productRepo) withRefs(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Category").Preload("Manufacturer").Preload("Supplier")
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	err := r.withRefs(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) GetByArticle(ctx context.Context, article string) (*models.Product, error) {
	var p models.Product
	err := r.withRefs(ctx).First(&p, "article = ?", article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}

func (r *productRepo) List(ctx context.Context, f ProductListFilter) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("products.name ILIKE ? OR products.article ILIKE ?", like, like)
	}
	if f.Description != "" {
		q = q.Where("products.description ILIKE ?", "%"+f.Description+"%")
	}
	if f.ManufacturerID != nil {
		q = q.Where("products.manufacturer_id = ?", *f.ManufacturerID)
	}
	if f.MaxPrice != nil {
		q = q.Where("products.price <= ?", *f.MaxPrice)
	}
	if f.OnlyDiscounted {
		q = q.Where("products.discount > 0")
	}
	if f.InStockOnly {
		// untracked stock (NULL) never runs out
		q = q.Where("products.stock_quantity IS NULL OR products.stock_quantity > 0")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	order, ok := productOrder[f.SortBy]
	if !ok {
		order = productOrder[SortName]
	}

	var list []models.Product
	err := q.Select("products.*").
		Joins("JOIN suppliers ON suppliers.id = products.supplier_id").
		Preload("Category").Preload("Manufacturer").Preload("Supplier").
		Order(order).Order("products.id ASC").
		Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	return list, total, err
}

func (r *productRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE products
SET stock_quantity = CASE WHEN stock_quantity IS NULL THEN NULL ELSE stock_quantity - @q END,
    updated_at = now()
WHERE id = @pid
  AND (stock_quantity IS NULL OR stock_quantity >= @q)
`, map[string]any{
		"pid": id,
		"q":   qty,
	})
	return tx.RowsAffected > 0, tx.Error
}
