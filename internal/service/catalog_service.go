package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"retail-service/internal/models"
	"retail-service/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductInput struct {
	Article        string
	Name           string
	Unit           string
	Price          decimal.Decimal
	Discount       int
	StockQuantity  *int
	Description    *string
	Photo          *string
	CategoryID     uuid.UUID
	ManufacturerID uuid.UUID
	SupplierID     uuid.UUID
}

type ProductView struct {
	ID             uuid.UUID
	Article        string
	Name           string
	Unit           string
	Price          decimal.Decimal
	Discount       int
	FinalPrice     decimal.Decimal
	StockQuantity  *int
	Description    *string
	Photo          *string
	CategoryID     uuid.UUID
	Category       string
	ManufacturerID uuid.UUID
	Manufacturer   string
	SupplierID     uuid.UUID
	Supplier       string

	HasDiscount  bool
	HighDiscount bool
	InStock      bool
}

// HighDiscountThreshold is the discount percent above which a product is
// highlighted in listings.
const HighDiscountThreshold = 15

// ProductQuery narrows and orders a catalog listing. Zero values disable
// each filter; an unknown SortBy falls back to name.
type ProductQuery struct {
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

type ReferenceItem struct {
	ID   uuid.UUID
	Name string
}

type ProductPage struct {
	Items []ProductView
	Total int64
}

type CatalogService struct {
	products repository.ProductRepo
	refs     repository.ReferenceRepo
	log      *zap.Logger
}

func NewCatalogService(products repository.ProductRepo, refs repository.ReferenceRepo, log *zap.Logger) *CatalogService {
	return &CatalogService{products: products, refs: refs, log: log}
}

// DiscountedPrice applies a percentage discount, rounded to cents.
func DiscountedPrice(price decimal.Decimal, discount int) decimal.Decimal {
	if discount <= 0 {
		return price
	}
	factor := decimal.NewFromInt(int64(100 - discount)).Div(decimal.NewFromInt(100))
	return price.Mul(factor).Round(2)
}

func toProductView(p *models.Product) ProductView {
	return ProductView{
		ID:             p.ID,
		Article:        p.Article,
		Name:           p.Name,
		Unit:           p.Unit,
		Price:          p.Price,
		Discount:       p.Discount,
		FinalPrice:     DiscountedPrice(p.Price, p.Discount),
		StockQuantity:  p.StockQuantity,
		Description:    p.Description,
		Photo:          p.Photo,
		CategoryID:     p.CategoryID,
		Category:       p.Category.Name,
		ManufacturerID: p.ManufacturerID,
		Manufacturer:   p.Manufacturer.Name,
		SupplierID:     p.SupplierID,
		Supplier:       p.Supplier.Name,
		HasDiscount:    p.Discount > 0,
		HighDiscount:   p.Discount > HighDiscountThreshold,
		InStock:        p.StockQuantity == nil || *p.StockQuantity > 0,
	}
}

func validateProduct(in *ProductInput) error {
	in.Article = strings.TrimSpace(in.Article)
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Article == "":
		return fmt.Errorf("%w: article is required", ErrInvalidProduct)
	case in.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case in.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	case in.Discount < 0 || in.Discount > 100:
		return fmt.Errorf("%w: discount must be within 0..100", ErrInvalidProduct)
	case in.StockQuantity != nil && *in.StockQuantity < 0:
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	case in.CategoryID == uuid.Nil || in.ManufacturerID == uuid.Nil || in.SupplierID == uuid.Nil:
		return fmt.Errorf("%w: category, manufacturer and supplier are required", ErrInvalidProduct)
	}
	if in.Unit == "" {
		in.Unit = "шт."
	}
	return nil
}

func (s *CatalogService) List(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	rows, total, err := s.products.List(ctx, repository.ProductListFilter{
		Search:         strings.TrimSpace(q.Search),
		Description:    strings.TrimSpace(q.Description),
		ManufacturerID: q.ManufacturerID,
		MaxPrice:       q.MaxPrice,
		OnlyDiscounted: q.OnlyDiscounted,
		InStockOnly:    q.InStockOnly,
		SortBy:         q.SortBy,
		Limit:          q.Limit,
		Offset:         q.Offset,
	})
	if err != nil {
		return nil, storeErr("list products", err)
	}
	page := &ProductPage{Items: make([]ProductView, 0, len(rows)), Total: total}
	for i := range rows {
		page.Items = append(page.Items, toProductView(&rows[i]))
	}
	return page, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]ReferenceItem, error) {
	rows, err := s.refs.Categories(ctx)
	if err != nil {
		return nil, storeErr("list categories", err)
	}
	out := make([]ReferenceItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, ReferenceItem{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

func (s *CatalogService) Manufacturers(ctx context.Context) ([]ReferenceItem, error) {
	rows, err := s.refs.Manufacturers(ctx)
	if err != nil {
		return nil, storeErr("list manufacturers", err)
	}
	out := make([]ReferenceItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, ReferenceItem{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

func (s *CatalogService) Suppliers(ctx context.Context) ([]ReferenceItem, error) {
	rows, err := s.refs.Suppliers(ctx)
	if err != nil {
		return nil, storeErr("list suppliers", err)
	}
	out := make([]ReferenceItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, ReferenceItem{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

func (s *CatalogService) Units(ctx context.Context) ([]string, error) {
	units, err := s.refs.Units(ctx)
	if err != nil {
		return nil, storeErr("list units", err)
	}
	if units == nil {
		units = []string{}
	}
	return units, nil
}

func (s *CatalogService) GetByArticle(ctx context.Context, article string) (*ProductView, error) {
	p, err := s.products.GetByArticle(ctx, article)
	if err != nil {
		return nil, storeErr("get product", err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	v := toProductView(p)
	return &v, nil
}

func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*ProductView, error) {
	if err := validateProduct(&in); err != nil {
		return nil, err
	}
	existing, err := s.products.GetByArticle(ctx, in.Article)
	if err != nil {
		return nil, storeErr("get product", err)
	}
	if existing != nil {
		return nil, ErrArticleExists
	}

	p := &models.Product{ID: uuid.New()}
	applyProductInput(p, in)
	if err := s.products.Create(ctx, p); err != nil {
		return nil, s.writeErr("create product", err)
	}
	s.log.Info("product created", zap.String("article", p.Article))
	return s.reload(ctx, p.ID)
}

func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, in ProductInput) (*ProductView, error) {
	if err := validateProduct(&in); err != nil {
		return nil, err
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get product", err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	if in.Article != p.Article {
		other, err := s.products.GetByArticle(ctx, in.Article)
		if err != nil {
			return nil, storeErr("get product", err)
		}
		if other != nil {
			return nil, ErrArticleExists
		}
	}

	applyProductInput(p, in)
	if err := s.products.Update(ctx, p); err != nil {
		return nil, s.writeErr("update product", err)
	}
	s.log.Info("product updated", zap.String("article", p.Article))
	return s.reload(ctx, p.ID)
}

func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.products.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return ErrProductInUse
		}
		return storeErr("delete product", err)
	}
	if !ok {
		return ErrProductNotFound
	}
	s.log.Info("product deleted", zap.String("id", id.String()))
	return nil
}

func (s *CatalogService) reload(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get product", err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	v := toProductView(p)
	return &v, nil
}

func (s *CatalogService) writeErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return ErrArticleExists
	case errors.Is(err, repository.ErrForeignKey):
		return fmt.Errorf("%w: unknown category, manufacturer or supplier", ErrInvalidProduct)
	}
	return storeErr(op, err)
}

func applyProductInput(p *models.Product, in ProductInput) {
	p.Article = in.Article
	p.Name = in.Name
	p.Unit = in.Unit
	p.Price = in.Price.Round(2)
	p.Discount = in.Discount
	p.StockQuantity = in.StockQuantity
	p.Description = in.Description
	p.Photo = in.Photo
	p.CategoryID = in.CategoryID
	p.ManufacturerID = in.ManufacturerID
	p.SupplierID = in.SupplierID
}
