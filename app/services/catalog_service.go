package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/app/repositories"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
	"github.com/shashiranjanraj/kapee/pkg/cache"
	"github.com/shashiranjanraj/kapee/pkg/logger"
)

const (
	productListKey = "all"
	productListTTL = 60 * time.Second
)

// ProductInput is the writable part of a product.
type ProductInput struct {
	Name        string
	Category    string
	Price       float64
	SalePrice   float64
	Stock       int
	Status      string
	Published   bool
	Image       string
	Description string
	SKU         string
}

func (in ProductInput) apply(p *models.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Category = strings.TrimSpace(in.Category)
	p.Price = in.Price
	p.SalePrice = in.SalePrice
	p.Stock = in.Stock
	p.Status = in.Status
	p.Published = in.Published
	p.Image = in.Image
	p.Description = in.Description
	p.SKU = in.SKU
}

// ProductService is catalogue CRUD with a cached public listing.
type ProductService struct {
	products repositories.ProductRepository
	cache    *cache.Cache
	now      Clock
}

// NewProductService caches the listing in c; c may have no client.
func NewProductService(products repositories.ProductRepository, c *cache.Cache, now Clock) *ProductService {
	return &ProductService{products: products, cache: c, now: now}
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	var cached []models.Product
	if s.cache.Get(ctx, productListKey, &cached) {
		return cached, nil
	}

	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, productListKey, products, productListTTL); err != nil {
		logger.WithCtx(ctx).Warn("product list not cached", "error", err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	now := s.now()
	p := &models.Product{ID: primitive.NewObjectID(), CreatedAt: now, UpdatedAt: now}
	in.apply(p)
	p.Normalize(now)

	if err := s.products.Create(ctx, p); err != nil {
		if apperr.Is(err, apperr.Conflict) {
			return nil, apperr.Wrap(apperr.Conflict, "Product with this SKU already exists", err)
		}
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id primitive.ObjectID, in ProductInput) (*models.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	return s.modify(ctx, id, func(p *models.Product) { in.apply(p) })
}

// TogglePublished flips the storefront visibility of a product.
func (s *ProductService) TogglePublished(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return s.modify(ctx, id, func(p *models.Product) { p.Published = !p.Published })
}

// SetStock overwrites the stock level. Negative values are stored as zero.
func (s *ProductService) SetStock(ctx context.Context, id primitive.ObjectID, stock int) (*models.Product, error) {
	return s.modify(ctx, id, func(p *models.Product) { p.Stock = stock })
}

func (s *ProductService) modify(ctx context.Context, id primitive.ObjectID, change func(*models.Product)) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	change(p)
	p.UpdatedAt = s.now()
	p.Normalize(p.UpdatedAt)

	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

// Delete removes the product. Carts referencing it keep their line with a
// null product.
func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ProductService) invalidate(ctx context.Context) {
	if err := s.cache.Forget(ctx, productListKey); err != nil {
		logger.WithCtx(ctx).Warn("product cache not invalidated", "error", err)
	}
}

func validateProduct(in ProductInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return apperr.New(apperr.InvalidInput, "Product name is required")
	case in.Price < 0 || in.SalePrice < 0:
		return apperr.New(apperr.InvalidInput, "Price cannot be negative")
	}
	return nil
}

// CategoryInput is the writable part of a category.
type CategoryInput struct {
	Name        string
	Description string
	Image       string
}

type CategoryService struct {
	categories repositories.CategoryRepository
	now        Clock
}

func NewCategoryService(categories repositories.CategoryRepository, now Clock) *CategoryService {
	return &CategoryService{categories: categories, now: now}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	return s.categories.FindByID(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.New(apperr.InvalidInput, "Category name is required")
	}
	now := s.now()
	c := &models.Category{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Image:       in.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, categoryConflict(err)
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id primitive.ObjectID, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.New(apperr.InvalidInput, "Category name is required")
	}
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = name
	c.Description = strings.TrimSpace(in.Description)
	c.Image = in.Image
	c.UpdatedAt = s.now()

	if err := s.categories.Update(ctx, c); err != nil {
		return nil, categoryConflict(err)
	}
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.categories.Delete(ctx, id)
}

func categoryConflict(err error) error {
	if apperr.Is(err, apperr.Conflict) {
		return apperr.Wrap(apperr.Conflict, "Category with this name already exists", err)
	}
	return err
}
