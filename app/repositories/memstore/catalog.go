package memstore

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
)

type ProductRepository struct{ db *DB }

// skuTaken reports whether another product already uses sku. Blank SKUs are
// not indexed.
func (db *DB) skuTaken(sku string, self primitive.ObjectID) bool {
	if sku == "" {
		return false
	}
	for id, p := range db.products {
		if id != self && p.SKU == sku {
			return true
		}
	}
	return false
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	ensureID(&p.ID)
	if r.db.skuTaken(p.SKU, p.ID) {
		return errDuplicate
	}
	r.db.products[p.ID] = *p
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	p, ok := r.db.products[id]
	if !ok {
		return nil, apperr.ErrProductNotFound
	}
	return &p, nil
}

func (r *ProductRepository) FindMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make(map[primitive.ObjectID]*models.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.db.products[id]; ok {
			out[id] = &p
		}
	}
	return out, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return values(r.db.products, func(p models.Product) time.Time { return p.CreatedAt }), nil
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.products[p.ID]; !ok {
		return apperr.ErrProductNotFound
	}
	if r.db.skuTaken(p.SKU, p.ID) {
		return errDuplicate
	}
	r.db.products[p.ID] = *p
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.products[id]; !ok {
		return apperr.ErrProductNotFound
	}
	delete(r.db.products, id)
	return nil
}

type CategoryRepository struct{ db *DB }

func (db *DB) categoryNameTaken(name string, self primitive.ObjectID) bool {
	for id, c := range db.categories {
		if id != self && c.Name == name {
			return true
		}
	}
	return false
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	ensureID(&c.ID)
	if r.db.categoryNameTaken(c.Name, c.ID) {
		return errDuplicate
	}
	r.db.categories[c.ID] = *c
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	c, ok := r.db.categories[id]
	if !ok {
		return nil, apperr.ErrCategoryNotFound
	}
	return &c, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]models.Category, 0, len(r.db.categories))
	for _, c := range r.db.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.categories[c.ID]; !ok {
		return apperr.ErrCategoryNotFound
	}
	if r.db.categoryNameTaken(c.Name, c.ID) {
		return errDuplicate
	}
	r.db.categories[c.ID] = *c
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.categories[id]; !ok {
		return apperr.ErrCategoryNotFound
	}
	delete(r.db.categories, id)
	return nil
}
