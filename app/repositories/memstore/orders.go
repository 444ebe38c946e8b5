package memstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
)

type CartRepository struct{ db *DB }

func (r *CartRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, c := range r.db.carts {
		if c.UserID == userID {
			c.Items = cloneItems(c.Items)
			return &c, nil
		}
	}
	return nil, apperr.ErrCartNotFound
}

func (r *CartRepository) Save(ctx context.Context, c *models.Cart) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	ensureID(&c.ID)
	for id, existing := range r.db.carts {
		if id != c.ID && existing.UserID == c.UserID {
			return errDuplicate
		}
	}
	stored := *c
	stored.Items = cloneItems(c.Items)
	r.db.carts[c.ID] = stored
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	delete(r.db.carts, id)
	return nil
}

type OrderRepository struct{ db *DB }

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.orders {
		if existing.CartID == o.CartID {
			return errDuplicate
		}
	}
	ensureID(&o.ID)
	stored := *o
	stored.Items = cloneItems(o.Items)
	r.db.orders[o.ID] = stored
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	o, ok := r.db.orders[id]
	if !ok {
		return nil, apperr.ErrOrderNotFound
	}
	o.Items = cloneItems(o.Items)
	return &o, nil
}

func (r *OrderRepository) FindByCart(ctx context.Context, cartID primitive.ObjectID) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, o := range r.db.orders {
		if o.CartID == cartID {
			o.Items = cloneItems(o.Items)
			return &o, nil
		}
	}
	return nil, apperr.ErrOrderNotFound
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return r.list(ctx, func(o models.Order) bool { return o.UserID == userID })
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, func(models.Order) bool { return true })
}

func (r *OrderRepository) list(ctx context.Context, keep func(models.Order) bool) ([]models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	all := values(r.db.orders, func(o models.Order) time.Time { return o.CreatedAt })
	out := make([]models.Order, 0, len(all))
	for _, o := range all {
		if keep(o) {
			o.Items = cloneItems(o.Items)
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus, now time.Time) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	o, ok := r.db.orders[id]
	if !ok {
		return nil, apperr.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = now
	r.db.orders[id] = o
	o.Items = cloneItems(o.Items)
	return &o, nil
}

type ContactRepository struct{ db *DB }

func (r *ContactRepository) Create(ctx context.Context, c *models.Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	ensureID(&c.ID)
	r.db.contacts[c.ID] = *c
	return nil
}

func (r *ContactRepository) List(ctx context.Context) ([]models.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return values(r.db.contacts, func(c models.Contact) time.Time { return c.CreatedAt }), nil
}
