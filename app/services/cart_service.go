package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/app/repositories"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
	"github.com/shashiranjanraj/kapee/pkg/lock"
	"github.com/shashiranjanraj/kapee/pkg/logger"
)

// CartService mutates a user's cart. Every mutation holds the user's lock,
// the same one finalize takes, so a cart cannot change while it is being
// turned into an order.
type CartService struct {
	carts    repositories.CartRepository
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	locker   lock.Locker
	now      Clock
}

func NewCartService(carts repositories.CartRepository, orders repositories.OrderRepository, products repositories.ProductRepository, locker lock.Locker, now Clock) *CartService {
	return &CartService{carts: carts, orders: orders, products: products, locker: locker, now: now}
}

// withUserLock runs fn while holding the user's lock.
func withUserLock[T any](ctx context.Context, l lock.Locker, user *models.User, fn func() (T, error)) (T, error) {
	release, err := l.Lock(ctx, lock.UserKey(user.ID.Hex()))
	if err != nil {
		var zero T
		kind := apperr.KindOf(err)
		if kind != apperr.Timeout {
			kind = apperr.Unavailable
		}
		return zero, apperr.Wrap(kind, "Cart is busy, try again", err)
	}
	defer release()
	return fn()
}

// Add puts quantity of product into the cart, creating the cart on first
// use. A product already in the cart keeps the price it was added at.
func (s *CartService) Add(ctx context.Context, user *models.User, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, apperr.New(apperr.InvalidInput, "Quantity must be at least 1")
	}

	return withUserLock(ctx, s.locker, user, func() (*models.Cart, error) {
		product, err := s.products.FindByID(ctx, productID)
		if err != nil {
			return nil, err
		}

		cart, err := s.current(ctx, user)
		switch {
		case apperr.Is(err, apperr.NotFound):
			cart = models.NewCart(user.ID, s.now())
		case err != nil:
			return nil, err
		}

		cart.Add(product.ID, quantity, product.Price)
		return s.save(ctx, cart)
	})
}

// Update overwrites the quantity of a product already in the cart. Zero is
// accepted and kept as a zero-quantity line.
func (s *CartService) Update(ctx context.Context, user *models.User, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, apperr.New(apperr.InvalidInput, "Quantity cannot be negative")
	}

	return withUserLock(ctx, s.locker, user, func() (*models.Cart, error) {
		cart, err := s.current(ctx, user)
		if err != nil {
			return nil, err
		}
		if !cart.SetQuantity(productID, quantity) {
			return nil, apperr.ErrItemNotFound
		}
		return s.save(ctx, cart)
	})
}

// Remove drops product from the cart. Removing an absent product returns
// the cart unchanged.
func (s *CartService) Remove(ctx context.Context, user *models.User, productID primitive.ObjectID) (*models.Cart, error) {
	return withUserLock(ctx, s.locker, user, func() (*models.Cart, error) {
		cart, err := s.current(ctx, user)
		if err != nil {
			return nil, err
		}
		if cart.Find(productID) < 0 {
			return cart, nil
		}
		cart.Remove(productID)
		return s.save(ctx, cart)
	})
}

// current loads the user's cart for a mutation. A cart that already has an
// order was consumed by a finalize whose delete failed; it is deleted here
// and reported as not found, so new items start a fresh cart under a new id.
// Must be called with the user lock held.
func (s *CartService) current(ctx context.Context, user *models.User) (*models.Cart, error) {
	cart, err := s.carts.FindByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	consumed, err := s.consumed(ctx, cart)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return cart, nil
	}
	logger.WithCtx(ctx).Warn("dropping cart that outlived its order", "cart_id", cart.ID.Hex())
	if err := s.carts.Delete(ctx, cart.ID); err != nil {
		return nil, err
	}
	return nil, apperr.ErrCartNotFound
}

func (s *CartService) consumed(ctx context.Context, cart *models.Cart) (bool, error) {
	_, err := s.orders.FindByCart(ctx, cart.ID)
	switch {
	case err == nil:
		return true, nil
	case apperr.Is(err, apperr.NotFound):
		return false, nil
	}
	return false, err
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	cart.UpdatedAt = s.now()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Get returns the cart with products resolved. A user without a cart gets
// an empty view, never an error. Lines whose product was deleted keep their
// quantity and price with a nil product. A cart that already became an
// order reads as empty.
func (s *CartService) Get(ctx context.Context, user *models.User) (models.CartView, error) {
	cart, err := s.carts.FindByUser(ctx, user.ID)
	if apperr.Is(err, apperr.NotFound) {
		return models.EmptyCartView(), nil
	}
	if err != nil {
		return models.CartView{}, err
	}
	consumed, err := s.consumed(ctx, cart)
	if err != nil {
		return models.CartView{}, err
	}
	if consumed {
		return models.EmptyCartView(), nil
	}

	ids := make([]primitive.ObjectID, len(cart.Items))
	for i, item := range cart.Items {
		ids[i] = item.ProductID
	}
	products, err := s.products.FindMany(ctx, ids)
	if err != nil {
		return models.CartView{}, err
	}

	view := models.CartView{ID: &cart.ID, Items: make([]models.CartItemView, len(cart.Items)), TotalPrice: cart.TotalPrice}
	for i, item := range cart.Items {
		view.Items[i] = models.CartItemView{Product: products[item.ProductID], Quantity: item.Quantity, Price: item.Price}
	}
	return view, nil
}
