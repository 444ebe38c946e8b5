package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/app/repositories"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
	"github.com/shashiranjanraj/kapee/pkg/lock"
	"github.com/shashiranjanraj/kapee/pkg/logger"
	"github.com/shashiranjanraj/kapee/pkg/metrics"
)

// OrderService turns carts into orders and manages order status.
type OrderService struct {
	carts  repositories.CartRepository
	orders repositories.OrderRepository
	locker lock.Locker
	events Publisher
	now    Clock
}

func NewOrderService(carts repositories.CartRepository, orders repositories.OrderRepository, locker lock.Locker, events Publisher, now Clock) *OrderService {
	return &OrderService{carts: carts, orders: orders, locker: locker, events: publisherOrNop(events), now: now}
}

// Finalize converts the user's cart into a pending order and deletes the cart.
//
// The order is written before the cart is deleted, and the cart id is the
// order's unique key. If a previous attempt wrote the order but failed to
// delete the cart, the retry finds that order, deletes the cart and returns
// it instead of creating a second one. Until then cart mutations treat that
// cart as consumed, so the replayed order always matches the cart. The user
// lock keeps two concurrent calls from racing on the same cart.
func (s *OrderService) Finalize(ctx context.Context, user *models.User) (*models.Order, error) {
	outcome := "error"
	order, err := withUserLock(ctx, s.locker, user, func() (*models.Order, error) {
		o, out, err := s.finalize(ctx, user)
		outcome = out
		return o, err
	})
	metrics.OrdersFinalized.WithLabelValues(outcome).Inc()
	return order, err
}

func (s *OrderService) finalize(ctx context.Context, user *models.User) (*models.Order, string, error) {
	log := logger.WithCtx(ctx)

	cart, err := s.carts.FindByUser(ctx, user.ID)
	if apperr.Is(err, apperr.NotFound) {
		return nil, "empty_cart", apperr.ErrEmptyCart
	}
	if err != nil {
		return nil, "error", err
	}
	if cart.IsEmpty() {
		return nil, "empty_cart", apperr.ErrEmptyCart
	}

	existing, err := s.orders.FindByCart(ctx, cart.ID)
	switch {
	case err == nil:
		log.Warn("finalize replayed, cart outlived its order", "order_id", existing.ID.Hex(), "cart_id", cart.ID.Hex())
		if err := s.carts.Delete(ctx, cart.ID); err != nil {
			return nil, "error", err
		}
		return existing, "replayed", nil
	case !apperr.Is(err, apperr.NotFound):
		return nil, "error", err
	}

	now := s.now()
	order := &models.Order{
		ID:         primitive.NewObjectID(),
		UserID:     user.ID,
		CartID:     cart.ID,
		Reference:  orderReference(now),
		Items:      append([]models.LineItem(nil), cart.Items...),
		TotalPrice: cart.TotalPrice,
		Status:     models.OrderPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		if !apperr.Is(err, apperr.Conflict) {
			return nil, "error", err
		}
		// Written by an instance not sharing our lock. That instance deletes
		// the cart and announces the order.
		prior, ferr := s.orders.FindByCart(ctx, cart.ID)
		if ferr != nil {
			return nil, "error", err
		}
		log.Warn("finalize lost the race for its cart", "order_id", prior.ID.Hex(), "cart_id", cart.ID.Hex())
		return prior, "replayed", nil
	}

	// The cart stays on failure. The next attempt takes the replay path above.
	if err := s.carts.Delete(ctx, cart.ID); err != nil {
		log.Error("order written but cart not deleted", "order_id", order.ID.Hex(), "cart_id", cart.ID.Hex(), "error", err)
		return nil, "error", err
	}

	log.Info("order created", "order_id", order.ID.Hex(), "reference", order.Reference, "total", order.TotalPrice)
	s.events.Fire(ctx, EventOrderCreated, *order)
	return order, "created", nil
}

// orderReference is ORD-<yyyymmddhhmmss>-<8 hex chars>.
func orderReference(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + now.Format("20060102150405") + "-" + strings.ToUpper(id[:8])
}

func (s *OrderService) ListMine(ctx context.Context, user *models.User) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, user.ID)
}

func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.orders.ListAll(ctx)
}

func (s *OrderService) Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// UpdateStatus sets any known status. There is no transition table: a
// delivered order can go back to pending.
func (s *OrderService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperr.New(apperr.InvalidInput, "Invalid status")
	}
	order, err := s.orders.UpdateStatus(ctx, id, status, s.now())
	if err != nil {
		return nil, err
	}
	logger.WithCtx(ctx).Info("order status updated", "order_id", id.Hex(), "status", status)
	s.events.Fire(ctx, EventOrderStatusUpdated, *order)
	return order, nil
}
