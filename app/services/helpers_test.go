package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/app/repositories"
	"github.com/shashiranjanraj/kapee/app/repositories/memstore"
	"github.com/shashiranjanraj/kapee/pkg/auth"
	"github.com/shashiranjanraj/kapee/pkg/lock"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fired struct {
	name    string
	payload any
}

// recorder is a services.Publisher that keeps every event.
type recorder struct {
	mu     sync.Mutex
	events []fired
}

func (r *recorder) Fire(_ context.Context, name string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fired{name, payload})
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.name
	}
	return out
}

type fixture struct {
	store  *repositories.Store
	locker lock.Locker
	tokens *auth.TokenService
	events *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		store:  memstore.New(),
		locker: lock.NewMemory(),
		tokens: auth.NewTokenService("test-secret", time.Hour),
		events: &recorder{},
	}
}

func (f *fixture) user(t *testing.T, role string) *models.User {
	t.Helper()
	u := &models.User{ID: primitive.NewObjectID(), Email: primitive.NewObjectID().Hex() + "@x.com", Role: role}
	require.NoError(t, f.store.Users.Create(context.Background(), u))
	return u
}

func (f *fixture) product(t *testing.T, name string, price float64) *models.Product {
	t.Helper()
	p := &models.Product{ID: primitive.NewObjectID(), Name: name, Price: price, Stock: 20}
	p.Normalize(fixedNow)
	require.NoError(t, f.store.Products.Create(context.Background(), p))
	return p
}

// countingCarts counts writes and can fail Delete a set number of times.
type countingCarts struct {
	repositories.CartRepository
	mu          sync.Mutex
	writes      int
	failDeletes int
}

func (c *countingCarts) Save(ctx context.Context, cart *models.Cart) error {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
	return c.CartRepository.Save(ctx, cart)
}

func (c *countingCarts) Delete(ctx context.Context, id primitive.ObjectID) error {
	c.mu.Lock()
	c.writes++
	fail := c.failDeletes > 0
	if fail {
		c.failDeletes--
	}
	c.mu.Unlock()
	if fail {
		return context.DeadlineExceeded
	}
	return c.CartRepository.Delete(ctx, id)
}

// countingOrders counts Create calls. beforeCreate, when set, runs first and
// can stand in for another instance writing the same cart.
type countingOrders struct {
	repositories.OrderRepository
	mu           sync.Mutex
	writes       int
	beforeCreate func(ctx context.Context, order *models.Order)
}

func (o *countingOrders) Create(ctx context.Context, order *models.Order) error {
	o.mu.Lock()
	o.writes++
	hook := o.beforeCreate
	o.mu.Unlock()
	if hook != nil {
		hook(ctx, order)
	}
	return o.OrderRepository.Create(ctx, order)
}
