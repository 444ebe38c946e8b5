// Package memstore implements the repositories in process memory with the
// same uniqueness rules as the MongoDB indexes. It backs DB_DRIVER=memory
// and the service tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/app/repositories"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
)

// DB holds every collection behind one lock. Values are copied in and out so
// callers never share memory with the store.
type DB struct {
	mu         sync.RWMutex
	users      map[primitive.ObjectID]models.User
	products   map[primitive.ObjectID]models.Product
	categories map[primitive.ObjectID]models.Category
	carts      map[primitive.ObjectID]models.Cart
	orders     map[primitive.ObjectID]models.Order
	contacts   map[primitive.ObjectID]models.Contact
}

func NewDB() *DB {
	return &DB{
		users:      make(map[primitive.ObjectID]models.User),
		products:   make(map[primitive.ObjectID]models.Product),
		categories: make(map[primitive.ObjectID]models.Category),
		carts:      make(map[primitive.ObjectID]models.Cart),
		orders:     make(map[primitive.ObjectID]models.Order),
		contacts:   make(map[primitive.ObjectID]models.Contact),
	}
}

// New returns a Store over a fresh DB.
func New() *repositories.Store {
	return NewDB().Store()
}

// Store returns repositories sharing db.
func (db *DB) Store() *repositories.Store {
	return &repositories.Store{
		Users:      &UserRepository{db},
		Products:   &ProductRepository{db},
		Categories: &CategoryRepository{db},
		Carts:      &CartRepository{db},
		Orders:     &OrderRepository{db},
		Contacts:   &ContactRepository{db},
		Analytics:  &AnalyticsRepository{db},
	}
}

var errDuplicate = apperr.New(apperr.Conflict, "Duplicate record")

func ensureID(id *primitive.ObjectID) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
}

func cloneItems(items []models.LineItem) []models.LineItem {
	if items == nil {
		return []models.LineItem{}
	}
	return append([]models.LineItem(nil), items...)
}

// values returns the map's values ordered newest first by created.
func values[T any](m map[primitive.ObjectID]T, created func(T) time.Time) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return created(out[i]).After(created(out[j]))
	})
	return out
}

// --- users ---------------------------------------------------------------

type UserRepository struct{ db *DB }

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u.EmailKey = models.EmailKey(u.Email)
	for _, existing := range r.db.users {
		if existing.EmailKey == u.EmailKey {
			return errDuplicate
		}
	}
	ensureID(&u.ID)
	r.db.users[u.ID] = *u
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, apperr.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := models.EmailKey(email)
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.EmailKey == key {
			return &u, nil
		}
	}
	return nil, apperr.ErrUserNotFound
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	users := values(r.db.users, func(u models.User) time.Time { return u.CreatedAt })
	for i := range users {
		users[i].Password = ""
		users[i].Tokens = models.Tokens{}
	}
	return users, nil
}

func (r *UserRepository) SetAccessToken(ctx context.Context, id primitive.ObjectID, token string) error {
	_, err := r.update(ctx, id, func(u *models.User) { u.Tokens.AccessToken = token })
	return err
}

func (r *UserRepository) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error) {
	return r.update(ctx, id, func(u *models.User) { u.Role = role })
}

func (r *UserRepository) update(ctx context.Context, id primitive.ObjectID, fn func(*models.User)) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, apperr.ErrUserNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now()
	r.db.users[id] = u
	return &u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[id]; !ok {
		return apperr.ErrUserNotFound
	}
	delete(r.db.users, id)
	return nil
}

func (r *UserRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var n int64
	for _, id := range ids {
		if _, ok := r.db.users[id]; ok {
			delete(r.db.users, id)
			n++
		}
	}
	return n, nil
}

func (r *UserRepository) Stats(ctx context.Context) (models.UserStats, error) {
	if err := ctx.Err(); err != nil {
		return models.UserStats{}, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	stats := models.UserStats{TotalUsers: int64(len(r.db.users))}
	for _, u := range r.db.users {
		if u.Role == models.RoleAdmin {
			stats.AdminUsers++
		}
	}
	return stats, nil
}
