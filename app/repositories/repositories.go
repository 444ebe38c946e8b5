// Package repositories declares the persistence interfaces the services
// depend on. Implementations live in the mongo and memory subpackages.
//
// Every implementation reports absence as an apperr NotFound error, a
// uniqueness violation as apperr Conflict and an expired context as a
// context.DeadlineExceeded wrap, so services never see driver errors.
package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/models"
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create inserts u, assigning an ID when unset. Conflict if the email
	// key is already taken.
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// FindByEmail matches on models.EmailKey(email).
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	// SetAccessToken stores token as the only valid session for id.
	SetAccessToken(ctx context.Context, id primitive.ObjectID, token string) error
	UpdateRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	Stats(ctx context.Context) (models.UserStats, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	// FindMany returns the products that still exist among ids, keyed by ID.
	FindMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type CategoryRepository interface {
	Create(ctx context.Context, c *models.Category) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CartRepository stores at most one cart per user.
type CartRepository interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	// Save inserts or replaces the cart by ID.
	Save(ctx context.Context, c *models.Cart) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type OrderRepository interface {
	// Create inserts o. Conflict if an order already exists for o.CartID.
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByCart(ctx context.Context, cartID primitive.ObjectID) (*models.Order, error)
	// ListByUser and ListAll return newest first.
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus, now time.Time) (*models.Order, error)
}

type ContactRepository interface {
	Create(ctx context.Context, c *models.Contact) error
	List(ctx context.Context) ([]models.Contact, error)
}

// SalesPeriod selects the bucket width of a sales report.
type SalesPeriod string

const (
	PeriodWeek  SalesPeriod = "week"
	PeriodMonth SalesPeriod = "month"
	PeriodYear  SalesPeriod = "year"
)

// Layout is the time layout of a bucket key for p.
func (p SalesPeriod) Layout() string {
	switch p {
	case PeriodWeek:
		return "2006-01-02"
	case PeriodYear:
		return "2006"
	default:
		return "2006-01"
	}
}

// AnalyticsRepository runs the read-only reports behind the admin dashboard.
type AnalyticsRepository interface {
	// Dashboard counts orders created after since as recent.
	Dashboard(ctx context.Context, since time.Time) (models.DashboardStats, error)
	// Sales buckets orders created after from by period, ascending by key.
	Sales(ctx context.Context, period SalesPeriod, from time.Time) ([]models.SalesBucket, error)
	TopProducts(ctx context.Context, limit int) ([]models.TopProduct, error)
	// CategorySales leaves Percentage for the caller.
	CategorySales(ctx context.Context) ([]models.CategorySales, error)
}

// Store bundles one implementation of every repository.
type Store struct {
	Users      UserRepository
	Products   ProductRepository
	Categories CategoryRepository
	Carts      CartRepository
	Orders     OrderRepository
	Contacts   ContactRepository
	Analytics  AnalyticsRepository

	// Close releases the backing connection. Nil for in-memory stores.
	Close func(ctx context.Context) error
}
