// Package mongostore implements the repositories on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/kapee/app/repositories"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
	"github.com/shashiranjanraj/kapee/pkg/database"
	"github.com/shashiranjanraj/kapee/pkg/metrics"
)

// New builds a Store over db. Every call runs under its own timeout.
func New(client *mongo.Client, db *mongo.Database, timeout time.Duration) *repositories.Store {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	c := func(name string) collection {
		return collection{coll: db.Collection(name), name: name, timeout: timeout}
	}

	return &repositories.Store{
		Users:      &UserRepository{c(database.Users)},
		Products:   &ProductRepository{c(database.Products)},
		Categories: &CategoryRepository{c(database.Categories)},
		Carts:      &CartRepository{c(database.Carts)},
		Orders:     &OrderRepository{c(database.Orders)},
		Contacts:   &ContactRepository{c(database.Contacts)},
		Analytics: &AnalyticsRepository{
			users:      c(database.Users),
			products:   c(database.Products),
			categories: c(database.Categories),
			orders:     c(database.Orders),
		},
		Close: client.Disconnect,
	}
}

// collection is a mongo collection plus the per-call timeout and metric label.
type collection struct {
	coll    *mongo.Collection
	name    string
	timeout time.Duration
}

// op derives the call context and returns a done func that cancels it and
// records the call duration.
func (c collection) op(ctx context.Context, operation string) (context.Context, func()) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	return ctx, func() {
		cancel()
		metrics.ObserveDBQuery(c.name, operation, start)
	}
}

// classify maps driver errors onto apperr kinds. notFound is returned for
// mongo.ErrNoDocuments.
func classify(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return notFound
	case mongo.IsDuplicateKeyError(err):
		return apperr.Wrap(apperr.Conflict, "Duplicate record", err)
	case errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err):
		return apperr.Wrap(apperr.Timeout, "Request timed out", err)
	case mongo.IsNetworkError(err):
		return apperr.Wrap(apperr.Unavailable, "Service unavailable", err)
	default:
		return fmt.Errorf("mongostore: %w", err)
	}
}
