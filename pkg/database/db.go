// Package database opens the MongoDB connection and maintains the indexes
// the repositories rely on for uniqueness.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	Users      = "users"
	Products   = "products"
	Categories = "categories"
	Carts      = "carts"
	Orders     = "orders"
	Contacts   = "contacts"
)

// Connect dials uri, pings the primary and returns the named database.
// Returns an error instead of exiting so the caller can shut down cleanly.
func Connect(ctx context.Context, uri, name string, timeout time.Duration) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*timeout)
	defer cancel()

	opts := options.Client().ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetMaxPoolSize(50)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("database: connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("database: ping: %w", err)
	}

	return client, client.Database(name), nil
}

// Index is one index the schema requires.
type Index struct {
	Collection string
	Model      mongo.IndexModel
}

// Indexes lists every index the repositories depend on. The unique ones
// enforce one account per email, one cart per user and one order per cart.
func Indexes() []Index {
	return []Index{
		{Users, mongo.IndexModel{
			Keys:    bson.D{{Key: "email_key", Value: 1}},
			Options: options.Index().SetName("email_key_unique").SetUnique(true),
		}},
		{Carts, mongo.IndexModel{
			Keys:    bson.D{{Key: "user", Value: 1}},
			Options: options.Index().SetName("user_unique").SetUnique(true),
		}},
		{Orders, mongo.IndexModel{
			Keys:    bson.D{{Key: "cart_id", Value: 1}},
			Options: options.Index().SetName("cart_id_unique").SetUnique(true),
		}},
		{Orders, mongo.IndexModel{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_created_at"),
		}},
		{Orders, mongo.IndexModel{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_at"),
		}},
		{Categories, mongo.IndexModel{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("name_unique").SetUnique(true),
		}},
		{Products, mongo.IndexModel{
			Keys:    bson.D{{Key: "sku", Value: 1}},
			Options: options.Index().SetName("sku_unique").SetUnique(true).SetSparse(true),
		}},
	}
}

// EnsureIndexes creates any missing index. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, idx := range Indexes() {
		if _, err := db.Collection(idx.Collection).Indexes().CreateOne(ctx, idx.Model); err != nil {
			return fmt.Errorf("database: create index %s on %s: %w", *idx.Model.Options.Name, idx.Collection, err)
		}
	}
	return nil
}
