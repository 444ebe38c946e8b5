package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
)

// OrderRepository stores finalized orders. cart_id is unique.
type OrderRepository struct{ collection }

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	ctx, done := r.op(ctx, "insert")
	defer done()

	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, o)
	return classify(err, nil)
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *OrderRepository) FindByCart(ctx context.Context, cartID primitive.ObjectID) (*models.Order, error) {
	return r.findOne(ctx, bson.M{"cart_id": cartID})
}

func (r *OrderRepository) findOne(ctx context.Context, filter bson.M) (*models.Order, error) {
	ctx, done := r.op(ctx, "find")
	defer done()

	var o models.Order
	if err := r.coll.FindOne(ctx, filter).Decode(&o); err != nil {
		return nil, classify(err, apperr.ErrOrderNotFound)
	}
	return &o, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return r.list(ctx, bson.M{"user": userID})
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, bson.M{})
}

func (r *OrderRepository) list(ctx context.Context, filter bson.M) ([]models.Order, error) {
	ctx, done := r.op(ctx, "find")
	defer done()

	cur, err := r.coll.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, classify(err, nil)
	}
	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, classify(err, nil)
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus, now time.Time) (*models.Order, error) {
	ctx, done := r.op(ctx, "update")
	defer done()

	var o models.Order
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&o)
	if err != nil {
		return nil, classify(err, apperr.ErrOrderNotFound)
	}
	return &o, nil
}
