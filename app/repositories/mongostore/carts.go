package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
)

// CartRepository stores live carts, one per user.
type CartRepository struct{ collection }

func (r *CartRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	ctx, done := r.op(ctx, "find")
	defer done()

	var c models.Cart
	if err := r.coll.FindOne(ctx, bson.M{"user": userID}).Decode(&c); err != nil {
		return nil, classify(err, apperr.ErrCartNotFound)
	}
	return &c, nil
}

func (r *CartRepository) Save(ctx context.Context, c *models.Cart) error {
	ctx, done := r.op(ctx, "upsert")
	defer done()

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": c.ID}, c, options.Replace().SetUpsert(true))
	return classify(err, nil)
}

// Delete removes the cart. Deleting a cart that is already gone succeeds.
func (r *CartRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, done := r.op(ctx, "delete")
	defer done()

	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return classify(err, nil)
}
