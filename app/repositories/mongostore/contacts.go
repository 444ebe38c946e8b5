package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/models"
)

// ContactRepository stores contact form submissions.
type ContactRepository struct{ collection }

func (r *ContactRepository) Create(ctx context.Context, c *models.Contact) error {
	ctx, done := r.op(ctx, "insert")
	defer done()

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, c)
	return classify(err, nil)
}

func (r *ContactRepository) List(ctx context.Context) ([]models.Contact, error) {
	ctx, done := r.op(ctx, "find")
	defer done()

	cur, err := r.coll.Find(ctx, bson.M{}, newestFirst)
	if err != nil {
		return nil, classify(err, nil)
	}
	contacts := []models.Contact{}
	if err := cur.All(ctx, &contacts); err != nil {
		return nil, classify(err, nil)
	}
	return contacts, nil
}
