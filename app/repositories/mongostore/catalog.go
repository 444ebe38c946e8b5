package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
)

var newestFirst = options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

// ProductRepository stores the catalogue.
type ProductRepository struct{ collection }

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	ctx, done := r.op(ctx, "insert")
	defer done()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, p)
	return classify(err, nil)
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	ctx, done := r.op(ctx, "find")
	defer done()

	var p models.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, classify(err, apperr.ErrProductNotFound)
	}
	return &p, nil
}

func (r *ProductRepository) FindMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error) {
	out := make(map[primitive.ObjectID]*models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, done := r.op(ctx, "find")
	defer done()

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, classify(err, nil)
	}
	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, classify(err, nil)
	}
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	ctx, done := r.op(ctx, "find")
	defer done()

	cur, err := r.coll.Find(ctx, bson.M{}, newestFirst)
	if err != nil {
		return nil, classify(err, nil)
	}
	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, classify(err, nil)
	}
	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	ctx, done := r.op(ctx, "update")
	defer done()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return classify(err, nil)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, done := r.op(ctx, "delete")
	defer done()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classify(err, nil)
	}
	if res.DeletedCount == 0 {
		return apperr.ErrProductNotFound
	}
	return nil
}

// CategoryRepository stores product categories.
type CategoryRepository struct{ collection }

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	ctx, done := r.op(ctx, "insert")
	defer done()

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, c)
	return classify(err, nil)
}

func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	ctx, done := r.op(ctx, "find")
	defer done()

	var c models.Category
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, classify(err, apperr.ErrCategoryNotFound)
	}
	return &c, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	ctx, done := r.op(ctx, "find")
	defer done()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, classify(err, nil)
	}
	categories := []models.Category{}
	if err := cur.All(ctx, &categories); err != nil {
		return nil, classify(err, nil)
	}
	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	ctx, done := r.op(ctx, "update")
	defer done()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return classify(err, nil)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, done := r.op(ctx, "delete")
	defer done()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classify(err, nil)
	}
	if res.DeletedCount == 0 {
		return apperr.ErrCategoryNotFound
	}
	return nil
}
