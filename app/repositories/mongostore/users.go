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

// UserRepository stores users in the users collection.
type UserRepository struct{ collection }

// publicFields drops the hash and session token from listings.
var publicFields = options.Find().
	SetProjection(bson.M{"password": 0, "tokens": 0}).
	SetSort(bson.D{{Key: "created_at", Value: -1}})

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	ctx, done := r.op(ctx, "insert")
	defer done()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.EmailKey = models.EmailKey(u.Email)

	_, err := r.coll.InsertOne(ctx, u)
	return classify(err, nil)
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email_key": models.EmailKey(email)})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, done := r.op(ctx, "find")
	defer done()

	var u models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, classify(err, apperr.ErrUserNotFound)
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	ctx, done := r.op(ctx, "find")
	defer done()

	cur, err := r.coll.Find(ctx, bson.M{}, publicFields)
	if err != nil {
		return nil, classify(err, nil)
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, classify(err, nil)
	}
	return users, nil
}

func (r *UserRepository) SetAccessToken(ctx context.Context, id primitive.ObjectID, token string) error {
	ctx, done := r.op(ctx, "update")
	defer done()

	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"tokens.access_token": token,
		"updated_at":          time.Now(),
	}})
	if err != nil {
		return classify(err, nil)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error) {
	ctx, done := r.op(ctx, "update")
	defer done()

	var u models.User
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": role, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return nil, classify(err, apperr.ErrUserNotFound)
	}
	return &u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, done := r.op(ctx, "delete")
	defer done()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classify(err, nil)
	}
	if res.DeletedCount == 0 {
		return apperr.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	ctx, done := r.op(ctx, "delete")
	defer done()

	res, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, classify(err, nil)
	}
	return res.DeletedCount, nil
}

func (r *UserRepository) Stats(ctx context.Context) (models.UserStats, error) {
	ctx, done := r.op(ctx, "count")
	defer done()

	var stats models.UserStats
	var err error
	if stats.TotalUsers, err = r.coll.CountDocuments(ctx, bson.M{}); err != nil {
		return stats, classify(err, nil)
	}
	if stats.AdminUsers, err = r.coll.CountDocuments(ctx, bson.M{"role": models.RoleAdmin}); err != nil {
		return stats, classify(err, nil)
	}
	return stats, nil
}
