package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/app/repositories"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
	"github.com/shashiranjanraj/kapee/pkg/logger"
)

// UserService is the admin view of accounts. Deleting a user leaves their
// cart and orders in place.
type UserService struct {
	users repositories.UserRepository
}

func NewUserService(users repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) List(ctx context.Context) ([]models.UserView, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]models.UserView, len(users))
	for i := range users {
		views[i] = users[i].View()
	}
	return views, nil
}

func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (models.UserView, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return models.UserView{}, err
	}
	return u.View(), nil
}

func (s *UserService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("user deleted", "user_id", id.Hex())
	return nil
}

// BulkDelete removes the users in ids and reports how many existed.
func (s *UserService) BulkDelete(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, apperr.New(apperr.InvalidInput, "No user ids given")
	}
	n, err := s.users.DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}
	logger.WithCtx(ctx).Info("users deleted", "requested", len(ids), "deleted", n)
	return n, nil
}

// UpdateRole takes effect on the user's next request; the role is always
// read from the stored record, never from token claims.
func (s *UserService) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) (models.UserView, error) {
	if !models.ValidRole(role) {
		return models.UserView{}, apperr.New(apperr.InvalidInput, "Invalid role")
	}
	u, err := s.users.UpdateRole(ctx, id, role)
	if err != nil {
		return models.UserView{}, err
	}
	return u.View(), nil
}

func (s *UserService) Stats(ctx context.Context) (models.UserStats, error) {
	return s.users.Stats(ctx)
}
