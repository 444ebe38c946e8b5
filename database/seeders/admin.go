package seeders

import (
	"context"
	"errors"
	"time"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/app/repositories"
	"github.com/shashiranjanraj/kapee/config"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
	"github.com/shashiranjanraj/kapee/pkg/auth"
)

var ErrNoAdminCredentials = errors.New("seeders: ADMIN_EMAIL and ADMIN_PASSWORD must be set")

func init() {
	Register("admin", func(ctx context.Context, store *repositories.Store) error {
		email, password := config.Get("ADMIN_EMAIL", ""), config.Get("ADMIN_PASSWORD", "")
		if email == "" {
			// Nothing to do when no admin is configured.
			return nil
		}
		return EnsureAdmin(ctx, store.Users, email, password)
	})
	Register("categories", seedCategories)
}

// EnsureAdmin promotes the account for email to admin, creating it with
// password when it does not exist yet. Existing passwords are left alone.
func EnsureAdmin(ctx context.Context, users repositories.UserRepository, email, password string) error {
	existing, err := users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return nil
		}
		_, err = users.UpdateRole(ctx, existing.ID, models.RoleAdmin)
		return err
	case !apperr.Is(err, apperr.NotFound):
		return err
	}

	if password == "" {
		return ErrNoAdminCredentials
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return users.Create(ctx, &models.User{
		Name:      "Administrator",
		Email:     email,
		EmailKey:  models.EmailKey(email),
		Password:  hash,
		Role:      models.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	})
}
