package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/app/services"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
	"github.com/shashiranjanraj/kapee/pkg/middleware"
)

func TestRegisterLoginSupersedesToken(t *testing.T) {
	f := newFixture(t)
	svc := services.NewAuthService(f.store.Users, f.tokens, f.events, clock)
	authn := middleware.NewAuthenticator(f.tokens, f.store.Users)
	ctx := context.Background()

	reg, err := svc.Register(ctx, nil, services.RegisterInput{Name: "Ada", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, reg.User.Role)
	assert.Equal(t, []string{services.EventUserRegistered}, f.events.names())

	_, err = authn.Resolve(ctx, reg.Token)
	require.NoError(t, err, "the registration token is a live session")

	login, err := svc.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	assert.NotEqual(t, reg.Token, login.Token)

	_, err = authn.Resolve(ctx, reg.Token)
	assert.True(t, apperr.Is(err, apperr.Unauthenticated), "superseded token must be rejected")

	user, err := authn.Resolve(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, user.ID)
}

func TestRegisterRejectsDuplicateEmailCaseInsensitively(t *testing.T) {
	f := newFixture(t)
	svc := services.NewAuthService(f.store.Users, f.tokens, nil, clock)
	ctx := context.Background()

	_, err := svc.Register(ctx, nil, services.RegisterInput{Name: "Ada", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, nil, services.RegisterInput{Name: "Ada", Email: "A@X.com", Password: "p2"})
	assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)
}

func TestRegisterIgnoresRoleFromNonAdmin(t *testing.T) {
	f := newFixture(t)
	svc := services.NewAuthService(f.store.Users, f.tokens, nil, clock)
	ctx := context.Background()

	res, err := svc.Register(ctx, nil, services.RegisterInput{Email: "m@x.com", Password: "p", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, res.User.Role)

	plain := f.user(t, models.RoleUser)
	res, err = svc.Register(ctx, plain, services.RegisterInput{Email: "n@x.com", Password: "p", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, res.User.Role)

	admin := f.user(t, models.RoleAdmin)
	res, err = svc.Register(ctx, admin, services.RegisterInput{Email: "o@x.com", Password: "p", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.User.Role)

	_, err = svc.Register(ctx, admin, services.RegisterInput{Email: "q@x.com", Password: "p", Role: "root"})
	assert.True(t, apperr.Is(err, apperr.InvalidInput))
}

func TestLoginFailuresLookAlike(t *testing.T) {
	f := newFixture(t)
	svc := services.NewAuthService(f.store.Users, f.tokens, nil, clock)
	ctx := context.Background()

	_, err := svc.Register(ctx, nil, services.RegisterInput{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "a@x.com", "nope")
	_, unknownEmail := svc.Login(ctx, "b@x.com", "p1")
	assert.ErrorIs(t, wrongPassword, apperr.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, apperr.ErrInvalidCredentials)
	assert.Equal(t, apperr.Message(wrongPassword), apperr.Message(unknownEmail))
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	svc := services.NewAuthService(f.store.Users, f.tokens, nil, clock)
	authn := middleware.NewAuthenticator(f.tokens, f.store.Users)
	ctx := context.Background()

	res, err := svc.Register(ctx, nil, services.RegisterInput{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)
	user, err := authn.Resolve(ctx, res.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, user))
	_, err = authn.Resolve(ctx, res.Token)
	assert.True(t, apperr.Is(err, apperr.Unauthenticated))
}

func TestUserServiceRoleAndBulkDelete(t *testing.T) {
	f := newFixture(t)
	svc := services.NewUserService(f.store.Users)
	ctx := context.Background()
	a, b := f.user(t, models.RoleUser), f.user(t, models.RoleUser)

	view, err := svc.UpdateRole(ctx, a.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, view.Role)

	_, err = svc.UpdateRole(ctx, a.ID, "owner")
	assert.True(t, apperr.Is(err, apperr.InvalidInput))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.UserStats{TotalUsers: 2, AdminUsers: 1}, stats)

	_, err = svc.BulkDelete(ctx, nil)
	assert.True(t, apperr.Is(err, apperr.InvalidInput))

	n, err := svc.BulkDelete(ctx, []primitive.ObjectID{a.ID, b.ID, primitive.NewObjectID()})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
