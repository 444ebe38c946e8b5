package auth_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/pkg/auth"
)

func testUser() *models.User {
	return &models.User{ID: primitive.NewObjectID(), Email: "a@x.com", Role: models.RoleUser}
}

func TestIssueAndVerify(t *testing.T) {
	svc := auth.NewTokenService("secret", time.Hour)
	u := testUser()

	token, err := svc.Issue(u)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestIssueIsUniquePerCall(t *testing.T) {
	svc := auth.NewTokenService("secret", time.Hour)
	u := testUser()

	t1, err := svc.Issue(u)
	require.NoError(t, err)
	t2, err := svc.Issue(u)
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := auth.NewTokenService("one", time.Hour).Issue(testUser())
	require.NoError(t, err)

	_, err = auth.NewTokenService("two", time.Hour).Verify(token)
	assert.True(t, errors.Is(err, auth.ErrInvalidToken))
}

func TestVerifyRejectsExpired(t *testing.T) {
	svc := auth.NewTokenService("secret", time.Hour)
	past := svc.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })

	token, err := past.Issue(testUser())
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.True(t, errors.Is(err, auth.ErrInvalidToken))
}

func TestVerifyRejectsMalformedAndTampered(t *testing.T) {
	svc := auth.NewTokenService("secret", time.Hour)

	for _, bad := range []string{"", "abc", "a.b.c"} {
		_, err := svc.Verify(bad)
		assert.ErrorIs(t, err, auth.ErrInvalidToken, bad)
	}

	token, err := svc.Issue(testUser())
	require.NoError(t, err)
	parts := strings.Split(token, ".")
	parts[1] = parts[1] + "x"
	_, err = svc.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	claims := auth.Claims{
		UserID: primitive.NewObjectID().Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = auth.NewTokenService("secret", time.Hour).Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsNonObjectIDSubject(t *testing.T) {
	claims := auth.Claims{
		UserID: "42",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = auth.NewTokenService("secret", time.Hour).Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("p1")
	require.NoError(t, err)
	assert.NotEqual(t, "p1", hash)
	assert.True(t, auth.CheckPassword(hash, "p1"))
	assert.False(t, auth.CheckPassword(hash, "p2"))
}
