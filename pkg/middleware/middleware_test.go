package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/app/repositories/memstore"
	"github.com/shashiranjanraj/kapee/pkg/auth"
	"github.com/shashiranjanraj/kapee/pkg/middleware"
)

type session struct {
	authn  *middleware.Authenticator
	tokens *auth.TokenService
	users  *memstore.UserRepository
	user   *models.User
	token  string
}

func newSession(t *testing.T) *session {
	t.Helper()
	store := memstore.New()
	users := store.Users.(*memstore.UserRepository)
	tokens := auth.NewTokenService("test-secret", time.Hour)

	u := &models.User{Email: "shopper@kapee.shop", Role: models.RoleUser}
	require.NoError(t, users.Create(context.Background(), u))
	token, err := tokens.Issue(u)
	require.NoError(t, err)
	require.NoError(t, users.SetAccessToken(context.Background(), u.ID, token))

	return &session{
		authn:  middleware.NewAuthenticator(tokens, users),
		tokens: tokens,
		users:  users,
		user:   u,
		token:  token,
	}
}

// whoami echoes the attached user's email, or "anonymous".
func whoami(w http.ResponseWriter, r *http.Request) {
	if u, ok := middleware.UserFromCtx(r.Context()); ok {
		_, _ = w.Write([]byte(u.Email))
		return
	}
	_, _ = w.Write([]byte("anonymous"))
}

func get(h http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/cart/get", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequiredAcceptsCurrentToken(t *testing.T) {
	s := newSession(t)
	h := s.authn.Required(http.HandlerFunc(whoami))

	rec := get(h, "bearer "+s.token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "shopper@kapee.shop", rec.Body.String())
}

func TestRequiredRejects(t *testing.T) {
	s := newSession(t)
	h := s.authn.Required(http.HandlerFunc(whoami))

	expired, err := s.tokens.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).Issue(s.user)
	require.NoError(t, err)

	cases := map[string]struct {
		header  string
		message string
	}{
		"missing":       {"", "No token provided"},
		"wrong scheme":  {"Basic " + s.token, "No token provided"},
		"garbage":       {"Bearer not-a-jwt", "Invalid token"},
		"expired":       {"Bearer " + expired, "Invalid token"},
		"other secret":  {"Bearer " + mustIssue(t, auth.NewTokenService("other", time.Hour), s.user), "Invalid token"},
		"never current": {"Bearer " + mustIssue(t, s.tokens, s.user), "Invalid token"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := get(h, tc.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.message)
		})
	}
}

func TestNewTokenSupersedesOld(t *testing.T) {
	s := newSession(t)
	h := s.authn.Required(http.HandlerFunc(whoami))

	fresh := mustIssue(t, s.tokens, s.user)
	require.NoError(t, s.users.SetAccessToken(context.Background(), s.user.ID, fresh))

	assert.Equal(t, http.StatusUnauthorized, get(h, "Bearer "+s.token).Code)
	assert.Equal(t, http.StatusOK, get(h, "Bearer "+fresh).Code)
}

func TestDeletedUserIsRejected(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.users.Delete(context.Background(), s.user.ID))

	rec := get(s.authn.Required(http.HandlerFunc(whoami)), "Bearer "+s.token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")
}

func TestRoleIsReadFromStore(t *testing.T) {
	s := newSession(t)
	_, err := s.users.UpdateRole(context.Background(), s.user.ID, models.RoleAdmin)
	require.NoError(t, err)

	var role string
	h := s.authn.Required(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := middleware.UserFromCtx(r.Context())
		role = u.Role
	}))
	get(h, "Bearer "+s.token)
	assert.Equal(t, models.RoleAdmin, role)
}

func TestOptionalNeverRejects(t *testing.T) {
	s := newSession(t)
	h := s.authn.Optional(http.HandlerFunc(whoami))

	assert.Equal(t, "anonymous", get(h, "").Body.String())
	assert.Equal(t, "anonymous", get(h, "Bearer junk").Body.String())
	assert.Equal(t, "shopper@kapee.shop", get(h, "Bearer "+s.token).Body.String())
}

func TestRequiredAllowQuery(t *testing.T) {
	s := newSession(t)
	h := s.authn.RequiredAllowQuery(http.HandlerFunc(whoami))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/order/ws?token="+s.token, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.authn.Required(http.HandlerFunc(whoami)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/order/ws?token="+s.token, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimit(t *testing.T) {
	h := middleware.RateLimit(2, time.Minute)(http.HandlerFunc(whoami))

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, get(h, "").Code)
	}
	rec := get(h, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := middleware.CORS(middleware.CORSFromList("https://admin.kapee.shop"))(http.HandlerFunc(whoami))

	req := httptest.NewRequest(http.MethodOptions, "/product/create", nil)
	req.Header.Set("Origin", "https://admin.kapee.shop")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://admin.kapee.shop", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	req = httptest.NewRequest(http.MethodGet, "/product/getAll", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	h := middleware.Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := get(h, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "Server error"))
}

func mustIssue(t *testing.T, s *auth.TokenService, u *models.User) string {
	t.Helper()
	token, err := s.Issue(u)
	require.NoError(t, err)
	return token
}
