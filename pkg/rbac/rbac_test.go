package rbac_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/pkg/middleware"
	"github.com/shashiranjanraj/kapee/pkg/rbac"
)

func serve(u *models.User) *httptest.ResponseRecorder {
	h := rbac.Admin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/analytics/dashboard-stats", nil)
	if u != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), u))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAdmin(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, serve(nil).Code)

	rec := serve(&models.User{Role: models.RoleUser})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Admin access required")

	assert.Equal(t, http.StatusOK, serve(&models.User{Role: models.RoleAdmin}).Code)
}

func TestHasRoleAcceptsAnyListed(t *testing.T) {
	h := rbac.HasRole(models.RoleUser, models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), &models.User{Role: models.RoleUser}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
