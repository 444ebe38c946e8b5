package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tag(value string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", value)
			next.ServeHTTP(w, r)
		})
	}
}

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestGroupJoinsPrefixesAndRunsMiddlewareInOrder(t *testing.T) {
	r := New()
	api := r.Group("/order/", tag("group"))
	api.Put("/updateStatus/{id}", "order.status", ok, tag("route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/order/updateStatus/abc", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"group", "route"}, rec.Header().Values("X-Chain"))
}

func TestRoutesAreSorted(t *testing.T) {
	r := New()
	r.Post("/cart/add", "cart.add", ok)
	r.Get("/cart/get", "cart.get", ok)
	r.Patch("/cart/add", "", ok)

	routes := r.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, Route{Method: http.MethodPatch, Path: "/cart/add"}, routes[0])
	assert.Equal(t, Route{Method: http.MethodPost, Path: "/cart/add", Name: "cart.add"}, routes[1])
	assert.Equal(t, "/cart/get", routes[2].Path)
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "/", joinPath())
	assert.Equal(t, "/", joinPath("/", ""))
	assert.Equal(t, "/a/b", joinPath("/a/", "/b/"))
}
