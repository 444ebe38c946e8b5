package ctx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
	appctx "github.com/shashiranjanraj/kapee/pkg/ctx"
	"github.com/shashiranjanraj/kapee/pkg/middleware"
)

func TestWrapAndJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.JSON(http.StatusOK, map[string]any{"ok": true})
	})(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.Created(map[string]any{"id": 1})
		if c.WrittenStatus() != http.StatusCreated {
			t.Errorf("expected written status 201, got %d", c.WrittenStatus())
		}
	})(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestBindJSONValid(t *testing.T) {
	rec := httptest.NewRecorder()
	body := `{"name":"Denim","productId":"` + primitive.NewObjectID().Hex() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Name      string `json:"name" validate:"required"`
			ProductID string `json:"productId" validate:"required,objectid"`
		}
		if !c.BindJSON(&input) {
			t.Error("expected BindJSON to succeed")
			return
		}
		if input.Name != "Denim" {
			t.Errorf("expected Denim, got %s", input.Name)
		}
		c.Success(nil)
	})(rec, req)
}

func TestBindJSONInvalid(t *testing.T) {
	cases := map[string]struct {
		body string
		want int
	}{
		"validation fails": {`{"name":""}`, http.StatusUnprocessableEntity},
		"malformed json":   {`{"name":`, http.StatusBadRequest},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")

			appctx.Wrap(func(c *appctx.Context) {
				var input struct {
					Name string `json:"name" validate:"required"`
				}
				if c.BindJSON(&input) {
					t.Error("expected BindJSON to fail")
				}
			})(rec, req)

			if rec.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestParamID(t *testing.T) {
	id := primitive.NewObjectID()
	r := chi.NewRouter()
	r.Get("/product/get/{id}", appctx.Wrap(func(c *appctx.Context) {
		got, err := c.ParamID("id")
		if err != nil {
			c.Fail(err)
			return
		}
		if got != id {
			t.Errorf("expected %s, got %s", id.Hex(), got.Hex())
		}
		c.Success(nil)
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/product/get/"+id.Hex(), nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/product/get/42", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid id") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestFailMapsKinds(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.Fail(apperr.ErrOrderNotFound)
	})(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestUser(t *testing.T) {
	u := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), u))

	appctx.Wrap(func(c *appctx.Context) {
		if c.User() != u {
			t.Error("expected attached user")
		}
	})(httptest.NewRecorder(), req)

	appctx.Wrap(func(c *appctx.Context) {
		if c.User() != nil {
			t.Error("expected no user")
		}
	})(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
