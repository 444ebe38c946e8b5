package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kapee/app/repositories/memstore"
	"github.com/shashiranjanraj/kapee/database/seeders"
	"github.com/shashiranjanraj/kapee/pkg/app"
	"github.com/shashiranjanraj/kapee/pkg/mail"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  map[string]any  `json:"errors"`
}

type harness struct {
	t   *testing.T
	srv *httptest.Server
	app *app.App
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	a := app.New(app.Options{
		Store:    memstore.New(),
		Mailer:   mail.LogMailer{},
		Secret:   "test-secret",
		TokenTTL: time.Hour,
		Workers:  1,
	})
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = a.Close(context.Background())
	})
	return &harness{t: t, srv: srv, app: a}
}

func (h *harness) do(method, path, token string, body any) (int, envelope) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, h.srv.URL+path, &buf)
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := h.srv.Client().Do(req)
	require.NoError(h.t, err)
	defer res.Body.Close()

	var env envelope
	require.NoError(h.t, json.NewDecoder(res.Body).Decode(&env))
	return res.StatusCode, env
}

func (h *harness) token(env envelope) string {
	h.t.Helper()
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(h.t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(h.t, out.Token)
	return out.Token
}

func (h *harness) register(email string) string {
	h.t.Helper()
	status, env := h.do(http.MethodPost, "/user/register", "", map[string]string{
		"Name": "Shopper", "Email": email, "Password": "secret123",
	})
	require.Equal(h.t, http.StatusCreated, status, env.Message)
	return h.token(env)
}

func (h *harness) admin() string {
	h.t.Helper()
	require.NoError(h.t, seeders.EnsureAdmin(context.Background(), h.app.Store.Users, "admin@kapee.shop", "adminpass"))
	status, env := h.do(http.MethodPost, "/user/login", "", map[string]string{
		"Email": "admin@kapee.shop", "Password": "adminpass",
	})
	require.Equal(h.t, http.StatusOK, status, env.Message)
	return h.token(env)
}

func TestHealthAndUnknownRoute(t *testing.T) {
	h := newHarness(t)

	status, _ := h.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, env := h.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, http.StatusNotFound, env.Status)
}

func TestAdminRoutesAreGatedByRole(t *testing.T) {
	h := newHarness(t)
	shopper := h.register("shopper@kapee.shop")

	status, _ := h.do(http.MethodGet, "/user/getAllUsers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env := h.do(http.MethodGet, "/user/getAllUsers", shopper, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Admin access required", env.Message)

	status, _ = h.do(http.MethodGet, "/user/getAllUsers", h.admin(), nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestLoginSupersedesEarlierToken(t *testing.T) {
	h := newHarness(t)
	first := h.register("twice@kapee.shop")

	status, env := h.do(http.MethodPost, "/user/login", "", map[string]string{
		"Email": "TWICE@kapee.shop", "Password": "secret123",
	})
	require.Equal(t, http.StatusOK, status)
	second := h.token(env)

	status, _ = h.do(http.MethodGet, "/cart/get", first, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = h.do(http.MethodGet, "/cart/get", second, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestValidationFailureIs422(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(http.MethodPost, "/user/register", "", map[string]string{"Email": "not-an-email"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, env.Errors, "Password")
}

func TestCheckoutFlow(t *testing.T) {
	h := newHarness(t)
	admin := h.admin()
	shopper := h.register("buyer@kapee.shop")

	status, env := h.do(http.MethodPost, "/product/create", admin, map[string]any{
		"name": "Denim Jacket", "price": 40, "stock": 10, "published": true,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var product struct {
		ID string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &product))

	status, _ = h.do(http.MethodPost, "/cart/add", shopper, map[string]any{"productId": product.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, status)

	status, env = h.do(http.MethodPost, "/order/create", shopper, nil)
	require.Equal(t, http.StatusCreated, status, env.Message)
	var order struct {
		Reference  string  `json:"reference"`
		TotalPrice float64 `json:"totalPrice"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, 80.0, order.TotalPrice)
	assert.Regexp(t, `^ORD-\d{14}-[0-9A-F]{8}$`, order.Reference)

	status, env = h.do(http.MethodGet, "/cart/get", shopper, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"items":[],"totalPrice":0}`, string(env.Data))

	status, env = h.do(http.MethodPost, "/order/create", shopper, nil)
	assert.Equal(t, http.StatusBadRequest, status, env.Message)

	status, env = h.do(http.MethodGet, "/order/getAll", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var all []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 1)
}

func TestRoutesAreListed(t *testing.T) {
	h := newHarness(t)

	names := map[string]bool{}
	for _, r := range h.app.Routes() {
		names[r.Name] = true
	}
	for _, want := range []string{"health", "metrics", "user.register", "order.store", "order.feed", "analytics.dashboard"} {
		assert.True(t, names[want], want)
	}
}

func TestOrderFeedStreamsNewOrders(t *testing.T) {
	h := newHarness(t)
	admin := h.admin()
	shopper := h.register("feed@kapee.shop")

	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/order/ws"
	_, res, err := websocket.DefaultDialer.Dial(url+"?token="+shopper, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+admin, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return h.app.Feed.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	_, env := h.do(http.MethodPost, "/product/create", admin, map[string]any{"name": "Scarf", "price": 12})
	var product struct {
		ID string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &product))
	h.do(http.MethodPost, "/cart/add", shopper, map[string]any{"productId": product.ID, "quantity": 1})
	status, _ := h.do(http.MethodPost, "/order/create", shopper, nil)
	require.Equal(t, http.StatusCreated, status)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame struct {
		Type string `json:"type"`
		Data struct {
			TotalPrice float64 `json:"totalPrice"`
		} `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "order.created", frame.Type)
	assert.Equal(t, 12.0, frame.Data.TotalPrice)
}
