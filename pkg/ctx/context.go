// Package ctx provides the request context handed to controllers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a controller
// receives a single *Context:
//
//	func (c *CartController) Get(cx *ctx.Context) {
//	    cart, err := c.service.Get(cx.Context(), cx.User())
//	    if err != nil {
//	        cx.Fail(err)
//	        return
//	    }
//	    cx.Success(cart)
//	}
//
//	router.Get("/cart/get", "cart.get", ctx.Wrap(cartController.Get))
package ctx

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
	"github.com/shashiranjanraj/kapee/pkg/bind"
	"github.com/shashiranjanraj/kapee/pkg/middleware"
	"github.com/shashiranjanraj/kapee/pkg/response"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int // written status code (0 = not written yet)
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// Param returns a URL path parameter ("/order/updateStatus/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamID parses the path parameter key as a document id.
func (c *Context) ParamID(key string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(key))
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.InvalidInput, "Invalid "+key)
	}
	return id, nil
}

// Query returns a query-string value. Returns "" if not present.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// User returns the identity attached by the auth middleware, or nil.
func (c *Context) User() *models.User {
	u, _ := middleware.UserFromCtx(c.R.Context())
	return u
}

// BindJSON decodes the JSON body into dest and runs validation.
// On validation failure it sends a 422, on malformed JSON a 400, and returns
// false; the handler should return immediately.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.W, c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if len(errs) > 0 {
		c.status = http.StatusUnprocessableEntity
		response.ValidationError(c.W, errs)
		return false
	}
	return true
}

// JSON writes v as the raw response body with the given status code.
func (c *Context) JSON(code int, v any) {
	c.W.Header().Set("Content-Type", "application/json")
	c.W.WriteHeader(code)
	c.status = code
	json.NewEncoder(c.W).Encode(v) //nolint:errcheck
}

// Success sends a 200 envelope.
func (c *Context) Success(data any) {
	c.status = http.StatusOK
	response.Success(c.W, data)
}

// Created sends a 201 envelope.
func (c *Context) Created(data any) {
	c.status = http.StatusCreated
	response.Created(c.W, data)
}

// Message sends a 200 envelope carrying only a message.
func (c *Context) Message(message string) {
	c.status = http.StatusOK
	response.Message(c.W, message)
}

// Error sends an error envelope with the given status and message.
func (c *Context) Error(code int, message string) {
	c.status = code
	response.Error(c.W, code, message)
}

// Fail maps err to its status via apperr and sends it.
func (c *Context) Fail(err error) {
	c.status = apperr.KindOf(err).Status()
	response.Fail(c.W, c.R, err)
}

// WrittenStatus returns the status code written by the helpers above, or 0.
func (c *Context) WrittenStatus() int { return c.status }
