package controllers

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/services"
	"github.com/shashiranjanraj/kapee/pkg/ctx"
)

// quantity is range-checked by the service so a bad value is a 400, not a 422.
type cartItemRequest struct {
	ProductID string `json:"productId" validate:"required,objectid"`
	Quantity  int    `json:"quantity"`
}

func (r cartItemRequest) productID() primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(r.ProductID)
	return id
}

type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

func (cc *CartController) Add(c *ctx.Context) {
	var in cartItemRequest
	if !c.BindJSON(&in) {
		return
	}

	cart, err := cc.carts.Add(c.Context(), c.User(), in.productID(), in.Quantity)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(cart)
}

func (cc *CartController) Update(c *ctx.Context) {
	var in cartItemRequest
	if !c.BindJSON(&in) {
		return
	}

	cart, err := cc.carts.Update(c.Context(), c.User(), in.productID(), in.Quantity)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(cart)
}

func (cc *CartController) Remove(c *ctx.Context) {
	productID, err := c.ParamID("productId")
	if err != nil {
		c.Fail(err)
		return
	}

	cart, err := cc.carts.Remove(c.Context(), c.User(), productID)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(cart)
}

func (cc *CartController) Get(c *ctx.Context) {
	cart, err := cc.carts.Get(c.Context(), c.User())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(cart)
}
