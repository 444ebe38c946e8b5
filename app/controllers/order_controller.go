package controllers

import (
	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/app/services"
	"github.com/shashiranjanraj/kapee/pkg/ctx"
)

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Create finalizes the caller's cart into an order.
func (oc *OrderController) Create(c *ctx.Context) {
	order, err := oc.orders.Finalize(c.Context(), c.User())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(order)
}

func (oc *OrderController) Mine(c *ctx.Context) {
	orders, err := oc.orders.ListMine(c.Context(), c.User())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(orders)
}

func (oc *OrderController) All(c *ctx.Context) {
	orders, err := oc.orders.ListAll(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(orders)
}

func (oc *OrderController) UpdateStatus(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	var in statusRequest
	if !c.BindJSON(&in) {
		return
	}

	order, err := oc.orders.UpdateStatus(c.Context(), id, models.OrderStatus(in.Status))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(order)
}
