package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known status. Any known status may overwrite
// any other; no transition table is enforced.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Order is the immutable snapshot of a finalized cart. Only Status changes
// after creation.
type Order struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID     primitive.ObjectID `bson:"user" json:"user"`
	CartID     primitive.ObjectID `bson:"cart_id" json:"cartId"`
	Reference  string             `bson:"reference" json:"reference"`
	Items      []LineItem         `bson:"items" json:"items"`
	TotalPrice float64            `bson:"total_price" json:"totalPrice"`
	Status     OrderStatus        `bson:"status" json:"status"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updatedAt"`
}
