package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineItem is one product entry in a cart or order. Price is the unit price
// captured when the product was first added.
type LineItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
}

// Subtotal is quantity × unit price.
func (li LineItem) Subtotal() float64 {
	return float64(li.Quantity) * li.Price
}

// Cart is the single live cart of a user.
type Cart struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID     primitive.ObjectID `bson:"user" json:"user"`
	Items      []LineItem         `bson:"items" json:"items"`
	TotalPrice float64            `bson:"total_price" json:"totalPrice"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updatedAt"`
}

// NewCart returns an empty cart for userID with a fresh id.
func NewCart(userID primitive.ObjectID, now time.Time) *Cart {
	return &Cart{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Items:     []LineItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Find returns the index of productID among the items, or -1.
func (c *Cart) Find(productID primitive.ObjectID) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// Add merges quantity into an existing line or appends a new one at price.
func (c *Cart) Add(productID primitive.ObjectID, quantity int, price float64) {
	if i := c.Find(productID); i >= 0 {
		c.Items[i].Quantity += quantity
	} else {
		c.Items = append(c.Items, LineItem{ProductID: productID, Quantity: quantity, Price: price})
	}
	c.Recalculate()
}

// SetQuantity overwrites the quantity of an existing line. Returns false if
// the product is not in the cart.
func (c *Cart) SetQuantity(productID primitive.ObjectID, quantity int) bool {
	i := c.Find(productID)
	if i < 0 {
		return false
	}
	c.Items[i].Quantity = quantity
	c.Recalculate()
	return true
}

// Remove drops productID from the cart. Removing an absent product is a no-op.
func (c *Cart) Remove(productID primitive.ObjectID) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	c.Items = kept
	c.Recalculate()
}

// Recalculate recomputes TotalPrice from the items. It is the only writer of
// TotalPrice.
func (c *Cart) Recalculate() {
	var total float64
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	c.TotalPrice = total
}

// IsEmpty reports whether the cart has no line items.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// CartItemView is a line item with its product resolved. Product is nil when
// the product was deleted after it was added.
type CartItemView struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
	Price    float64  `json:"price"`
}

// CartView is the cart as returned to its owner.
type CartView struct {
	ID         *primitive.ObjectID `json:"_id,omitempty"`
	Items      []CartItemView      `json:"items"`
	TotalPrice float64             `json:"totalPrice"`
}

// EmptyCartView is returned when the user has no cart.
func EmptyCartView() CartView {
	return CartView{Items: []CartItemView{}, TotalPrice: 0}
}
