package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/models"
)

func sumItems(c *models.Cart) float64 {
	var total float64
	for _, item := range c.Items {
		total += float64(item.Quantity) * item.Price
	}
	return total
}

func TestCartTotalFollowsEveryMutation(t *testing.T) {
	cart := models.NewCart(primitive.NewObjectID(), time.Now())
	p1, p2 := primitive.NewObjectID(), primitive.NewObjectID()

	cart.Add(p1, 2, 10)
	assert.Equal(t, sumItems(cart), cart.TotalPrice)

	cart.Add(p1, 3, 99) // existing line keeps its snapshot price
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 50.0, cart.TotalPrice)

	cart.Add(p2, 1, 2.5)
	assert.Equal(t, 52.5, cart.TotalPrice)

	assert.True(t, cart.SetQuantity(p2, 0))
	assert.Equal(t, sumItems(cart), cart.TotalPrice)
	assert.Equal(t, 50.0, cart.TotalPrice)

	assert.False(t, cart.SetQuantity(primitive.NewObjectID(), 4))

	cart.Remove(primitive.NewObjectID())
	assert.Len(t, cart.Items, 2)

	cart.Remove(p1)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, sumItems(cart), cart.TotalPrice)
}

func TestEmptyCartView(t *testing.T) {
	v := models.EmptyCartView()
	assert.NotNil(t, v.Items)
	assert.Empty(t, v.Items)
	assert.Zero(t, v.TotalPrice)
	assert.True(t, (*models.Cart)(nil).IsEmpty())
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []models.OrderStatus{models.OrderPending, models.OrderShipped, models.OrderDelivered, models.OrderCancelled} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, models.OrderStatus("returned").Valid())
}

func TestProductNormalize(t *testing.T) {
	p := &models.Product{Name: "Lamp", Stock: 0, Status: models.ProductSelling}
	p.Normalize(time.Now())
	assert.Equal(t, models.ProductOutOfStock, p.Status)
	assert.Regexp(t, `^SKU-\d{6}-\d{3}$`, p.SKU)

	p.Stock = 4
	p.SKU = "lamp-1"
	p.Normalize(time.Now())
	assert.Equal(t, models.ProductSelling, p.Status)
	assert.Equal(t, "LAMP-1", p.SKU)
}

func TestUserView(t *testing.T) {
	u := &models.User{ID: primitive.NewObjectID(), Name: "Ada", Email: "A@x.com", Password: "hash", Role: models.RoleUser}
	v := u.View()
	assert.Equal(t, u.ID, v.ID)
	assert.Equal(t, "A@x.com", v.Email)
	assert.Equal(t, "a@x.com", models.EmailKey("  A@X.com "))
	assert.False(t, u.IsAdmin())
}
