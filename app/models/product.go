package models

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product stock statuses.
const (
	ProductSelling    = "Selling"
	ProductOutOfStock = "Out of Stock"
)

// LowStockThreshold is the stock level at or below which a product counts as low.
const LowStockThreshold = 10

// Product represents a product in the catalogue.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Category    string             `bson:"category" json:"category"`
	Price       float64            `bson:"price" json:"price"`
	SalePrice   float64            `bson:"sale_price" json:"salePrice"`
	Stock       int                `bson:"stock" json:"stock"`
	Status      string             `bson:"status" json:"status"`
	Published   bool               `bson:"published" json:"published"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	SKU         string             `bson:"sku,omitempty" json:"sku,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Normalize derives SKU and status before a save. A product with no stock is
// always Out of Stock; restocking flips it back to Selling.
func (p *Product) Normalize(now time.Time) {
	p.SKU = strings.ToUpper(strings.TrimSpace(p.SKU))
	if p.SKU == "" {
		ts := fmt.Sprintf("%d", now.UnixMilli())
		p.SKU = fmt.Sprintf("SKU-%s-%03d", ts[len(ts)-6:], rand.IntN(1000))
	}

	switch {
	case p.Stock <= 0:
		p.Stock = 0
		p.Status = ProductOutOfStock
	case p.Status == "" || p.Status == ProductOutOfStock:
		p.Status = ProductSelling
	}
}
