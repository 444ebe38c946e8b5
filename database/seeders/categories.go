package seeders

import (
	"context"
	"time"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/app/repositories"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
)

var starterCategories = []models.Category{
	{Name: "Men", Description: "Clothing and accessories for men"},
	{Name: "Women", Description: "Clothing and accessories for women"},
	{Name: "Shoes", Description: "Sneakers, boots and sandals"},
	{Name: "Accessories", Description: "Bags, belts and jewellery"},
}

// seedCategories creates the storefront's starter categories. Names that
// already exist are skipped.
func seedCategories(ctx context.Context, store *repositories.Store) error {
	now := time.Now().UTC()
	for _, c := range starterCategories {
		c.CreatedAt, c.UpdatedAt = now, now
		if err := store.Categories.Create(ctx, &c); err != nil && !apperr.Is(err, apperr.Conflict) {
			return err
		}
	}
	return nil
}
