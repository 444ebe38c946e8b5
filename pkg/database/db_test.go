package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueIndexes(t *testing.T) {
	unique := map[string]bool{}
	for _, idx := range Indexes() {
		if idx.Model.Options.Unique != nil && *idx.Model.Options.Unique {
			unique[idx.Collection+"."+*idx.Model.Options.Name] = true
		}
	}

	assert.Equal(t, map[string]bool{
		"users.email_key_unique":  true,
		"carts.user_unique":       true,
		"orders.cart_id_unique":   true,
		"categories.name_unique":  true,
		"products.sku_unique":     true,
	}, unique)
}
