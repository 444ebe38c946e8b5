package memstore

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/app/repositories"
)

// AnalyticsRepository computes the reports by scanning orders and products.
type AnalyticsRepository struct{ db *DB }

func (r *AnalyticsRepository) Dashboard(ctx context.Context, since time.Time) (models.DashboardStats, error) {
	if err := ctx.Err(); err != nil {
		return models.DashboardStats{}, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	stats := models.DashboardStats{
		TotalUsers:      int64(len(r.db.users)),
		TotalProducts:   int64(len(r.db.products)),
		TotalOrders:     int64(len(r.db.orders)),
		TotalCategories: int64(len(r.db.categories)),
	}
	for _, o := range r.db.orders {
		stats.TotalRevenue += o.TotalPrice
		if o.Status == models.OrderPending {
			stats.PendingOrders++
		}
		if !o.CreatedAt.Before(since) {
			stats.RecentOrders++
		}
	}
	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = stats.TotalRevenue / float64(stats.TotalOrders)
	}
	for _, p := range r.db.products {
		if p.Stock <= models.LowStockThreshold {
			stats.LowStockItems++
		}
	}
	return stats, nil
}

func (r *AnalyticsRepository) Sales(ctx context.Context, period repositories.SalesPeriod, from time.Time) ([]models.SalesBucket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	layout := period.Layout()
	byKey := map[string]*models.SalesBucket{}
	for _, o := range r.db.orders {
		if o.CreatedAt.Before(from) {
			continue
		}
		key := o.CreatedAt.UTC().Format(layout)
		b, ok := byKey[key]
		if !ok {
			b = &models.SalesBucket{Key: key}
			byKey[key] = b
		}
		b.Sales += o.TotalPrice
		b.Orders++
	}

	out := make([]models.SalesBucket, 0, len(byKey))
	for _, b := range byKey {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *AnalyticsRepository) TopProducts(ctx context.Context, limit int) ([]models.TopProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	byProduct := map[primitive.ObjectID]*models.TopProduct{}
	r.eachLine(func(item models.LineItem, p models.Product) {
		t, ok := byProduct[p.ID]
		if !ok {
			t = &models.TopProduct{ProductID: p.ID, Name: p.Name, Category: p.Category}
			byProduct[p.ID] = t
		}
		t.TotalSales += item.Subtotal()
		t.TotalQuantity += int64(item.Quantity)
	})

	out := make([]models.TopProduct, 0, len(byProduct))
	for _, t := range byProduct {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSales != out[j].TotalSales {
			return out[i].TotalSales > out[j].TotalSales
		}
		return out[i].ProductID.Hex() < out[j].ProductID.Hex()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *AnalyticsRepository) CategorySales(ctx context.Context) ([]models.CategorySales, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	byCategory := map[string]float64{}
	r.eachLine(func(item models.LineItem, p models.Product) {
		byCategory[p.Category] += item.Subtotal()
	})

	out := make([]models.CategorySales, 0, len(byCategory))
	for name, total := range byCategory {
		out = append(out, models.CategorySales{Category: name, TotalSales: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSales != out[j].TotalSales {
			return out[i].TotalSales > out[j].TotalSales
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

// eachLine visits every order line whose product still exists. Callers hold
// the read lock.
func (r *AnalyticsRepository) eachLine(fn func(models.LineItem, models.Product)) {
	for _, o := range r.db.orders {
		for _, item := range o.Items {
			if p, ok := r.db.products[item.ProductID]; ok {
				fn(item, p)
			}
		}
	}
}
