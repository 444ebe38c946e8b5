package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/app/repositories"
)

// AnalyticsRepository runs aggregation pipelines over orders and products.
type AnalyticsRepository struct {
	users      collection
	products   collection
	categories collection
	orders     collection
}

func (r *AnalyticsRepository) Dashboard(ctx context.Context, since time.Time) (models.DashboardStats, error) {
	var stats models.DashboardStats
	var err error

	counts := []struct {
		c      collection
		filter bson.M
		dst    *int64
	}{
		{r.users, bson.M{}, &stats.TotalUsers},
		{r.products, bson.M{}, &stats.TotalProducts},
		{r.orders, bson.M{}, &stats.TotalOrders},
		{r.categories, bson.M{}, &stats.TotalCategories},
		{r.orders, bson.M{"status": models.OrderPending}, &stats.PendingOrders},
		{r.orders, bson.M{"created_at": bson.M{"$gte": since}}, &stats.RecentOrders},
		{r.products, bson.M{"stock": bson.M{"$lte": models.LowStockThreshold}}, &stats.LowStockItems},
	}
	for _, q := range counts {
		cctx, done := q.c.op(ctx, "count")
		*q.dst, err = q.c.coll.CountDocuments(cctx, q.filter)
		done()
		if err != nil {
			return stats, classify(err, nil)
		}
	}

	var revenue []struct {
		Total   float64 `bson:"total"`
		Average float64 `bson:"average"`
	}
	err = r.aggregate(ctx, r.orders, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"total":   bson.M{"$sum": "$total_price"},
			"average": bson.M{"$avg": "$total_price"},
		}}},
	}, &revenue)
	if err != nil {
		return stats, err
	}
	if len(revenue) > 0 {
		stats.TotalRevenue = revenue[0].Total
		stats.AverageOrderValue = revenue[0].Average
	}
	return stats, nil
}

// dateFormats are the $dateToString equivalents of SalesPeriod.Layout.
var dateFormats = map[repositories.SalesPeriod]string{
	repositories.PeriodWeek:  "%Y-%m-%d",
	repositories.PeriodMonth: "%Y-%m",
	repositories.PeriodYear:  "%Y",
}

func (r *AnalyticsRepository) Sales(ctx context.Context, period repositories.SalesPeriod, from time.Time) ([]models.SalesBucket, error) {
	format, ok := dateFormats[period]
	if !ok {
		format = dateFormats[repositories.PeriodMonth]
	}

	buckets := []models.SalesBucket{}
	err := r.aggregate(ctx, r.orders, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": from}}}},
		{{Key: "$group", Value: bson.M{
			"_id":    bson.M{"$dateToString": bson.M{"format": format, "date": "$created_at"}},
			"sales":  bson.M{"$sum": "$total_price"},
			"orders": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}, &buckets)
	return buckets, err
}

// itemsWithProduct unwinds order lines and joins each to its product. Lines
// whose product has since been deleted drop out.
func itemsWithProduct() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "products",
			"localField":   "items.product",
			"foreignField": "_id",
			"as":           "product",
		}}},
		{{Key: "$unwind", Value: "$product"}},
	}
}

var lineRevenue = bson.M{"$multiply": bson.A{"$items.quantity", "$items.price"}}

func (r *AnalyticsRepository) TopProducts(ctx context.Context, limit int) ([]models.TopProduct, error) {
	pipeline := append(itemsWithProduct(),
		bson.D{{Key: "$group", Value: bson.M{
			"_id":            "$items.product",
			"name":           bson.M{"$first": "$product.name"},
			"category":       bson.M{"$first": "$product.category"},
			"total_sales":    bson.M{"$sum": lineRevenue},
			"total_quantity": bson.M{"$sum": "$items.quantity"},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "total_sales", Value: -1}, {Key: "_id", Value: 1}}}},
		bson.D{{Key: "$limit", Value: limit}},
	)

	top := []models.TopProduct{}
	err := r.aggregate(ctx, r.orders, pipeline, &top)
	return top, err
}

func (r *AnalyticsRepository) CategorySales(ctx context.Context) ([]models.CategorySales, error) {
	pipeline := append(itemsWithProduct(),
		bson.D{{Key: "$group", Value: bson.M{
			"_id":         "$product.category",
			"total_sales": bson.M{"$sum": lineRevenue},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "total_sales", Value: -1}, {Key: "_id", Value: 1}}}},
	)

	sales := []models.CategorySales{}
	err := r.aggregate(ctx, r.orders, pipeline, &sales)
	return sales, err
}

func (r *AnalyticsRepository) aggregate(ctx context.Context, c collection, pipeline mongo.Pipeline, dst any) error {
	ctx, done := c.op(ctx, "aggregate")
	defer done()

	cur, err := c.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return classify(err, nil)
	}
	return classify(cur.All(ctx, dst), nil)
}
