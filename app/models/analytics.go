package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// DashboardStats is the admin dashboard summary.
type DashboardStats struct {
	TotalUsers        int64   `json:"totalUsers"`
	TotalProducts     int64   `json:"totalProducts"`
	TotalOrders       int64   `json:"totalOrders"`
	TotalCategories   int64   `json:"totalCategories"`
	TotalRevenue      float64 `json:"totalRevenue"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	PendingOrders     int64   `json:"pendingOrders"`
	RecentOrders      int64   `json:"recentOrders"`
	LowStockItems     int64   `json:"lowStockItems"`
}

// SalesBucket is revenue and order count for one period bucket. Key is
// "2006-01-02" (week), "2006-01" (month) or "2006" (year).
type SalesBucket struct {
	Key    string  `bson:"_id" json:"key"`
	Sales  float64 `bson:"sales" json:"sales"`
	Orders int64   `bson:"orders" json:"orders"`
}

// TopProduct ranks a product by revenue across all orders.
type TopProduct struct {
	ProductID     primitive.ObjectID `bson:"_id" json:"_id"`
	Name          string             `bson:"name" json:"name"`
	Category      string             `bson:"category" json:"category"`
	TotalSales    float64            `bson:"total_sales" json:"totalSales"`
	TotalQuantity int64              `bson:"total_quantity" json:"totalQuantity"`
}

// CategorySales is a category's revenue and its share, in percent rounded to
// one decimal, of all revenue.
type CategorySales struct {
	Category   string  `bson:"_id" json:"name"`
	TotalSales float64 `bson:"total_sales" json:"sales"`
	Percentage float64 `bson:"-" json:"percentage"`
	Color      string  `bson:"-" json:"color"`
}
