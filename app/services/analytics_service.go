package services

import (
	"context"
	"math"
	"time"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/app/repositories"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
)

const topProductsLimit = 5

var categoryColors = []string{"#4A90E2", "#50C878", "#FF8A80", "#9C27B0", "#FF9800", "#607D8B"}

// AnalyticsService reports on orders for the admin dashboard.
type AnalyticsService struct {
	analytics repositories.AnalyticsRepository
	now       Clock
}

func NewAnalyticsService(analytics repositories.AnalyticsRepository, now Clock) *AnalyticsService {
	return &AnalyticsService{analytics: analytics, now: now}
}

// Dashboard counts orders of the last 24 hours as recent.
func (s *AnalyticsService) Dashboard(ctx context.Context) (models.DashboardStats, error) {
	return s.analytics.Dashboard(ctx, s.now().Add(-24*time.Hour))
}

// ParsePeriod maps "", "week", "month" and "year" to a period. Empty means month.
func ParsePeriod(raw string) (repositories.SalesPeriod, error) {
	switch p := repositories.SalesPeriod(raw); p {
	case "":
		return repositories.PeriodMonth, nil
	case repositories.PeriodWeek, repositories.PeriodMonth, repositories.PeriodYear:
		return p, nil
	}
	return "", apperr.New(apperr.InvalidInput, "Period must be week, month or year")
}

// Sales covers the last 7 days by day, the last 360 days by month or the
// last four years by year.
func (s *AnalyticsService) Sales(ctx context.Context, period repositories.SalesPeriod) ([]models.SalesBucket, error) {
	now := s.now()
	var from time.Time
	switch period {
	case repositories.PeriodWeek:
		from = now.AddDate(0, 0, -7)
	case repositories.PeriodYear:
		from = now.AddDate(0, 0, -4*365)
	default:
		from = now.AddDate(0, 0, -360)
	}

	buckets, err := s.analytics.Sales(ctx, period, from)
	if err != nil {
		return nil, err
	}
	if buckets == nil {
		buckets = []models.SalesBucket{}
	}
	return buckets, nil
}

func (s *AnalyticsService) TopProducts(ctx context.Context) ([]models.TopProduct, error) {
	top, err := s.analytics.TopProducts(ctx, topProductsLimit)
	if err != nil {
		return nil, err
	}
	if top == nil {
		top = []models.TopProduct{}
	}
	return top, nil
}

// CategorySales fills in each category's revenue share and chart color.
func (s *AnalyticsService) CategorySales(ctx context.Context) ([]models.CategorySales, error) {
	rows, err := s.analytics.CategorySales(ctx)
	if err != nil {
		return nil, err
	}

	var total float64
	for _, r := range rows {
		total += r.TotalSales
	}
	out := make([]models.CategorySales, len(rows))
	for i, r := range rows {
		if total > 0 {
			r.Percentage = math.Round(r.TotalSales/total*1000) / 10
		}
		r.Color = categoryColors[i%len(categoryColors)]
		out[i] = r
	}
	return out, nil
}
