package controllers

import (
	"github.com/shashiranjanraj/kapee/app/services"
	"github.com/shashiranjanraj/kapee/pkg/ctx"
)

type AnalyticsController struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsController(analytics *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analytics: analytics}
}

func (ac *AnalyticsController) Dashboard(c *ctx.Context) {
	stats, err := ac.analytics.Dashboard(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(stats)
}

// Sales reads ?period=week|month|year, month by default.
func (ac *AnalyticsController) Sales(c *ctx.Context) {
	period, err := services.ParsePeriod(c.Query("period"))
	if err != nil {
		c.Fail(err)
		return
	}
	buckets, err := ac.analytics.Sales(c.Context(), period)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(buckets)
}

func (ac *AnalyticsController) TopProducts(c *ctx.Context) {
	top, err := ac.analytics.TopProducts(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(top)
}

func (ac *AnalyticsController) CategorySales(c *ctx.Context) {
	rows, err := ac.analytics.CategorySales(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(rows)
}
