package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/app/repositories"
	"github.com/shashiranjanraj/kapee/app/repositories/memstore"
	"github.com/shashiranjanraj/kapee/app/services"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
	"github.com/shashiranjanraj/kapee/pkg/cache"
)

func names(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func TestProductListIsCachedAndInvalidated(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	store := memstore.New()
	svc := services.NewProductService(store.Products, cache.New(rdb, "products"), clock)
	ctx := context.Background()

	_, err := svc.Create(ctx, services.ProductInput{Name: "Lamp", Price: 10, Stock: 1})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lamp"}, names(list))
	assert.True(t, mr.Exists("kapee:cache:products:all"))

	// Written behind the service's back: invisible until the entry expires.
	require.NoError(t, store.Products.Create(ctx, &models.Product{Name: "Chair", Price: 5}))
	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	mr.FastForward(61 * time.Second)
	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.Create(ctx, services.ProductInput{Name: "Desk", Price: 50, Stock: 1})
	require.NoError(t, err)
	assert.False(t, mr.Exists("kapee:cache:products:all"), "writes invalidate the listing")
}

func TestProductServiceWithoutRedis(t *testing.T) {
	store := memstore.New()
	svc := services.NewProductService(store.Products, cache.New(nil, "products"), clock)
	ctx := context.Background()

	p, err := svc.Create(ctx, services.ProductInput{Name: " Lamp ", Price: 10, SKU: "lamp-1"})
	require.NoError(t, err)
	assert.Equal(t, "Lamp", p.Name)
	assert.Equal(t, "LAMP-1", p.SKU)
	assert.Equal(t, models.ProductOutOfStock, p.Status)

	_, err = svc.Create(ctx, services.ProductInput{Name: "Other", SKU: "LAMP-1"})
	assert.True(t, apperr.Is(err, apperr.Conflict))

	_, err = svc.Create(ctx, services.ProductInput{Name: "", Price: 1})
	assert.True(t, apperr.Is(err, apperr.InvalidInput))

	p, err = svc.SetStock(ctx, p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, models.ProductSelling, p.Status)

	p, err = svc.TogglePublished(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, p.Published)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, apperr.ErrProductNotFound)
}

func TestCategoryNamesAreUnique(t *testing.T) {
	svc := services.NewCategoryService(memstore.New().Categories, clock)
	ctx := context.Background()

	home, err := svc.Create(ctx, services.CategoryInput{Name: "Home"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, services.CategoryInput{Name: "Home"})
	assert.True(t, apperr.Is(err, apperr.Conflict))

	fashion, err := svc.Create(ctx, services.CategoryInput{Name: "Fashion"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, fashion.ID, services.CategoryInput{Name: "Home"})
	assert.True(t, apperr.Is(err, apperr.Conflict))

	home, err = svc.Update(ctx, home.ID, services.CategoryInput{Name: "Living", Description: " Sofas "})
	require.NoError(t, err)
	assert.Equal(t, "Sofas", home.Description)

	_, err = svc.Update(ctx, primitive.NewObjectID(), services.CategoryInput{Name: "X"})
	assert.ErrorIs(t, err, apperr.ErrCategoryNotFound)
}

func TestContactSubmitFiresEvent(t *testing.T) {
	events := &recorder{}
	svc := services.NewContactService(memstore.New().Contacts, events, clock)
	ctx := context.Background()

	_, err := svc.Submit(ctx, services.ContactInput{Name: "Ada", Email: "a@x.com"})
	assert.True(t, apperr.Is(err, apperr.InvalidInput))
	assert.Empty(t, events.names())

	c, err := svc.Submit(ctx, services.ContactInput{Name: "Ada", Email: "a@x.com", Message: "Hi"})
	require.NoError(t, err)
	assert.Equal(t, fixedNow, c.CreatedAt)
	assert.Equal(t, []string{services.EventContactSubmitted}, events.names())

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

// fakeAnalytics records the window it is asked for.
type fakeAnalytics struct {
	repositories.AnalyticsRepository
	from time.Time
	rows []models.CategorySales
}

func (f *fakeAnalytics) Sales(_ context.Context, _ repositories.SalesPeriod, from time.Time) ([]models.SalesBucket, error) {
	f.from = from
	return nil, nil
}

func (f *fakeAnalytics) CategorySales(context.Context) ([]models.CategorySales, error) {
	return f.rows, nil
}

func TestAnalyticsWindowsAndShares(t *testing.T) {
	repo := &fakeAnalytics{rows: []models.CategorySales{
		{Category: "Home", TotalSales: 2},
		{Category: "Fashion", TotalSales: 1},
	}}
	svc := services.NewAnalyticsService(repo, clock)
	ctx := context.Background()

	for period, want := range map[repositories.SalesPeriod]time.Time{
		repositories.PeriodWeek:  fixedNow.AddDate(0, 0, -7),
		repositories.PeriodMonth: fixedNow.AddDate(0, 0, -360),
		repositories.PeriodYear:  fixedNow.AddDate(0, 0, -1460),
	} {
		buckets, err := svc.Sales(ctx, period)
		require.NoError(t, err)
		assert.NotNil(t, buckets)
		assert.Equal(t, want, repo.from, period)
	}

	p, err := services.ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, repositories.PeriodMonth, p)
	_, err = services.ParsePeriod("decade")
	assert.True(t, apperr.Is(err, apperr.InvalidInput))

	shares, err := svc.CategorySales(ctx)
	require.NoError(t, err)
	require.Len(t, shares, 2)
	assert.Equal(t, 66.7, shares[0].Percentage)
	assert.Equal(t, 33.3, shares[1].Percentage)
	assert.Equal(t, "#4A90E2", shares[0].Color)
	assert.Equal(t, "#50C878", shares[1].Color)
}
