// Package app wires the shop together: persistence, locks, cache, services,
// listeners and the HTTP kernel.
//
// Boot builds everything from config:
//
//	a, err := app.Boot(ctx)
//	if err != nil { ... }
//	defer a.Close(context.Background())
//	server.Start(ctx, ":"+config.AppPort(), a.Handler())
//
// Tests call New with an in-memory store instead.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/kapee/app/controllers"
	"github.com/shashiranjanraj/kapee/app/listeners"
	"github.com/shashiranjanraj/kapee/app/repositories"
	"github.com/shashiranjanraj/kapee/app/repositories/memstore"
	"github.com/shashiranjanraj/kapee/app/repositories/mongostore"
	"github.com/shashiranjanraj/kapee/app/routes"
	"github.com/shashiranjanraj/kapee/app/services"
	"github.com/shashiranjanraj/kapee/config"
	"github.com/shashiranjanraj/kapee/pkg/auth"
	"github.com/shashiranjanraj/kapee/pkg/cache"
	"github.com/shashiranjanraj/kapee/pkg/database"
	"github.com/shashiranjanraj/kapee/pkg/event"
	"github.com/shashiranjanraj/kapee/pkg/lock"
	"github.com/shashiranjanraj/kapee/pkg/logger"
	"github.com/shashiranjanraj/kapee/pkg/mail"
	"github.com/shashiranjanraj/kapee/pkg/middleware"
	"github.com/shashiranjanraj/kapee/pkg/notification"
	"github.com/shashiranjanraj/kapee/pkg/router"
	"github.com/shashiranjanraj/kapee/pkg/schedule"
	"github.com/shashiranjanraj/kapee/pkg/workerpool"
	"github.com/shashiranjanraj/kapee/pkg/ws"
)

const logsCollection = "logs"

// Options are the collaborators New cannot build on its own. Zero values
// fall back to config.
type Options struct {
	Store *repositories.Store
	// Redis backs the product cache and, when Locker is nil and LOCK_DRIVER
	// is redis, the cart lock. Nil disables both.
	Redis *redis.Client
	// Locker is wrapped so that acquiring gives up after LOCK_TTL.
	Locker   lock.Locker
	Mailer   mail.Mailer
	Secret   string
	TokenTTL time.Duration
	Now      services.Clock
	Workers  int
	SlackURL string
}

// App is the wired application.
type App struct {
	Store  *repositories.Store
	Redis  *redis.Client
	Locker lock.Locker
	Tokens *auth.TokenService
	Events *event.Dispatcher
	Pool   *workerpool.Pool
	Feed   *ws.Hub
	Jobs   *schedule.Scheduler

	router *router.Router
	stop   context.CancelFunc
	sink   *logger.MongoSink
}

// Boot connects the configured store and Redis and builds the App.
func Boot(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger.L = logger.New(os.Stdout, config.IsProduction())
	slog.SetDefault(logger.L)

	opts := Options{}
	var sink *logger.MongoSink

	switch config.DatabaseDriver() {
	case "memory":
		logger.Warn("using in-memory store; data is lost on exit")
		opts.Store = memstore.New()
	default:
		client, db, err := database.Connect(ctx, config.MongoURI(), config.MongoDatabase(), config.DBTimeout())
		if err != nil {
			return nil, err
		}
		if err := database.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		opts.Store = mongostore.New(client, db, config.DBTimeout())

		if config.LogToMongo() {
			col := db.Collection(logsCollection)
			if err := logger.EnsureLogIndex(ctx, col, config.LogRetention()); err != nil {
				logger.Warn("log retention index not created", "error", err)
			}
			sink = logger.NewMongoSink(col, slog.LevelWarn)
			logger.Tee(sink)
		}
	}

	if rdb, err := cache.Connect(ctx, config.RedisAddr(), config.RedisPassword()); err != nil {
		logger.Warn("redis unavailable; product cache disabled", "error", err)
	} else {
		opts.Redis = rdb
	}

	if config.LockDriver() == "redis" {
		if opts.Redis == nil {
			_ = closeStore(ctx, opts.Store)
			return nil, errors.New("app: LOCK_DRIVER=redis but redis is unreachable")
		}
		opts.Locker = lock.NewRedis(opts.Redis, config.LockTTL())
	}

	a := New(opts)
	a.sink = sink
	return a, nil
}

// New builds the App around opts. It starts the feed hub, the worker pool
// and the housekeeping jobs; Close stops them.
func New(opts Options) *App {
	if opts.Store == nil {
		opts.Store = memstore.New()
	}
	if opts.Locker == nil {
		opts.Locker = lock.NewMemory()
	}
	if opts.Mailer == nil {
		opts.Mailer = mail.NewFromConfig()
	}
	if opts.Secret == "" {
		opts.Secret = config.JWTSecret()
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = config.JWTTTL()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.Workers <= 0 {
		opts.Workers = config.Workers()
	}
	if opts.SlackURL == "" {
		opts.SlackURL = config.SlackWebhookURL()
	}

	a := &App{
		Store:  opts.Store,
		Redis:  opts.Redis,
		Locker: lock.WithWait(opts.Locker, config.LockTTL()),
		Tokens: auth.NewTokenService(opts.Secret, opts.TokenTTL),
		Events: event.New(),
		Pool:   workerpool.New(opts.Workers),
		Feed:   ws.NewHub(),
		Jobs:   schedule.New(),
	}

	limiter := middleware.NewLimiter(config.RateLimit(), time.Minute)
	a.Jobs.Every(time.Minute).Name("rate-limit-sweep").WithoutOverlapping().Run(func(context.Context) {
		limiter.Sweep()
	})

	bg, stop := context.WithCancel(context.Background())
	a.stop = stop
	go a.Feed.Run(bg)
	a.Jobs.Start(bg)

	notifier := notification.New(opts.Mailer, a.Pool, opts.SlackURL)
	listeners.Register(a.Events, notifier, a.Feed)

	// A nil *redis.Client must not reach cache.New as a non-nil interface.
	var productCache *cache.Cache
	if opts.Redis != nil {
		productCache = cache.New(opts.Redis, "products")
	} else {
		productCache = cache.New(nil, "products")
	}

	store := opts.Store
	authSvc := services.NewAuthService(store.Users, a.Tokens, a.Events, opts.Now)

	a.router = buildRouter(routes.Controllers{
		Auth:      middleware.NewAuthenticator(a.Tokens, store.Users),
		Users:     controllers.NewUserController(authSvc, services.NewUserService(store.Users)),
		Carts:     controllers.NewCartController(services.NewCartService(store.Carts, store.Orders, store.Products, a.Locker, opts.Now)),
		Orders:    controllers.NewOrderController(services.NewOrderService(store.Carts, store.Orders, a.Locker, a.Events, opts.Now)),
		Products:  controllers.NewProductController(services.NewProductService(store.Products, productCache, opts.Now)),
		Category:  controllers.NewCategoryController(services.NewCategoryService(store.Categories, opts.Now)),
		Contacts:  controllers.NewContactController(services.NewContactService(store.Contacts, a.Events, opts.Now)),
		Analytics: controllers.NewAnalyticsController(services.NewAnalyticsService(store.Analytics, opts.Now)),
		OrderFeed: a.Feed,
	}, limiter)

	return a
}

// Routes lists every mounted route.
func (a *App) Routes() []router.Route { return a.router.Routes() }

// Close drains background work and releases connections.
func (a *App) Close(ctx context.Context) error {
	a.stop()
	a.Jobs.Wait()
	a.Events.Flush()
	a.Pool.Shutdown()

	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.sink != nil {
		a.sink.Close()
	}
	errs = append(errs, closeStore(ctx, a.Store))
	return errors.Join(errs...)
}

func closeStore(ctx context.Context, s *repositories.Store) error {
	if s == nil || s.Close == nil {
		return nil
	}
	return s.Close(ctx)
}
