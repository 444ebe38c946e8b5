package app

import (
	"net/http"

	"github.com/shashiranjanraj/kapee/app/routes"
	"github.com/shashiranjanraj/kapee/config"
	"github.com/shashiranjanraj/kapee/pkg/metrics"
	"github.com/shashiranjanraj/kapee/pkg/middleware"
	"github.com/shashiranjanraj/kapee/pkg/reqid"
	"github.com/shashiranjanraj/kapee/pkg/response"
	"github.com/shashiranjanraj/kapee/pkg/router"
)

// Handler is the root HTTP handler.
func (a *App) Handler() http.Handler { return a.router.Handler() }

func buildRouter(c routes.Controllers, limiter *middleware.Limiter) *router.Router {
	r := router.New()

	// Global middleware, outermost first:
	//  1. metrics    outermost for accurate total latency
	//  2. recovery   catches panics before they kill the goroutine
	//  3. request ID before anything logs
	//  4. logger     logs request_id from context
	//  5. CORS
	//  6. rate limit rejects abusers early
	r.Use(
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		middleware.CORS(middleware.CORSFromList(config.CORSOrigins())),
		limiter.Middleware,
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/health", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})

	routes.RegisterAPI(r, c)
	return r
}
