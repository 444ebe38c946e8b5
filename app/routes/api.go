package routes

import (
	"net/http"

	"github.com/shashiranjanraj/kapee/app/controllers"
	"github.com/shashiranjanraj/kapee/pkg/ctx"
	"github.com/shashiranjanraj/kapee/pkg/middleware"
	"github.com/shashiranjanraj/kapee/pkg/rbac"
	"github.com/shashiranjanraj/kapee/pkg/router"
)

// Controllers is everything the API routes dispatch to.
type Controllers struct {
	Auth      *middleware.Authenticator
	Users     *controllers.UserController
	Carts     *controllers.CartController
	Orders    *controllers.OrderController
	Products  *controllers.ProductController
	Category  *controllers.CategoryController
	Contacts  *controllers.ContactController
	Analytics *controllers.AnalyticsController
	// OrderFeed serves the admin order websocket. Optional.
	OrderFeed http.Handler
}

func RegisterAPI(r *router.Router, c Controllers) {
	bearer := router.Middleware(c.Auth.Required)
	admin := router.Middleware(rbac.Admin)

	user := r.Group("/user")
	user.Post("/register", "user.register", ctx.Wrap(c.Users.Register), c.Auth.Optional)
	user.Post("/SignupForm", "user.signup", ctx.Wrap(c.Users.Register), c.Auth.Optional)
	user.Post("/login", "user.login", ctx.Wrap(c.Users.Login))
	user.Post("/logout", "user.logout", ctx.Wrap(c.Users.Logout), bearer)
	user.Get("/getUserById/{id}", "user.show", ctx.Wrap(c.Users.Get), bearer)

	userAdmin := user.Group("", bearer, admin)
	userAdmin.Get("/getAllUsers", "user.index", ctx.Wrap(c.Users.List))
	userAdmin.Get("/getUserStats", "user.stats", ctx.Wrap(c.Users.Stats))
	userAdmin.Delete("/deleteUser/{id}", "user.destroy", ctx.Wrap(c.Users.Delete))
	userAdmin.Delete("/bulkDeleteUsers", "user.bulk_destroy", ctx.Wrap(c.Users.BulkDelete))
	userAdmin.Put("/updateUserRole/{id}", "user.role", ctx.Wrap(c.Users.UpdateRole))

	cart := r.Group("/cart", bearer)
	cart.Post("/add", "cart.add", ctx.Wrap(c.Carts.Add))
	cart.Get("/get", "cart.show", ctx.Wrap(c.Carts.Get))
	cart.Put("/update", "cart.update", ctx.Wrap(c.Carts.Update))
	cart.Delete("/remove/{productId}", "cart.remove", ctx.Wrap(c.Carts.Remove))

	order := r.Group("/order", bearer)
	order.Post("/create", "order.store", ctx.Wrap(c.Orders.Create))
	order.Get("/getUserOrders", "order.mine", ctx.Wrap(c.Orders.Mine))

	orderAdmin := order.Group("", admin)
	orderAdmin.Get("/getAll", "order.index", ctx.Wrap(c.Orders.All))
	orderAdmin.Put("/updateStatus/{id}", "order.status", ctx.Wrap(c.Orders.UpdateStatus))
	if c.OrderFeed != nil {
		// Browsers cannot set headers on a websocket upgrade, so ?token= is accepted here.
		r.Get("/order/ws", "order.feed", c.OrderFeed.ServeHTTP, c.Auth.RequiredAllowQuery, admin)
	}

	product := r.Group("/product")
	product.Get("/getAll", "product.index", ctx.Wrap(c.Products.List))
	product.Get("/get/{id}", "product.show", ctx.Wrap(c.Products.Get))

	productAdmin := product.Group("", bearer, admin)
	productAdmin.Post("/create", "product.store", ctx.Wrap(c.Products.Create))
	productAdmin.Put("/update/{id}", "product.update", ctx.Wrap(c.Products.Update))
	productAdmin.Patch("/togglePublished/{id}", "product.publish", ctx.Wrap(c.Products.TogglePublished))
	productAdmin.Patch("/updateStock/{id}", "product.stock", ctx.Wrap(c.Products.UpdateStock))
	productAdmin.Delete("/delete/{id}", "product.destroy", ctx.Wrap(c.Products.Delete))

	category := r.Group("/category")
	category.Get("/getAll", "category.index", ctx.Wrap(c.Category.List))
	category.Get("/get/{id}", "category.show", ctx.Wrap(c.Category.Get))

	categoryAdmin := category.Group("", bearer, admin)
	categoryAdmin.Post("/create", "category.store", ctx.Wrap(c.Category.Create))
	categoryAdmin.Put("/update/{id}", "category.update", ctx.Wrap(c.Category.Update))
	categoryAdmin.Delete("/delete/{id}", "category.destroy", ctx.Wrap(c.Category.Delete))

	contact := r.Group("/contact")
	contact.Post("/submit", "contact.store", ctx.Wrap(c.Contacts.Submit))
	contact.Get("/getAll", "contact.index", ctx.Wrap(c.Contacts.List), bearer, admin)

	analytics := r.Group("/analytics", bearer, admin)
	analytics.Get("/dashboard-stats", "analytics.dashboard", ctx.Wrap(c.Analytics.Dashboard))
	analytics.Get("/sales-data", "analytics.sales", ctx.Wrap(c.Analytics.Sales))
	analytics.Get("/top-products", "analytics.top_products", ctx.Wrap(c.Analytics.TopProducts))
	analytics.Get("/category-sales", "analytics.category_sales", ctx.Wrap(c.Analytics.CategorySales))
}
