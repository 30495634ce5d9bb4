// Package routes wires the HTTP surface: controllers, gates, and the
// auxiliary endpoints.
package routes

import (
	"net/http"

	"github.com/shashiranjanraj/enventory/app/controllers"
	gql "github.com/shashiranjanraj/enventory/app/graphql"
	"github.com/shashiranjanraj/enventory/pkg/logger"
	"github.com/shashiranjanraj/enventory/pkg/metrics"
	"github.com/shashiranjanraj/enventory/pkg/middleware"
	"github.com/shashiranjanraj/enventory/pkg/rbac"
	"github.com/shashiranjanraj/enventory/pkg/response"
	"github.com/shashiranjanraj/enventory/pkg/router"
	"github.com/shashiranjanraj/enventory/pkg/storage"
)

// Controllers bundles everything the route table needs.
type Controllers struct {
	Auth    *controllers.AuthController
	Product *controllers.ProductController
	Order   *controllers.OrderController
}

// Register mounts every route onto r.
func Register(r *router.Router, c Controllers) {
	requireAuth := router.Middleware(middleware.RequireAuth)
	adminOnly := router.Middleware(middleware.RequireRole(rbac.RoleAdmin))
	workerUp := router.Middleware(middleware.RequireRole(rbac.RoleWorker))

	r.Get("/", "home", func(w http.ResponseWriter, req *http.Request) {
		response.Message(w, "enventory API")
	})

	auth := r.Group("/auth")
	auth.Post("/worker-login", "auth.worker-login", c.Auth.WorkerLogin)
	auth.Post("/admin-login", "auth.admin-login", c.Auth.AdminLogin)
	auth.Post("/logout", "auth.logout", c.Auth.Logout, requireAuth)
	auth.Get("/check-auth", "auth.check", c.Auth.CheckAuth, requireAuth)
	auth.Post("/worker-register", "auth.worker-register", c.Auth.RegisterWorker, adminOnly)

	product := r.Group("/product")
	product.Get("/allProducts", "product.all", c.Product.AllProducts)
	product.Post("/addProduct", "product.add", c.Product.AddProduct, adminOnly)
	product.Post("/uploadImage", "product.upload-image", c.Product.UploadImage, adminOnly)
	product.Delete("/delProduct/{id}", "product.delete", c.Product.DelProduct, adminOnly)

	order := r.Group("/order")
	order.Post("/addOrder", "order.add", c.Order.AddOrder, workerUp)
	order.Get("/my-orders", "order.mine", c.Order.MyOrders, workerUp)
	order.Get("/allOrders", "order.all", c.Order.AllOrders, adminOnly)
	order.Put("/updateOrder/{id}", "order.update", c.Order.UpdateOrder, adminOnly)
	order.Delete("/delOrder/{id}", "order.delete", c.Order.DelOrder, adminOnly)
	order.Get("/stream", "order.stream", c.Order.Stream, adminOnly)

	r.Get("/metrics", "metrics", metrics.Handler().ServeHTTP)

	if schema, err := gql.NewSchema(c.Product.Catalog); err == nil {
		r.Post("/graphql", "graphql", gql.Handler(schema))
	} else {
		logger.Error("graphql schema build failed", "error", err.Error())
	}

	// Locally stored product images.
	if local := storage.Local(); local != nil {
		fs := http.StripPrefix("/storage/", http.FileServer(http.Dir(local.Root())))
		r.Mount("/storage", fs)
	}
}
