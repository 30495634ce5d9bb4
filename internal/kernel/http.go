// Package kernel assembles the HTTP stack: middleware chain, repositories,
// services, controllers, and the route table.
package kernel

import (
	"time"

	"github.com/shashiranjanraj/enventory/app/controllers"
	"github.com/shashiranjanraj/enventory/app/repositories"
	"github.com/shashiranjanraj/enventory/app/routes"
	"github.com/shashiranjanraj/enventory/app/services"
	"github.com/shashiranjanraj/enventory/config"
	"github.com/shashiranjanraj/enventory/pkg/metrics"
	"github.com/shashiranjanraj/enventory/pkg/middleware"
	"github.com/shashiranjanraj/enventory/pkg/reqid"
	"github.com/shashiranjanraj/enventory/pkg/router"
	"github.com/shashiranjanraj/enventory/pkg/session"
	"github.com/shashiranjanraj/enventory/pkg/storage"
	"github.com/shashiranjanraj/enventory/pkg/ws"
)

// Services is the assembled service layer, shared between HTTP and the
// background jobs.
type Services struct {
	Accounts repositories.AccountRepository
	Products repositories.ProductRepository
	Orders   repositories.OrderRepository

	Auth    *services.AuthService
	Catalog *services.CatalogService
	Order   *services.OrderService
}

// BuildServices wires repositories into services.
func BuildServices() *Services {
	accounts := repositories.NewAccountRepository()
	products := repositories.NewProductRepository()
	orders := repositories.NewOrderRepository()

	return &Services{
		Accounts: accounts,
		Products: products,
		Orders:   orders,
		Auth:     services.NewAuthService(accounts),
		Catalog:  services.NewCatalogService(products, storage.Default()),
		Order:    services.NewOrderService(orders, products, accounts),
	}
}

// BuildRouter mounts the full middleware chain and route table.
func BuildRouter(svcs *Services, hub *ws.Hub) *router.Router {
	r := router.New()

	r.Use(
		reqid.Middleware(),
		metrics.Middleware,
		middleware.Recovery,
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions(config.AllowedOrigins())),
		middleware.RateLimit(300, time.Minute),
		session.Middleware,
	)

	routes.Register(r, routes.Controllers{
		Auth:    controllers.NewAuthController(svcs.Auth),
		Product: controllers.NewProductController(svcs.Catalog),
		Order:   controllers.NewOrderController(svcs.Order, hub),
	})

	return r
}
