// Package v1 provides HTTP API version 1.
package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"

	"quickinvoice/internal/domain/invoice"
	"quickinvoice/internal/domain/order"
	"quickinvoice/internal/domain/seller"
	"quickinvoice/internal/infrastructure/http/v1/handlers"
	"quickinvoice/internal/infrastructure/http/v1/middleware"
	"quickinvoice/pkg/logger"
)

// RouterConfig holds the services the API exposes.
type RouterConfig struct {
	Logger *logger.Logger

	Orders   *order.Service
	Sellers  *seller.Service
	Invoices *invoice.Service

	Health *handlers.HealthHandler

	// Clock stamps invoices and evaluates subscriptions. Defaults to time.Now.
	Clock func() time.Time
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	if cfg.Health != nil {
		health := router.Group("/health")
		{
			health.GET("/live", cfg.Health.Live)
			health.GET("/ready", cfg.Health.Ready)
			health.GET("/info", cfg.Health.Info)
		}
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Seller())
	{
		base := handlers.NewBaseHandler()

		registerOrderRoutes(v1.Group("/orders"),
			handlers.NewOrderHandler(base, cfg.Orders),
			handlers.NewInvoiceHandler(base, cfg.Invoices, cfg.Clock))

		registerSellerRoutes(v1.Group("/seller"),
			handlers.NewSellerHandler(base, cfg.Sellers, cfg.Clock))
	}

	return router
}

func registerOrderRoutes(group *gin.RouterGroup, orders *handlers.OrderHandler, invoices *handlers.InvoiceHandler) {
	group.GET("", orders.List)
	group.POST("", orders.Create)
	group.GET("/stats", orders.Stats)
	group.GET("/:id", orders.Get)
	group.DELETE("/:id", orders.Delete)
	group.PATCH("/:id/status", orders.UpdateStatus)
	group.GET("/:id/invoice.pdf", invoices.Download)
	group.POST("/:id/share", invoices.Share)
}

func registerSellerRoutes(group *gin.RouterGroup, sellers *handlers.SellerHandler) {
	group.GET("", sellers.Get)
	group.PUT("", sellers.Update)
}

// NewHandler wraps the router with gzip response compression.
// PDFs are excluded; their streams are already deflated.
func NewHandler(cfg RouterConfig) (http.Handler, error) {
	wrap, err := gzhttp.NewWrapper(
		gzhttp.MinSize(1024),
		gzhttp.ExceptContentTypes([]string{"application/pdf"}),
	)
	if err != nil {
		return nil, fmt.Errorf("gzip wrapper: %w", err)
	}
	return wrap(NewRouter(cfg)), nil
}
