// Package main is the entry point for the QuickInvoice API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"quickinvoice/internal/config"
	"quickinvoice/internal/core/types"
	"quickinvoice/internal/domain/invoice"
	"quickinvoice/internal/domain/order"
	"quickinvoice/internal/domain/seller"
	"quickinvoice/internal/domain/share"
	v1 "quickinvoice/internal/infrastructure/http/v1"
	"quickinvoice/internal/infrastructure/http/v1/handlers"
	infranumerator "quickinvoice/internal/infrastructure/numerator"
	"quickinvoice/internal/infrastructure/render"
	"quickinvoice/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	root, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		Version:     version,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = root.Sync() }()
	log := root.WithComponent("server")

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := logger.WithLogger(context.Background(), root)
	log.Infow("starting quickinvoice server", "driver", cfg.Storage.Driver)

	// --- Storage ---
	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
	}
	defer store.Close()

	// --- Numbering ---
	numCfg, err := cfg.Numbering.NumeratorConfig()
	if err != nil {
		log.Fatalw("invalid numbering configuration", "error", err)
	}
	numbers := infranumerator.New(store.counters, numCfg)

	// --- Services ---
	policy, err := order.PolicyFromConfig(cfg.Orders.StatusPolicy)
	if err != nil {
		log.Fatalw("invalid order status policy", "policy", cfg.Orders.StatusPolicy, "error", err)
	}

	orders := order.NewService(order.ServiceConfig{
		Repo:      store.orders,
		Numbers:   numbers,
		TxManager: store.txManager,
		Policy:    policy,
	})
	sellers := seller.NewService(store.sellers, time.Now)

	pdf, err := render.NewPDFRenderer(render.PDFOptions{FontPath: cfg.Render.FontPath})
	if err != nil {
		log.Fatalw("failed to initialize pdf renderer", "font_path", cfg.Render.FontPath, "error", err)
	}

	loc, err := cfg.Render.Location()
	if err != nil {
		log.Fatalw("invalid render timezone", "timezone", cfg.Render.Timezone, "error", err)
	}
	currency := types.Currency{Symbol: cfg.Currency.Symbol}

	opts := invoice.DefaultOptions()
	opts.ProductName = cfg.Render.ProductName
	opts.FallbackSellerName = cfg.Render.FallbackSellerName
	opts.Currency = currency
	opts.NotesWidth = cfg.Render.NotesWidth
	opts.Location = loc

	invoices := invoice.NewService(invoice.ServiceConfig{
		Orders:   orders,
		Sellers:  sellers,
		Renderer: pdf,
		Text:     render.NewTextRenderer(),
		Share:    share.NewBuilder(cfg.Server.PublicBaseURL, currency),
		Options:  opts,
	})

	log.Infow("services initialized",
		"numbering_strategy", numbers.Config().Strategy.String(),
		"numbering_prefix", numbers.Config().Prefix,
		"status_policy", orders.Policy().Name(),
		"currency", currency.Symbol,
	)

	// --- Router ---
	routerCfg := v1.RouterConfig{
		Logger:   root.WithComponent("http"),
		Orders:   orders,
		Sellers:  sellers,
		Invoices: invoices,
		Health:   handlers.NewHealthHandler(cfg.Storage.Driver, version, store.health),
	}

	var handler http.Handler
	if cfg.Server.Compression {
		handler, err = v1.NewHandler(routerCfg)
		if err != nil {
			log.Fatalw("failed to build http handler", "error", err)
		}
	} else {
		handler = v1.NewRouter(routerCfg)
	}

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "address", cfg.Server.Address, "compression", cfg.Server.Compression)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
