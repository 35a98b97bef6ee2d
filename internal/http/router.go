// Package httpapi wires the HTTP transport (Gin) to the storefront services,
// middleware, and route handlers. It centralizes cross-cutting concerns:
// correlation IDs, logging, panic recovery, metrics, compression, rate
// limiting, and CORS.
//
// Design goals:
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - The route paths match what the deployed web app calls, typos included
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akbarovs/go-storefront-bot/internal/config"
	"github.com/akbarovs/go-storefront-bot/internal/http/handlers"
	"github.com/akbarovs/go-storefront-bot/internal/http/middleware"
)

// RegisterRoutes attaches all middleware and endpoints to the given Gin
// engine. The services are injected so the bot and the HTTP surface share
// one instance of each (the order service in particular must be shared: its
// transaction-id source is stateful).
//
// Middleware order:
//  1. RequestID: generate/propagate correlation id
//  2. Logger: structured access logs
//  3. Recovery: panics to JSON 500
//  4. Body size limiter
//  5. Gzip compression
//  6. Metrics
//  7. Rate limiter (per IP)
//  8. CORS
func RegisterRoutes(r *gin.Engine, cfg config.Config,
	catalogSvc handlers.CatalogProvider, cartSvc handlers.CartStore, orderSvc handlers.OrderPlacer) {
	r.HandleMethodNotAllowed = true

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst)
	r.Use(rl.Handler())

	// CORS: the storefront web view is served from a different origin
	// (Telegram web-app hosting), so permissive defaults apply when no
	// allowlist is configured.
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	h := handlers.New(catalogSvc, cartSvc, orderSvc)

	// Catalog (read-only, served from the TTL cache)
	r.GET("/api/products", h.ListProducts)
	r.GET("/api/categories", h.ListCategories)

	// Cart snapshot
	r.POST("/save-cart", h.SaveCart)
	r.GET("/get-car", h.GetCart)

	// Orders and checkout
	r.GET("/get-orders", h.ListOrders)
	r.POST("/clear-orders", h.ClearOrders)
	r.POST("/create-click-order", h.CreateClickOrder)
	r.POST("/create-payme-order", h.CreatePaymeOrder)
}

// limitBody caps the request body size using http.MaxBytesReader; reads past
// the cap error out downstream.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
