// Package httpapi wires the HTTP transport (Gin) to the product service,
// middleware, and route handlers. It owns the middleware order, which
// decides what each concern can see: tracing and correlation first, the
// terminal error handler outside recovery, and the API key gate last so
// preflight CORS requests are answered before any credential check.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/go-products-api/docs"
	"github.com/tbourn/go-products-api/internal/config"
	"github.com/tbourn/go-products-api/internal/http/handlers"
	"github.com/tbourn/go-products-api/internal/http/middleware"
)

var (
	corsMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key"}
)

// RegisterRoutes attaches all middleware and HTTP endpoints to r.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with header masking
//  4. Gzip: wraps the writer for everything below it
//  5. ErrorHandler: renders the last recorded error once the chain unwinds
//  6. Recovery: turns panics into recorded errors for ErrorHandler
//  7. Body size limiter
//  8. Metrics
//  9. CORS and security headers
//  10. API key gate, which also covers /health, /metrics and unknown routes
func RegisterRoutes(r *gin.Engine, svc handlers.ProductService, cfg config.Config) {
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{MaskHeaders: cfg.LogMaskHeaders}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.Use(middleware.ErrorHandler(!cfg.Production()))
	r.Use(middleware.Recovery())
	r.Use(limitBody(cfg.MaxBodyBytes))
	r.Use(middleware.Metrics())

	if len(cfg.CORS.AllowedOrigins) == 0 {
		// ACAO: * even without an Origin header, which gin-contrib/cors skips.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     corsMethods,
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     corsMethods,
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      cfg.Security.NoStore,
		EnablePolicy: true,
	}))

	r.Use(middleware.APIKey(cfg.APIKey))

	r.NoRoute(handlers.NoRoute)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = basePath(cfg.APIBasePath)
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(svc)
	r.GET("/", h.Root)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.GET("/products", h.ListProducts)
		api.POST("/products", h.CreateProduct)
		// static segment before :id so "stats" is never taken as an id
		api.GET("/products/stats/category-count", h.CategoryCount)
		api.GET("/products/:id", h.GetProduct)
		api.PUT("/products/:id", h.ReplaceProduct)
		api.DELETE("/products/:id", h.DeleteProduct)
	}
}

// limitBody caps the request body at maxBytes using http.MaxBytesReader.
// Reads past the cap fail, and decodeJSON reports that as 413. A
// non-positive maxBytes disables the cap.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

func basePath(prefix string) string {
	if prefix == "" {
		return "/"
	}
	return prefix
}
