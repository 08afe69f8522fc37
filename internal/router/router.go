// Package router sets up all HTTP routes for the API.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-insights-api/internal/handlers"
	"github.com/Shimizu-Technology/pdf-insights-api/internal/middleware"
	"github.com/Shimizu-Technology/pdf-insights-api/web"
)

// Options carries the cross-cutting settings the routes are wrapped with.
type Options struct {
	AllowedOrigins       []string
	JWTSecret            string // Empty disables the Bearer guard
	RateLimiter          *middleware.RateLimiter
	MaxConcurrentBatches int64
}

// Setup creates and configures the Gin router with all routes.
func Setup(h *handlers.Handler, opts Options) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORS(opts.AllowedOrigins))

	// --- Public Routes (no auth required) ---
	r.GET("/", h.Index)
	r.StaticFileFS("/static/scripts.js", "static/scripts.js", http.FS(web.Files))
	r.GET("/api/v1/health", h.HealthCheck)

	// API Documentation
	r.GET("/api/docs", h.ServeSwaggerUI)
	r.GET("/api/docs/openapi.yaml", h.ServeOpenAPISpec)

	// --- Protected Routes (Bearer token when JWT_SECRET is set) ---
	protected := r.Group("/")
	protected.Use(middleware.JWTAuth(opts.JWTSecret))
	if opts.RateLimiter != nil {
		protected.Use(opts.RateLimiter.RateLimit())
	}
	{
		protected.POST("/upload", h.Upload)
		protected.POST("/parse", middleware.ConcurrencyLimit(opts.MaxConcurrentBatches), h.Parse)
		protected.GET("/download/:fileName", h.Download)
	}

	return r
}
