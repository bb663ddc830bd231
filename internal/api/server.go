package api

import (
	"net/http"
	"time"

	"github.com/courtdata/ecourts-api/internal/api/handlers"
	"github.com/courtdata/ecourts-api/internal/api/middleware"
	"github.com/courtdata/ecourts-api/internal/config"
	"github.com/courtdata/ecourts-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Server represents the HTTP server
type Server struct {
	Router   *gin.Engine
	config   *config.Config
	logger   *logrus.Logger
	services *services.Container
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, logger *logrus.Logger, services *services.Container) *Server {
	server := &Server{
		config:   cfg,
		logger:   logger,
		services: services,
	}

	server.setupRouter()
	return server
}

// setupRouter configures the router with all routes and middleware
func (s *Server) setupRouter() {
	// Create Gin router
	s.Router = gin.New()

	// Global middleware
	s.Router.Use(middleware.Logger(s.logger))
	s.Router.Use(middleware.Recovery(s.logger))
	s.Router.Use(middleware.CORS(s.config.Security.CORS))
	s.Router.Use(middleware.Security())
	s.Router.Use(middleware.RequestID())

	// Rate limiting middleware
	rateLimiter := middleware.NewRateLimiter(s.config.Security.RateLimit)
	s.Router.Use(rateLimiter.Middleware())

	// Health check endpoints (no rate limiting)
	healthHandler := handlers.NewHealthHandler(s.services, s.logger)
	s.Router.GET("/health", healthHandler.GetHealth)
	s.Router.GET("/health/ready", healthHandler.GetReadiness)
	s.Router.GET("/health/live", healthHandler.GetLiveness)

	// Prometheus metrics endpoint
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger documentation
	if s.config.Server.Environment != "production" {
		s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		s.Router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
		})
	}

	// API v1 routes
	v1 := s.Router.Group("/api/v1")
	{
		// Case search
		searchHandler := handlers.NewSearchHandler(s.services.SearchService, s.services.Store, s.logger)
		v1.POST("/search", searchHandler.Search)

		// Stored cases and search history
		caseHandler := handlers.NewCaseHandler(s.services.Store, s.services.PDFService, s.services.GetCourtMappings(), s.logger)
		v1.GET("/cases/:id", caseHandler.GetCase)
		v1.GET("/queries", caseHandler.ListQueries)
		v1.GET("/stats", caseHandler.GetStats)
		v1.GET("/courts", caseHandler.ListCourts)
		v1.GET("/case-types", caseHandler.ListCaseTypes)
		v1.GET("/orders/:id/download", caseHandler.DownloadOrder)

		// Cache management routes (no auth for development)
		cache := v1.Group("/cache")
		// cache.Use(middleware.AdminAuth()) // Disabled for development
		{
			cacheHandler := handlers.NewCacheHandler(s.services.CacheService, s.logger)
			cache.GET("/stats", cacheHandler.GetStats)
		}

		// Browser pool management routes (no auth for development)
		browser := v1.Group("/browser")
		// browser.Use(middleware.AdminAuth()) // Disabled for development
		{
			browserHandler := handlers.NewBrowserHandler(s.services.BrowserService, s.logger)
			browser.GET("/stats", browserHandler.GetStats)
			browser.POST("/restart", browserHandler.Restart)
			browser.GET("/health", browserHandler.GetHealth)
		}
	}

	// 404 handler
	s.Router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "Not Found",
			"message":   "The requested resource was not found",
			"timestamp": time.Now(),
			"path":      c.Request.URL.Path,
		})
	})

	// 405 handler
	s.Router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":     "Method Not Allowed",
			"message":   "The requested method is not allowed for this resource",
			"timestamp": time.Now(),
			"path":      c.Request.URL.Path,
			"method":    c.Request.Method,
		})
	})
}
