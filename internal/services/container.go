package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/courtdata/ecourts-api/internal/config"
	"github.com/courtdata/ecourts-api/internal/monitoring"
	"github.com/courtdata/ecourts-api/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Container holds all service dependencies
type Container struct {
	config      *config.Config
	courts      *config.CourtMappings
	logger      *logrus.Logger
	redisClient *redis.Client

	SearchService  SearchServiceInterface
	CaptchaService CaptchaServiceInterface
	CacheService   CacheServiceInterface
	BrowserService BrowserServiceInterface
	PDFService     PDFServiceInterface
	Store          *storage.Store
	Metrics        *monitoring.Metrics
}

// NewContainer creates a new service container
func NewContainer(cfg *config.Config, courts *config.CourtMappings, logger *logrus.Logger) (*Container, error) {
	container := &Container{
		config: cfg,
		courts: courts,
		logger: logger,
	}

	// Initialize Redis client
	if err := container.initRedis(); err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	// Initialize database store
	if err := container.initStore(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Initialize services
	if err := container.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return container, nil
}

// initRedis initializes Redis client
func (c *Container) initRedis() error {
	c.redisClient = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", c.config.Redis.Host, c.config.Redis.Port),
		Password:     c.config.Redis.Password,
		DB:           c.config.Redis.DB,
		PoolSize:     c.config.Redis.PoolSize,
		DialTimeout:  c.config.Redis.DialTimeout,
		ReadTimeout:  c.config.Redis.ReadTimeout,
		WriteTimeout: c.config.Redis.WriteTimeout,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := c.redisClient.Ping(ctx).Err(); err != nil {
		c.logger.Warn("Redis connection failed, running without cache")
		c.redisClient = nil
	} else {
		c.logger.Info("Redis connection established")
	}

	return nil
}

// initStore connects to Postgres. The engine runs without persistence if
// the database is unreachable; searches still work, history is lost.
func (c *Container) initStore() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := storage.NewStore(ctx, c.config.Database.ConnString(), c.logger)
	if err != nil {
		c.logger.WithError(err).Warn("Database connection failed, running without persistence")
		return nil
	}

	c.logger.Info("Database connection established")
	c.Store = store
	return nil
}

// initServices initializes all services
func (c *Container) initServices() error {
	c.Metrics = monitoring.NewMetrics()

	// Initialize Cache Service
	c.CacheService = NewCacheService(c.redisClient, c.config.Portal.CacheTTL, c.logger)

	// Initialize Browser Service
	browserService, err := NewBrowserService(c.config.Browser, c.config.Portal.UserAgent, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize browser service: %w", err)
	}
	c.BrowserService = browserService

	httpClient := &http.Client{Timeout: 30 * time.Second}

	// Initialize Captcha Service
	captchaService := NewCaptchaService(c.config.Captcha, httpClient, c.logger)
	captchaService.SetMetrics(c.Metrics)
	c.CaptchaService = captchaService

	// Initialize PDF Service
	pdfService := NewPDFService(c.config.PDF, c.config.Portal.UserAgent, c.CacheService, httpClient, c.logger)
	pdfService.SetMetrics(c.Metrics)
	c.PDFService = pdfService

	// Initialize Search Service
	searchService, err := NewSearchService(c.config.Portal, c.courts, c.BrowserService, c.CaptchaService, c.Metrics, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize search service: %w", err)
	}
	c.SearchService = searchService

	return nil
}

// Close closes all service connections
func (c *Container) Close() error {
	var errors []error

	// Close Redis connection
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			errors = append(errors, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database pool
	if c.Store != nil {
		c.Store.Close()
	}

	// Close Browser Service
	if c.BrowserService != nil {
		if err := c.BrowserService.Close(); err != nil {
			errors = append(errors, fmt.Errorf("failed to close browser service: %w", err))
		}
	}

	// Close Search Service
	if c.SearchService != nil {
		if err := c.SearchService.Close(); err != nil {
			errors = append(errors, fmt.Errorf("failed to close search service: %w", err))
		}
	}

	// Return combined errors if any
	if len(errors) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errors)
	}

	return nil
}

// Health checks the health of all services
func (c *Container) Health() map[string]interface{} {
	health := make(map[string]interface{})

	// Check Redis health
	if c.redisClient != nil {
		ctx := context.Background()
		if err := c.redisClient.Ping(ctx).Err(); err != nil {
			health["redis"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
		} else {
			health["redis"] = map[string]interface{}{
				"status": "healthy",
			}
		}
	} else {
		health["redis"] = map[string]interface{}{
			"status": "disabled",
		}
	}

	// Check database health
	if c.Store != nil {
		health["database"] = c.Store.HealthCheck()
	} else {
		health["database"] = map[string]interface{}{
			"status": "disabled",
		}
	}

	// Check Browser Service health
	if c.BrowserService != nil {
		health["browser"] = c.BrowserService.Health()
	}

	// Check Captcha Service health
	if c.CaptchaService != nil {
		health["captcha"] = c.CaptchaService.Health()
	}

	// Check Search Service health
	if c.SearchService != nil {
		health["search"] = c.SearchService.Health()
	}

	return health
}

// GetRedisClient returns the Redis client
func (c *Container) GetRedisClient() *redis.Client {
	return c.redisClient
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetCourtMappings returns the jurisdiction mapping table
func (c *Container) GetCourtMappings() *config.CourtMappings {
	return c.courts
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logrus.Logger {
	return c.logger
}
