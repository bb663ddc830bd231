package handlers

import (
	"net/http"
	"time"

	"github.com/courtdata/ecourts-api/internal/models"
	"github.com/courtdata/ecourts-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// BrowserHandler exposes the browser pool for operations. The pool is the
// scarce resource behind every search, so it gets its own stats, restart and
// health surface.
type BrowserHandler struct {
	browserService services.BrowserServiceInterface
	logger         *logrus.Logger
}

// NewBrowserHandler creates a new browser handler
func NewBrowserHandler(browserService services.BrowserServiceInterface, logger *logrus.Logger) *BrowserHandler {
	return &BrowserHandler{
		browserService: browserService,
		logger:         logger,
	}
}

// GetStats handles browser pool statistics request
// @Summary Get browser pool statistics
// @Description Get browser pool occupancy and health counters
// @Tags Browser
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /browser/stats [get]
func (h *BrowserHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"stats":     h.browserService.GetStats(),
		"health":    h.browserService.Health(),
		"timestamp": time.Now(),
	})
}

// Restart handles browser pool restart request
// @Summary Restart browser pool
// @Description Tear down and rebuild all browsers in the pool
// @Tags Browser
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} models.ErrorResponse
// @Router /browser/restart [post]
func (h *BrowserHandler) Restart(c *gin.Context) {
	requestID := c.GetString("request_id")
	h.logger.WithField("request_id", requestID).Info("Restarting browser pool")

	if err := h.browserService.Restart(); err != nil {
		h.logger.WithError(err).WithField("request_id", requestID).Error("Browser pool restart failed")

		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Internal server error",
			Message:   "Failed to restart browser pool",
			Code:      "BROWSER_RESTART_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"message":   "Browser pool restarted successfully",
		"success":   true,
		"stats":     h.browserService.GetStats(),
		"timestamp": time.Now(),
	})
}

// GetHealth handles browser pool health check request
// @Summary Get browser pool health
// @Description Get the health status of the browser pool
// @Tags Browser
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} models.ErrorResponse
// @Router /browser/health [get]
func (h *BrowserHandler) GetHealth(c *gin.Context) {
	health := h.browserService.Health()

	httpStatus := http.StatusOK
	if status, exists := health["status"]; exists && status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, map[string]interface{}{
		"health":    health,
		"stats":     h.browserService.GetStats(),
		"timestamp": time.Now(),
	})
}
