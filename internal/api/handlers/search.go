package handlers

import (
	"net/http"
	"time"

	"github.com/courtdata/ecourts-api/internal/models"
	"github.com/courtdata/ecourts-api/internal/services"
	"github.com/courtdata/ecourts-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SearchHandler handles case search requests
type SearchHandler struct {
	searchService services.SearchServiceInterface
	store         *storage.Store
	logger        *logrus.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService services.SearchServiceInterface, store *storage.Store, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		store:         store,
		logger:        logger,
	}
}

// Search handles a case search request
// @Summary Search a court case
// @Description Search the eCourts portal for a case by court, type, number and filing year
// @Tags Search
// @Accept json
// @Produce json
// @Param request body models.SearchAPIRequest true "Case search request"
// @Success 200 {object} models.SearchResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.SearchResponse
// @Failure 429 {object} models.ErrorResponse
// @Failure 500 {object} models.SearchResponse
// @Router /search [post]
func (h *SearchHandler) Search(c *gin.Context) {
	start := time.Now()
	requestID := c.GetString("request_id")

	var request models.SearchAPIRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Invalid search request format")

		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Invalid request format",
			Message:   err.Error(),
			Code:      "INVALID_REQUEST",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	req := request.ToSearchRequest()

	h.logger.WithFields(logrus.Fields{
		"request_id":  requestID,
		"court":       req.CourtName,
		"case_type":   req.CaseType,
		"case_number": req.CaseNumber,
		"filing_year": req.FilingYear,
	}).Info("Processing case search")

	queryID := h.saveQuery(c, req, requestID)

	outcome := h.searchService.SearchCase(c.Request.Context(), req)

	h.recordOutcome(c, queryID, req, outcome, requestID)

	duration := time.Since(start)
	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"status":     outcome.Status,
		"cause":      outcome.Cause,
		"duration":   duration,
	}).Info("Case search completed")

	c.JSON(statusCodeFor(outcome), models.SearchResponse{
		QueryID:    queryID,
		Outcome:    outcome,
		DurationMs: duration.Milliseconds(),
		Timestamp:  time.Now(),
	})
}

// saveQuery records the search attempt. Persistence is best effort; a
// database outage never blocks a search.
func (h *SearchHandler) saveQuery(c *gin.Context, req models.SearchRequest, requestID string) int64 {
	if h.store == nil {
		return 0
	}
	queryID, err := h.store.SaveQuery(c.Request.Context(), req)
	if err != nil {
		h.logger.WithError(err).WithField("request_id", requestID).Warn("Failed to persist query")
		return 0
	}
	return queryID
}

// recordOutcome persists the final status and, on success, the extracted case
func (h *SearchHandler) recordOutcome(c *gin.Context, queryID int64, req models.SearchRequest, outcome models.SearchOutcome, requestID string) {
	if h.store == nil || queryID == 0 {
		return
	}
	ctx := c.Request.Context()

	if err := h.store.UpdateQueryStatus(ctx, queryID, outcome.Status, outcome.Message); err != nil {
		h.logger.WithError(err).WithField("request_id", requestID).Warn("Failed to update query status")
	}

	if outcome.Status == models.OutcomeSuccess && outcome.Case != nil {
		if _, err := h.store.SaveCaseResult(ctx, queryID, req.CourtName, outcome.Case); err != nil {
			h.logger.WithError(err).WithField("request_id", requestID).Warn("Failed to persist case result")
		}
	}
}

// statusCodeFor maps a search outcome to an HTTP status
func statusCodeFor(outcome models.SearchOutcome) int {
	switch outcome.Status {
	case models.OutcomeSuccess:
		return http.StatusOK
	case models.OutcomeNotFound:
		return http.StatusNotFound
	}

	switch outcome.Cause {
	case models.CauseValidation:
		return http.StatusBadRequest
	case models.CauseTimeout:
		return http.StatusRequestTimeout
	case models.CauseCaptcha:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
