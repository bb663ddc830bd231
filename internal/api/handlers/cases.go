package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/courtdata/ecourts-api/internal/config"
	"github.com/courtdata/ecourts-api/internal/models"
	"github.com/courtdata/ecourts-api/internal/services"
	"github.com/courtdata/ecourts-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// courtNames maps court identifiers to their display names
var courtNames = map[string]string{
	"delhi_district":     "Delhi District Courts",
	"mumbai_district":    "Mumbai District Courts",
	"bangalore_district": "Bangalore District Courts",
	"chennai_district":   "Chennai District Courts",
	"kolkata_district":   "Kolkata District Courts",
	"hyderabad_district": "Hyderabad District Courts",
}

// caseTypes is the portal's supported case type listing
var caseTypes = []models.CaseType{
	{ID: "civil", Name: "Civil Cases"},
	{ID: "criminal", Name: "Criminal Cases"},
	{ID: "family", Name: "Family Cases"},
	{ID: "commercial", Name: "Commercial Cases"},
	{ID: "writ", Name: "Writ Petitions"},
	{ID: "appeal", Name: "Appeals"},
	{ID: "revision", Name: "Revision Petitions"},
	{ID: "misc", Name: "Miscellaneous Cases"},
}

// CaseHandler serves stored cases, search history and order downloads
type CaseHandler struct {
	store      *storage.Store
	pdfService services.PDFServiceInterface
	courts     *config.CourtMappings
	logger     *logrus.Logger
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(store *storage.Store, pdfService services.PDFServiceInterface, courts *config.CourtMappings, logger *logrus.Logger) *CaseHandler {
	return &CaseHandler{
		store:      store,
		pdfService: pdfService,
		courts:     courts,
		logger:     logger,
	}
}

// GetCase returns a stored case with its orders
// @Summary Get stored case
// @Description Retrieve a previously searched case by ID
// @Tags Cases
// @Produce json
// @Param id path int true "Case ID"
// @Success 200 {object} models.StoredCase
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /cases/{id} [get]
func (h *CaseHandler) GetCase(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	caseID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	stored, _, err := h.store.GetCase(c.Request.Context(), caseID)
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(c, "Case not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("case_id", caseID).Error("Failed to load case")
		h.internalError(c, "Error loading case details")
		return
	}

	c.JSON(http.StatusOK, stored)
}

// ListQueries returns the paginated search history
// @Summary Search history
// @Description List past search queries, newest first
// @Tags Cases
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} models.QueryListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /queries [get]
func (h *CaseHandler) ListQueries(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	queries, total, err := h.store.ListQueries(c.Request.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load search history")
		h.internalError(c, "Error loading search history")
		return
	}

	c.JSON(http.StatusOK, models.QueryListResponse{
		Queries:  queries,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetStats returns aggregate search statistics
// @Summary Search statistics
// @Description Aggregate statistics over the search history
// @Tags Cases
// @Produce json
// @Success 200 {object} models.DashboardStats
// @Failure 500 {object} models.ErrorResponse
// @Router /stats [get]
func (h *CaseHandler) GetStats(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute statistics")
		h.internalError(c, "Error computing statistics")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListCourts returns the supported courts
// @Summary List courts
// @Description List the court identifiers accepted by the search endpoint
// @Tags Cases
// @Produce json
// @Success 200 {array} models.Court
// @Router /courts [get]
func (h *CaseHandler) ListCourts(c *gin.Context) {
	ids := h.courts.IDs()
	courts := make([]models.Court, 0, len(ids))
	for _, id := range ids {
		name, ok := courtNames[id]
		if !ok {
			name = id
		}
		courts = append(courts, models.Court{ID: id, Name: name})
	}
	c.JSON(http.StatusOK, courts)
}

// ListCaseTypes returns the supported case types
// @Summary List case types
// @Description List the case types accepted by the search endpoint
// @Tags Cases
// @Produce json
// @Success 200 {array} models.CaseType
// @Router /case-types [get]
func (h *CaseHandler) ListCaseTypes(c *gin.Context) {
	c.JSON(http.StatusOK, caseTypes)
}

// DownloadOrder streams an order PDF, fetching it from the portal on first
// request
// @Summary Download order PDF
// @Description Download the PDF of a stored court order or judgment
// @Tags Cases
// @Produce application/pdf
// @Param id path int true "Order ID"
// @Success 200 {file} binary
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /orders/{id}/download [get]
func (h *CaseHandler) DownloadOrder(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	orderID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	order, err := h.store.GetOrder(c.Request.Context(), orderID)
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(c, "Order not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("order_id", orderID).Error("Failed to load order")
		h.internalError(c, "Error loading order")
		return
	}

	localPath := order.LocalPDFPath
	if localPath == "" {
		if order.Order.PDFURL == "" {
			h.notFound(c, "PDF not available for this order")
			return
		}

		localPath, err = h.pdfService.Download(c.Request.Context(), order.Order.PDFURL, order.ID)
		if err != nil {
			h.logger.WithError(err).WithField("order_id", orderID).Error("Failed to download order PDF")
			h.internalError(c, "Error downloading PDF")
			return
		}

		if err := h.store.MarkOrderDownloaded(c.Request.Context(), order.ID, localPath); err != nil {
			h.logger.WithError(err).WithField("order_id", orderID).Warn("Failed to record PDF download")
		}
	}

	c.FileAttachment(localPath, "order_"+strconv.FormatInt(order.ID, 10)+".pdf")
}

func (h *CaseHandler) requireStore(c *gin.Context) bool {
	if h.store != nil {
		return true
	}
	c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
		Error:     "Persistence unavailable",
		Message:   "The database is not configured or unreachable",
		Code:      "STORAGE_UNAVAILABLE",
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
	return false
}

func (h *CaseHandler) parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Invalid identifier",
			Message:   "The " + param + " parameter must be a positive integer",
			Code:      "INVALID_ID",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return 0, false
	}
	return id, true
}

func (h *CaseHandler) notFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:     "Not Found",
		Message:   message,
		Code:      "NOT_FOUND",
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}

func (h *CaseHandler) internalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:     "Internal server error",
		Message:   message,
		Code:      "INTERNAL_ERROR",
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}
