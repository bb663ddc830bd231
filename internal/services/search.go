package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/courtdata/ecourts-api/internal/config"
	"github.com/courtdata/ecourts-api/internal/models"
	"github.com/courtdata/ecourts-api/internal/monitoring"
	"github.com/sirupsen/logrus"
)

// minFilingYear is the earliest filing year the portal holds records for
const minFilingYear = 1950

// SearchService is the public entry point of the search engine. It
// validates the request, owns the lifetime of one navigation session and
// folds every failure into a tagged outcome.
type SearchService struct {
	portal  config.PortalConfig
	courts  *config.CourtMappings
	browser BrowserServiceInterface
	captcha CaptchaServiceInterface
	logger  *logrus.Logger
	metrics *monitoring.Metrics

	newExtractor func() (ExtractorServiceInterface, error)

	requestCounter int64
	mu             sync.Mutex
}

// NewSearchService creates a new search service
func NewSearchService(portal config.PortalConfig, courts *config.CourtMappings, browser BrowserServiceInterface, captcha CaptchaServiceInterface, metrics *monitoring.Metrics, logger *logrus.Logger) (SearchServiceInterface, error) {
	service := &SearchService{
		portal:  portal,
		courts:  courts,
		browser: browser,
		captcha: captcha,
		logger:  logger,
		metrics: metrics,
	}
	service.newExtractor = func() (ExtractorServiceInterface, error) {
		return NewExtractorService(portal.BaseURL, logger)
	}
	return service, nil
}

// SearchCase runs one case search. Validation happens before any resource
// is acquired; the browser session is guaranteed released on every exit
// path; the whole search runs under one wall-clock budget. A failed attempt
// is reported as an error outcome, never retried internally.
func (s *SearchService) SearchCase(ctx context.Context, req models.SearchRequest) models.SearchOutcome {
	start := time.Now()

	s.mu.Lock()
	s.requestCounter++
	requestID := s.requestCounter
	s.mu.Unlock()

	logger := s.logger.WithFields(logrus.Fields{
		"request_id":  requestID,
		"court":       req.CourtName,
		"case_type":   req.CaseType,
		"case_number": req.CaseNumber,
		"filing_year": req.FilingYear,
	})
	logger.Info("Starting case search")

	if err := ValidateRequest(req); err != nil {
		logger.WithError(err).Warn("Search request rejected")
		return s.finish(start, models.Failure(models.CauseValidation, err.Error()))
	}

	driver, err := s.browser.GetBrowser(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to acquire browser session")
		return s.finish(start, models.Failure(models.CauseNavigation, "browser session unavailable"))
	}
	defer func() {
		if releaseErr := s.browser.ReleaseBrowser(driver); releaseErr != nil {
			logger.WithError(releaseErr).Warn("Failed to release browser session")
		}
	}()

	searchCtx, cancel := context.WithTimeout(ctx, s.portal.SearchBudget)
	defer cancel()

	outcome := s.runSearch(searchCtx, driver, req, logger)
	logger.WithFields(logrus.Fields{
		"status":   outcome.Status,
		"cause":    outcome.Cause,
		"duration": time.Since(start),
	}).Info("Case search finished")

	return s.finish(start, outcome)
}

// runSearch drives navigation and extraction inside the search budget
func (s *SearchService) runSearch(ctx context.Context, driver PortalDriver, req models.SearchRequest, logger *logrus.Entry) models.SearchOutcome {
	nav := NewNavigationController(driver, s.captcha, s.portal, s.courts, logger.Logger)

	html, err := nav.Run(ctx, req)
	if err != nil {
		var failure *NavigationFailure
		if errors.As(err, &failure) {
			logger.WithError(failure.Err).WithField("nav_state", failure.State.String()).Warn("Portal navigation failed")
			return models.Failure(failure.Cause, failureMessage(failure))
		}
		return models.Failure(models.CauseNavigation, err.Error())
	}

	if nav.State() == StateNoRecordPage {
		return models.NotFound("No case found with the provided details")
	}

	extractor, err := s.newExtractor()
	if err != nil {
		return models.Failure(models.CauseParse, err.Error())
	}

	record, err := extractor.Extract(html)
	if err != nil {
		if errors.Is(err, ErrNoCaseData) {
			return models.NotFound("Case not found or no data available")
		}
		logger.WithError(err).Error("Failed to parse result page")
		return models.Failure(models.CauseParse, "error parsing case information")
	}

	return models.Success(record)
}

// finish records search metrics and hands the outcome back
func (s *SearchService) finish(start time.Time, outcome models.SearchOutcome) models.SearchOutcome {
	if s.metrics != nil {
		s.metrics.RecordSearch(string(outcome.Status), time.Since(start).Seconds())
	}
	return outcome
}

// failureMessage builds the human-readable message for a navigation failure
func failureMessage(failure *NavigationFailure) string {
	switch failure.Cause {
	case models.CauseTimeout:
		return "Timeout while searching case. Court website may be slow."
	case models.CauseCaptcha:
		return "Failed to solve CAPTCHA"
	default:
		return fmt.Sprintf("Error searching case: %v", failure.Err)
	}
}

// ValidateRequest checks a search request before any I/O happens
func ValidateRequest(req models.SearchRequest) error {
	if strings.TrimSpace(req.CourtName) == "" {
		return fmt.Errorf("court name is required")
	}
	if strings.TrimSpace(req.CaseType) == "" {
		return fmt.Errorf("case type is required")
	}
	if strings.TrimSpace(req.CaseNumber) == "" {
		return fmt.Errorf("case number is required")
	}
	if req.FilingYear < minFilingYear || req.FilingYear > time.Now().Year() {
		return fmt.Errorf("filing year must be between %d and %d", minFilingYear, time.Now().Year())
	}
	return nil
}

// Health returns service health status
func (s *SearchService) Health() map[string]interface{} {
	s.mu.Lock()
	requestCount := s.requestCounter
	s.mu.Unlock()

	return map[string]interface{}{
		"status":        "healthy",
		"request_count": requestCount,
	}
}

// Close closes the service and releases resources
func (s *SearchService) Close() error {
	s.logger.Info("Search service closed")
	return nil
}
