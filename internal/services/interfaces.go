package services

import (
	"context"

	"github.com/courtdata/ecourts-api/internal/models"
)

// SearchServiceInterface defines the interface for the case search engine
type SearchServiceInterface interface {
	// SearchCase runs one case search against the portal. All failures are
	// folded into the returned outcome; no error escapes this boundary.
	SearchCase(ctx context.Context, req models.SearchRequest) models.SearchOutcome

	// Health returns service health status
	Health() map[string]interface{}

	// Close closes the service and releases resources
	Close() error
}

// CaptchaServiceInterface defines the interface for captcha solving
type CaptchaServiceInterface interface {
	// Solve resolves an image challenge. An empty solution with a nil error
	// never occurs; failure to solve is reported as an error.
	Solve(ctx context.Context, challenge models.CaptchaChallenge) (string, error)

	// Health returns captcha service health status
	Health() map[string]interface{}
}

// ExtractorServiceInterface defines the interface for result page extraction
type ExtractorServiceInterface interface {
	// Extract parses the final rendered page into a case record.
	// Returns ErrNoCaseData when the page holds no usable case.
	Extract(html string) (*models.CaseRecord, error)
}

// BrowserServiceInterface defines the interface for the browser pool
type BrowserServiceInterface interface {
	// GetBrowser gets an available portal driver session
	GetBrowser(ctx context.Context) (PortalDriver, error)

	// ReleaseBrowser releases a session back to the pool
	ReleaseBrowser(driver PortalDriver) error

	// GetStats returns browser pool statistics
	GetStats() map[string]interface{}

	// Restart tears down and rebuilds the pool
	Restart() error

	// Health returns browser service health status
	Health() map[string]interface{}

	// Close closes all browsers and releases resources
	Close() error
}

// PortalDriver is the low-level browser capability the navigation state
// machine drives. One driver owns one page for the lifetime of one search.
type PortalDriver interface {
	// Navigate loads a URL
	Navigate(ctx context.Context, url string) error

	// WaitVisible waits for an element to be present and visible
	WaitVisible(ctx context.Context, selector string) error

	// SelectByText selects the dropdown option with the given visible text
	SelectByText(ctx context.Context, selector, label string) error

	// SelectFirstOption selects the first enumerable dropdown option
	SelectFirstOption(ctx context.Context, selector string) error

	// Type clears an input and types text into it
	Type(ctx context.Context, selector, text string) error

	// Click clicks an element matched by CSS selector
	Click(ctx context.Context, selector string) error

	// ClickText clicks the first anchor whose visible text contains s
	ClickText(ctx context.Context, s string) error

	// GetAttribute reads an attribute value from an element
	GetAttribute(ctx context.Context, selector, attribute string) (string, error)

	// GetHTML returns the rendered markup of the current page
	GetHTML(ctx context.Context) (string, error)

	// IsHealthy checks if the session is healthy
	IsHealthy() bool

	// GetID returns the session ID
	GetID() string

	// Close closes the session
	Close() error
}

// CacheServiceInterface defines the interface for cache service
type CacheServiceInterface interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value in cache with TTL
	Set(ctx context.Context, key string, value string) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)

	// Health returns cache service health status
	Health() map[string]interface{}
}

// PDFServiceInterface defines the interface for order PDF retrieval
type PDFServiceInterface interface {
	// Download fetches an order PDF and stores it locally, returning the
	// local file path. Repeated downloads of the same URL are served from
	// the stored copy.
	Download(ctx context.Context, pdfURL string, orderID int64) (string, error)
}
