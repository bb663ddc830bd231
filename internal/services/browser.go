package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/courtdata/ecourts-api/internal/config"
	"github.com/sirupsen/logrus"
)

// BrowserService manages a pool of browser sessions. Each search checks out
// one session for its full lifetime; sessions are never shared between
// concurrent searches.
type BrowserService struct {
	config    config.BrowserConfig
	userAgent string
	logger    *logrus.Logger
	pool      chan *ChromeSession
	sessions  []*ChromeSession
	mu        sync.RWMutex
	closed    bool
}

// ChromeSession implements PortalDriver on top of a chromedp context
type ChromeSession struct {
	id       string
	cancel   context.CancelFunc
	chromedp context.Context
	healthy  bool
	mu       sync.RWMutex
}

// NewBrowserService creates a new browser service
func NewBrowserService(cfg config.BrowserConfig, userAgent string, logger *logrus.Logger) (BrowserServiceInterface, error) {
	service := &BrowserService{
		config:    cfg,
		userAgent: userAgent,
		logger:    logger,
		pool:      make(chan *ChromeSession, cfg.MaxBrowsers),
		sessions:  make([]*ChromeSession, 0, cfg.MaxBrowsers),
	}

	for i := 0; i < cfg.MinBrowsers; i++ {
		session, err := service.createSession()
		if err != nil {
			logger.WithError(err).Error("Failed to create initial browser")
			continue
		}
		service.sessions = append(service.sessions, session)
		service.pool <- session
	}

	logger.WithField("browsers", len(service.sessions)).Info("Browser service initialized")
	return service, nil
}

// GetBrowser gets an available session, creating one when the pool is empty
// and under its limit
func (s *BrowserService) GetBrowser(ctx context.Context) (PortalDriver, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, fmt.Errorf("browser service is closed")
	}
	s.mu.RUnlock()

	select {
	case session := <-s.pool:
		if session.IsHealthy() {
			return session, nil
		}
		s.logger.WithField("browser_id", session.GetID()).Warn("Unhealthy browser detected, creating new one")
		session.Close()
		s.removeSession(session)

		newSession, err := s.createSession()
		if err != nil {
			return nil, fmt.Errorf("failed to create new browser: %w", err)
		}
		s.trackSession(newSession)
		return newSession, nil

	case <-time.After(10 * time.Second):
		s.mu.Lock()
		if len(s.sessions) < s.config.MaxBrowsers {
			session, err := s.createSession()
			if err != nil {
				s.mu.Unlock()
				return nil, fmt.Errorf("failed to create browser: %w", err)
			}
			s.sessions = append(s.sessions, session)
			s.mu.Unlock()
			return session, nil
		}
		s.mu.Unlock()
		return nil, fmt.Errorf("no browser available and pool is at maximum capacity")

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ReleaseBrowser releases a session back to the pool
func (s *BrowserService) ReleaseBrowser(driver PortalDriver) error {
	session, ok := driver.(*ChromeSession)
	if !ok {
		return fmt.Errorf("invalid browser session type")
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		session.Close()
		return nil
	}
	s.mu.RUnlock()

	if !session.IsHealthy() {
		session.Close()
		s.removeSession(session)
		return nil
	}

	select {
	case s.pool <- session:
		return nil
	default:
		session.Close()
		s.removeSession(session)
		return nil
	}
}

// removeSession drops a closed session from the tracked set
func (s *BrowserService) removeSession(session *ChromeSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, tracked := range s.sessions {
		if tracked == session {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			return
		}
	}
}

// trackSession adds a session to the tracked set
func (s *BrowserService) trackSession(session *ChromeSession) {
	s.mu.Lock()
	s.sessions = append(s.sessions, session)
	s.mu.Unlock()
}

// createSession starts a headless Chrome and verifies it responds
func (s *BrowserService) createSession() (*ChromeSession, error) {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-backgrounding-occluded-windows", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(s.userAgent),
	}
	if s.config.Headless {
		opts = append(opts, chromedp.Headless)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx)

	session := &ChromeSession{
		id:       fmt.Sprintf("browser-%d", time.Now().UnixNano()),
		cancel:   func() { ctxCancel(); allocCancel() },
		chromedp: ctx,
		healthy:  true,
	}

	testCtx, testCancel := context.WithTimeout(ctx, s.config.PageTimeout)
	defer testCancel()
	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		session.Close()
		return nil, fmt.Errorf("browser health check failed: %w", err)
	}

	s.logger.WithField("browser_id", session.id).Debug("Browser created successfully")
	return session, nil
}

// GetStats returns browser pool statistics
func (s *BrowserService) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	healthy := 0
	for _, session := range s.sessions {
		if session.IsHealthy() {
			healthy++
		}
	}

	return map[string]interface{}{
		"total_browsers":   len(s.sessions),
		"healthy_browsers": healthy,
		"available":        len(s.pool),
		"max_browsers":     s.config.MaxBrowsers,
		"min_browsers":     s.config.MinBrowsers,
	}
}

// Health returns browser service health status
func (s *BrowserService) Health() map[string]interface{} {
	stats := s.GetStats()

	status := "healthy"
	if stats["healthy_browsers"].(int) == 0 {
		status = "unhealthy"
	} else if stats["healthy_browsers"].(int) < s.config.MinBrowsers {
		status = "degraded"
	}

	return map[string]interface{}{
		"status": status,
		"stats":  stats,
	}
}

// Restart tears down every session and rebuilds the minimum pool. Sessions
// checked out by in-flight searches are closed when released.
func (s *BrowserService) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("browser service is closed")
	}

	for _, session := range s.sessions {
		session.Close()
	}
	s.sessions = s.sessions[:0]
	for len(s.pool) > 0 {
		<-s.pool
	}

	for i := 0; i < s.config.MinBrowsers; i++ {
		session, err := s.createSession()
		if err != nil {
			s.logger.WithError(err).Error("Failed to create browser during restart")
			continue
		}
		s.sessions = append(s.sessions, session)
		s.pool <- session
	}

	if len(s.sessions) == 0 {
		return fmt.Errorf("failed to create any browser during restart")
	}

	s.logger.WithField("browsers", len(s.sessions)).Info("Browser pool restarted")
	return nil
}

// Close closes all browsers and releases resources
func (s *BrowserService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for _, session := range s.sessions {
		session.Close()
	}
	for len(s.pool) > 0 {
		<-s.pool
	}
	close(s.pool)

	s.logger.Info("Browser service closed")
	return nil
}

// ChromeSession methods

// Navigate loads a URL
func (c *ChromeSession) Navigate(ctx context.Context, url string) error {
	return c.run(ctx, chromedp.Navigate(url))
}

// WaitVisible waits for an element to be present and visible
func (c *ChromeSession) WaitVisible(ctx context.Context, selector string) error {
	return c.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// SelectByText selects the dropdown option with the given visible text.
// A change event is dispatched so the portal repopulates dependent dropdowns.
func (c *ChromeSession) SelectByText(ctx context.Context, selector, label string) error {
	script := fmt.Sprintf(`(function() {
		var el = document.querySelector(%q);
		if (!el || !el.options) { return false; }
		for (var i = 0; i < el.options.length; i++) {
			if (el.options[i].text.trim() === %q) {
				el.selectedIndex = i;
				el.dispatchEvent(new Event('change', {bubbles: true}));
				return true;
			}
		}
		return false;
	})()`, selector, label)

	var selected bool
	if err := c.run(ctx, chromedp.Evaluate(script, &selected)); err != nil {
		return err
	}
	if !selected {
		return fmt.Errorf("option %q not found in %s", label, selector)
	}
	return nil
}

// SelectFirstOption selects the first enumerable option, skipping a
// placeholder entry at index zero when the dropdown has one
func (c *ChromeSession) SelectFirstOption(ctx context.Context, selector string) error {
	script := fmt.Sprintf(`(function() {
		var el = document.querySelector(%q);
		if (!el || !el.options || el.options.length === 0) { return false; }
		el.selectedIndex = el.options.length > 1 ? 1 : 0;
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return true;
	})()`, selector)

	var selected bool
	if err := c.run(ctx, chromedp.Evaluate(script, &selected)); err != nil {
		return err
	}
	if !selected {
		return fmt.Errorf("no options to select in %s", selector)
	}
	return nil
}

// Type clears an input and types text into it
func (c *ChromeSession) Type(ctx context.Context, selector, text string) error {
	return c.run(ctx,
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	)
}

// Click clicks an element matched by CSS selector
func (c *ChromeSession) Click(ctx context.Context, selector string) error {
	return c.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

// ClickText clicks the first anchor whose visible text contains s
func (c *ChromeSession) ClickText(ctx context.Context, s string) error {
	xpath := fmt.Sprintf(`//a[contains(text(), %q)]`, s)
	return c.run(ctx, chromedp.Click(xpath, chromedp.BySearch))
}

// GetAttribute reads an attribute value from an element
func (c *ChromeSession) GetAttribute(ctx context.Context, selector, attribute string) (string, error) {
	var value string
	var ok bool
	if err := c.run(ctx, chromedp.AttributeValue(selector, attribute, &value, &ok, chromedp.ByQuery)); err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("attribute %s not found on %s", attribute, selector)
	}
	return value, nil
}

// GetHTML returns the rendered markup of the current page
func (c *ChromeSession) GetHTML(ctx context.Context) (string, error) {
	var html string
	if err := c.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// run executes chromedp actions against the session, bounded by the
// caller's context
func (c *ChromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	c.mu.RLock()
	healthy := c.healthy
	c.mu.RUnlock()
	if !healthy {
		return fmt.Errorf("browser session is not healthy")
	}

	runCtx := c.chromedp
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(c.chromedp, deadline)
		defer cancel()
	}
	if err := chromedp.Run(runCtx, actions...); err != nil {
		if strings.Contains(err.Error(), "context canceled") {
			c.markUnhealthy()
		}
		return err
	}
	return nil
}

func (c *ChromeSession) markUnhealthy() {
	c.mu.Lock()
	c.healthy = false
	c.mu.Unlock()
}

// IsHealthy checks if the session is healthy
func (c *ChromeSession) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.healthy
}

// GetID returns the session ID
func (c *ChromeSession) GetID() string {
	return c.id
}

// Close closes the session
func (c *ChromeSession) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.healthy = false
	if c.cancel != nil {
		c.cancel()
	}
	return nil
}
