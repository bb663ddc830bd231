package services

import (
	"testing"
	"time"

	"github.com/courtdata/ecourts-api/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestBrowserPool returns an empty pool so session bookkeeping can be
// exercised without launching real browsers.
func newTestBrowserPool(t *testing.T, maxBrowsers int) *BrowserService {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	svc, err := NewBrowserService(config.BrowserConfig{
		MinBrowsers: 0,
		MaxBrowsers: maxBrowsers,
		Headless:    true,
		PageTimeout: time.Second,
	}, "test-agent", logger)
	require.NoError(t, err)

	pool, ok := svc.(*BrowserService)
	require.True(t, ok)
	return pool
}

func TestBrowserPoolPrunesReplacedSessions(t *testing.T) {
	pool := newTestBrowserPool(t, 2)

	stale := &ChromeSession{id: "session-a", healthy: true}
	fresh := &ChromeSession{id: "session-b", healthy: true}

	pool.trackSession(stale)
	assert.Equal(t, 1, pool.GetStats()["total_browsers"])

	// Replacing an unhealthy session must not leave the old one tracked
	stale.Close()
	pool.removeSession(stale)
	pool.trackSession(fresh)

	stats := pool.GetStats()
	assert.Equal(t, 1, stats["total_browsers"])
	assert.Equal(t, 1, stats["healthy_browsers"])

	// Removing a session that was never tracked is a no-op
	pool.removeSession(stale)
	assert.Equal(t, 1, pool.GetStats()["total_browsers"])
}

func TestReleaseUnhealthyBrowserDropsFromStats(t *testing.T) {
	pool := newTestBrowserPool(t, 2)

	healthy := &ChromeSession{id: "session-c", healthy: true}
	broken := &ChromeSession{id: "session-d", healthy: true}
	pool.trackSession(healthy)
	pool.trackSession(broken)
	broken.markUnhealthy()

	require.NoError(t, pool.ReleaseBrowser(broken))

	stats := pool.GetStats()
	assert.Equal(t, 1, stats["total_browsers"])
	assert.Equal(t, 1, stats["healthy_browsers"])

	require.NoError(t, pool.ReleaseBrowser(healthy))
	assert.Equal(t, 1, pool.GetStats()["available"])
}

func TestReleaseOverflowBrowserDropsFromStats(t *testing.T) {
	pool := newTestBrowserPool(t, 1)

	first := &ChromeSession{id: "session-e", healthy: true}
	second := &ChromeSession{id: "session-f", healthy: true}
	pool.trackSession(first)
	pool.trackSession(second)

	require.NoError(t, pool.ReleaseBrowser(first))
	// Pool is full, so the second release closes and untracks the session
	require.NoError(t, pool.ReleaseBrowser(second))

	stats := pool.GetStats()
	assert.Equal(t, 1, stats["total_browsers"])
	assert.Equal(t, 1, stats["available"])
	assert.False(t, second.IsHealthy())
}
