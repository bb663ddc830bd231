package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 240*time.Second, cfg.Portal.SearchBudget)
	assert.Equal(t, 30*time.Second, cfg.Browser.PageTimeout)
	assert.Equal(t, 3, cfg.Captcha.MaxRetries)
	assert.True(t, cfg.Browser.Headless)
}

func TestLoadBrowserOverrides(t *testing.T) {
	t.Setenv("PAGE_TIMEOUT", "45")
	t.Setenv("BROWSER_MIN", "2")
	t.Setenv("BROWSER_HEADLESS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.Browser.PageTimeout)
	assert.Equal(t, 2, cfg.Browser.MinBrowsers)
	assert.False(t, cfg.Browser.Headless)
}
