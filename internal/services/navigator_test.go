package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/courtdata/ecourts-api/internal/config"
	"github.com/courtdata/ecourts-api/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDriver is a scriptable PortalDriver that records the actions the
// navigation controller performs.
type fakeDriver struct {
	actions []string

	html           string
	captchaSrc     string
	waitErrors     map[string]error
	selectErrors   map[string]error
	clickTextErr   error
	hasResultTable bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		captchaSrc:   "captcha/image.php?id=1",
		waitErrors:   map[string]error{},
		selectErrors: map[string]error{},
	}
}

func (d *fakeDriver) record(format string, args ...interface{}) {
	d.actions = append(d.actions, fmt.Sprintf(format, args...))
}

func (d *fakeDriver) Navigate(_ context.Context, url string) error {
	d.record("navigate %s", url)
	return nil
}

func (d *fakeDriver) WaitVisible(_ context.Context, selector string) error {
	d.record("wait %s", selector)
	if err, ok := d.waitErrors[selector]; ok {
		return err
	}
	if selector == selResultsTable && !d.hasResultTable {
		return errors.New("not visible")
	}
	return nil
}

func (d *fakeDriver) SelectByText(_ context.Context, selector, label string) error {
	d.record("select %s = %s", selector, label)
	return d.selectErrors[selector]
}

func (d *fakeDriver) SelectFirstOption(_ context.Context, selector string) error {
	d.record("select-first %s", selector)
	return nil
}

func (d *fakeDriver) Type(_ context.Context, selector, text string) error {
	d.record("type %s = %s", selector, text)
	return nil
}

func (d *fakeDriver) Click(_ context.Context, selector string) error {
	d.record("click %s", selector)
	return nil
}

func (d *fakeDriver) ClickText(_ context.Context, s string) error {
	d.record("click-text %s", s)
	return d.clickTextErr
}

func (d *fakeDriver) GetAttribute(_ context.Context, selector, attribute string) (string, error) {
	d.record("attr %s.%s", selector, attribute)
	return d.captchaSrc, nil
}

func (d *fakeDriver) GetHTML(_ context.Context) (string, error) {
	d.record("get-html")
	return d.html, nil
}

func (d *fakeDriver) IsHealthy() bool { return true }
func (d *fakeDriver) GetID() string   { return "fake-driver" }
func (d *fakeDriver) Close() error    { return nil }

func (d *fakeDriver) did(action string) bool {
	for _, a := range d.actions {
		if a == action {
			return true
		}
	}
	return false
}

// fakeCaptcha returns a fixed solution or error
type fakeCaptcha struct {
	solution string
	err      error
	called   bool
}

func (f *fakeCaptcha) Solve(_ context.Context, _ models.CaptchaChallenge) (string, error) {
	f.called = true
	return f.solution, f.err
}

func (f *fakeCaptcha) Health() map[string]interface{} {
	return map[string]interface{}{"status": "healthy"}
}

func testPortalConfig() config.PortalConfig {
	return config.PortalConfig{
		BaseURL:      "https://services.ecourts.gov.in/ecourtindia_v6/",
		StepTimeout:  time.Second,
		SettleDelay:  10 * time.Millisecond,
		SearchBudget: 10 * time.Second,
		DefaultState: "Delhi",
	}
}

func newTestNavigator(driver PortalDriver, captcha CaptchaServiceInterface) *NavigationController {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	courts, _ := config.LoadCourtMappings()
	nav := NewNavigationController(driver, captcha, testPortalConfig(), courts, logger)
	nav.settle = func(time.Duration) {}
	return nav
}

func testSearchRequest() models.SearchRequest {
	return models.SearchRequest{
		CourtName:  "delhi_district",
		CaseType:   "civil",
		CaseNumber: "123",
		FilingYear: 2022,
	}
}

func TestRunReachesResultPage(t *testing.T) {
	driver := newFakeDriver()
	driver.html = `<html><table class="case_details"><tr><td>Case Title</td><td>A vs B</td></tr></table></html>`
	driver.hasResultTable = true
	captcha := &fakeCaptcha{solution: "AB12C"}

	nav := newTestNavigator(driver, captcha)
	html, err := nav.Run(context.Background(), testSearchRequest())

	require.NoError(t, err)
	assert.Equal(t, StateResultPage, nav.State())
	assert.Contains(t, html, "case_details")

	// The full form walk happened in order
	assert.True(t, captcha.called)
	assert.True(t, driver.did(`select select[name="state_code"] = Delhi`))
	assert.True(t, driver.did("click-text Case Number"))
	assert.True(t, driver.did(`select select[name="case_type"] = Civil`))
	assert.True(t, driver.did(`type input[name="case_no"] = 123`))
	assert.True(t, driver.did(`type input[name="case_year"] = 2022`))
	assert.True(t, driver.did(`type input[name="captcha_code"] = AB12C`))
	assert.True(t, driver.did(`click input[value="Go"]`))
}

func TestRunNoRecordPage(t *testing.T) {
	driver := newFakeDriver()
	driver.html = `<html><body><span>No record found for the given details</span></body></html>`
	captcha := &fakeCaptcha{solution: "AB12C"}

	nav := newTestNavigator(driver, captcha)
	html, err := nav.Run(context.Background(), testSearchRequest())

	require.NoError(t, err)
	assert.Equal(t, StateNoRecordPage, nav.State())
	assert.Contains(t, html, "No record found")
}

func TestRunUnexpectedPage(t *testing.T) {
	driver := newFakeDriver()
	driver.html = `<html><body>Session expired</body></html>`
	captcha := &fakeCaptcha{solution: "AB12C"}

	nav := newTestNavigator(driver, captcha)
	_, err := nav.Run(context.Background(), testSearchRequest())

	var failure *NavigationFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, models.CauseNavigation, failure.Cause)
	assert.Equal(t, StateUnexpectedPage, nav.State())
}

func TestRunCaptchaFailureStopsBeforeSubmit(t *testing.T) {
	driver := newFakeDriver()
	captcha := &fakeCaptcha{err: ErrCaptchaNotSolved}

	nav := newTestNavigator(driver, captcha)
	_, err := nav.Run(context.Background(), testSearchRequest())

	var failure *NavigationFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, models.CauseCaptcha, failure.Cause)

	// The form must never be submitted with an unsolved captcha
	assert.False(t, driver.did(`click input[value="Go"]`))
}

func TestRunTimeoutCause(t *testing.T) {
	driver := newFakeDriver()
	driver.waitErrors[selDistrictDropdown] = context.DeadlineExceeded
	captcha := &fakeCaptcha{solution: "AB12C"}

	nav := newTestNavigator(driver, captcha)
	_, err := nav.Run(context.Background(), testSearchRequest())

	var failure *NavigationFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, models.CauseTimeout, failure.Cause)
}

func TestRunMissingElementIsNavigationError(t *testing.T) {
	driver := newFakeDriver()
	driver.waitErrors[selCaseTypeDropdown] = errors.New("no such element")
	captcha := &fakeCaptcha{solution: "AB12C"}

	nav := newTestNavigator(driver, captcha)
	_, err := nav.Run(context.Background(), testSearchRequest())

	var failure *NavigationFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, models.CauseNavigation, failure.Cause)
}

func TestRunUnknownCaseTypeFallsBackToFirstOption(t *testing.T) {
	driver := newFakeDriver()
	driver.html = `<html><table class="case_details"></table></html>`
	driver.hasResultTable = true
	driver.selectErrors[selCaseTypeDropdown] = errors.New("option not found")
	captcha := &fakeCaptcha{solution: "AB12C"}

	nav := newTestNavigator(driver, captcha)
	_, err := nav.Run(context.Background(), testSearchRequest())

	require.NoError(t, err)
	assert.True(t, driver.did(`select-first select[name="case_type"]`))
}
