package services

import (
	"context"
	"testing"

	"github.com/courtdata/ecourts-api/internal/config"
	"github.com/courtdata/ecourts-api/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBrowserService hands out one fake driver and counts checkouts
type fakeBrowserService struct {
	driver   PortalDriver
	acquired int
	released int
}

func (f *fakeBrowserService) GetBrowser(_ context.Context) (PortalDriver, error) {
	f.acquired++
	return f.driver, nil
}

func (f *fakeBrowserService) ReleaseBrowser(_ PortalDriver) error {
	f.released++
	return nil
}

func (f *fakeBrowserService) GetStats() map[string]interface{} { return nil }
func (f *fakeBrowserService) Restart() error                   { return nil }
func (f *fakeBrowserService) Health() map[string]interface{} {
	return map[string]interface{}{"status": "healthy"}
}
func (f *fakeBrowserService) Close() error { return nil }

func newTestSearchService(t *testing.T, driver PortalDriver, captcha CaptchaServiceInterface) (SearchServiceInterface, *fakeBrowserService) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	courts, err := config.LoadCourtMappings()
	require.NoError(t, err)

	browser := &fakeBrowserService{driver: driver}
	service, err := NewSearchService(testPortalConfig(), courts, browser, captcha, nil, logger)
	require.NoError(t, err)
	return service, browser
}

func TestSearchCaseValidation(t *testing.T) {
	driver := newFakeDriver()
	service, browser := newTestSearchService(t, driver, &fakeCaptcha{solution: "AB12C"})

	cases := []struct {
		name string
		req  models.SearchRequest
	}{
		{"missing court", models.SearchRequest{CaseType: "civil", CaseNumber: "1", FilingYear: 2022}},
		{"missing case type", models.SearchRequest{CourtName: "delhi_district", CaseNumber: "1", FilingYear: 2022}},
		{"missing case number", models.SearchRequest{CourtName: "delhi_district", CaseType: "civil", FilingYear: 2022}},
		{"year too old", models.SearchRequest{CourtName: "delhi_district", CaseType: "civil", CaseNumber: "1", FilingYear: 1949}},
		{"year in future", models.SearchRequest{CourtName: "delhi_district", CaseType: "civil", CaseNumber: "1", FilingYear: 3000}},
		{"blank court", models.SearchRequest{CourtName: "   ", CaseType: "civil", CaseNumber: "1", FilingYear: 2022}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcome := service.SearchCase(context.Background(), tc.req)
			assert.Equal(t, models.OutcomeError, outcome.Status)
			assert.Equal(t, models.CauseValidation, outcome.Cause)
		})
	}

	// Validation failures never touch the browser pool
	assert.Zero(t, browser.acquired)
	assert.Empty(t, driver.actions)
}

func TestSearchCaseSuccess(t *testing.T) {
	driver := newFakeDriver()
	driver.html = resultPageHTML
	driver.hasResultTable = true
	service, browser := newTestSearchService(t, driver, &fakeCaptcha{solution: "AB12C"})

	outcome := service.SearchCase(context.Background(), testSearchRequest())

	assert.Equal(t, models.OutcomeSuccess, outcome.Status)
	require.NotNil(t, outcome.Case)
	assert.Equal(t, "ABC vs XYZ", outcome.Case.CaseTitle)
	assert.Equal(t, "2022-03-15", outcome.Case.FilingDate)
	require.Len(t, outcome.Case.Orders, 1)
	assert.Equal(t, models.OrderTypeFinal, outcome.Case.Orders[0].OrderType)

	assert.Equal(t, 1, browser.acquired)
	assert.Equal(t, 1, browser.released)
}

func TestSearchCaseNoRecord(t *testing.T) {
	driver := newFakeDriver()
	driver.html = `<html><body>No case found matching the criteria</body></html>`
	service, _ := newTestSearchService(t, driver, &fakeCaptcha{solution: "AB12C"})

	outcome := service.SearchCase(context.Background(), testSearchRequest())

	assert.Equal(t, models.OutcomeNotFound, outcome.Status)
	assert.NotEmpty(t, outcome.Message)
}

func TestSearchCaseResultPageWithoutCaseData(t *testing.T) {
	// A results table that exposes neither title nor petitioner is reported
	// as not found, not as success with an empty record
	driver := newFakeDriver()
	driver.html = `<html><table class="case_details"><tr><td>Status</td><td>Disposed</td></tr></table></html>`
	driver.hasResultTable = true
	service, _ := newTestSearchService(t, driver, &fakeCaptcha{solution: "AB12C"})

	outcome := service.SearchCase(context.Background(), testSearchRequest())

	assert.Equal(t, models.OutcomeNotFound, outcome.Status)
}

func TestSearchCaseCaptchaFailure(t *testing.T) {
	driver := newFakeDriver()
	service, browser := newTestSearchService(t, driver, &fakeCaptcha{err: ErrCaptchaNotSolved})

	outcome := service.SearchCase(context.Background(), testSearchRequest())

	assert.Equal(t, models.OutcomeError, outcome.Status)
	assert.Equal(t, models.CauseCaptcha, outcome.Cause)
	assert.Equal(t, 1, browser.released)
}

func TestSearchCaseTimeout(t *testing.T) {
	driver := newFakeDriver()
	driver.waitErrors[selStateDropdown] = context.DeadlineExceeded
	service, _ := newTestSearchService(t, driver, &fakeCaptcha{solution: "AB12C"})

	outcome := service.SearchCase(context.Background(), testSearchRequest())

	assert.Equal(t, models.OutcomeError, outcome.Status)
	assert.Equal(t, models.CauseTimeout, outcome.Cause)
}

func TestValidateRequest(t *testing.T) {
	valid := models.SearchRequest{
		CourtName:  "delhi_district",
		CaseType:   "civil",
		CaseNumber: "123",
		FilingYear: 2022,
	}
	assert.NoError(t, ValidateRequest(valid))

	boundary := valid
	boundary.FilingYear = 1950
	assert.NoError(t, ValidateRequest(boundary))
}
