package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/courtdata/ecourts-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSearchService returns a canned outcome and records the request it saw
type stubSearchService struct {
	outcome models.SearchOutcome
	lastReq models.SearchRequest
	calls   int
}

func (s *stubSearchService) SearchCase(_ context.Context, req models.SearchRequest) models.SearchOutcome {
	s.calls++
	s.lastReq = req
	return s.outcome
}

func (s *stubSearchService) Health() map[string]interface{} {
	return map[string]interface{}{"status": "healthy"}
}

func (s *stubSearchService) Close() error { return nil }

func newSearchTestRouter(stub *stubSearchService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	router := gin.New()
	handler := NewSearchHandler(stub, nil, logger)
	router.POST("/api/v1/search", handler.Search)
	return router
}

func performSearch(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

const validSearchBody = `{"court":"delhi_district","case_type":"civil","case_number":"123","filing_year":2022}`

func TestSearchEndpointSuccess(t *testing.T) {
	stub := &stubSearchService{outcome: models.Success(&models.CaseRecord{
		CaseTitle:  "ABC vs XYZ",
		Petitioner: "ABC",
		Orders:     []models.OrderRecord{},
	})}
	router := newSearchTestRouter(stub)

	recorder := performSearch(t, router, validSearchBody)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, "delhi_district", stub.lastReq.CourtName)

	var response models.SearchResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, models.OutcomeSuccess, response.Outcome.Status)
	require.NotNil(t, response.Outcome.Case)
	assert.Equal(t, "ABC vs XYZ", response.Outcome.Case.CaseTitle)

	// Outcomes are never served from a cache, so the payload carries no
	// cache marker
	assert.NotContains(t, recorder.Body.String(), `"cache"`)
}

func TestSearchEndpointNotFound(t *testing.T) {
	stub := &stubSearchService{outcome: models.NotFound("No case found with the provided details")}
	router := newSearchTestRouter(stub)

	recorder := performSearch(t, router, validSearchBody)

	assert.Equal(t, http.StatusNotFound, recorder.Code)

	var response models.SearchResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, models.OutcomeNotFound, response.Outcome.Status)
}

func TestSearchEndpointMalformedBody(t *testing.T) {
	stub := &stubSearchService{}
	router := newSearchTestRouter(stub)

	recorder := performSearch(t, router, `{"court": 42}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Zero(t, stub.calls)
}

func TestSearchEndpointMissingFields(t *testing.T) {
	stub := &stubSearchService{}
	router := newSearchTestRouter(stub)

	recorder := performSearch(t, router, `{"court":"delhi_district"}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Zero(t, stub.calls)
}

func TestStatusCodeFor(t *testing.T) {
	cases := []struct {
		outcome models.SearchOutcome
		want    int
	}{
		{models.Success(&models.CaseRecord{}), http.StatusOK},
		{models.NotFound("nothing"), http.StatusNotFound},
		{models.Failure(models.CauseValidation, "bad"), http.StatusBadRequest},
		{models.Failure(models.CauseTimeout, "slow"), http.StatusRequestTimeout},
		{models.Failure(models.CauseCaptcha, "unsolved"), http.StatusServiceUnavailable},
		{models.Failure(models.CauseNavigation, "drift"), http.StatusInternalServerError},
		{models.Failure(models.CauseParse, "mangled"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, statusCodeFor(tc.outcome), "outcome: %+v", tc.outcome)
	}
}
