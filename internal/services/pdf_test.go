package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/courtdata/ecourts-api/internal/config"
	"github.com/courtdata/ecourts-api/internal/monitoring"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPDFService(t *testing.T) (*PDFService, *monitoring.Metrics) {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := config.PDFConfig{
		StoragePath: t.TempDir(),
		MaxSizeMB:   1,
	}
	cache := NewCacheService(nil, time.Minute, logger)

	service := NewPDFService(cfg, "test-agent", cache, &http.Client{Timeout: 5 * time.Second}, logger)
	metrics := monitoring.NewMetricsWith(prometheus.NewRegistry())
	service.SetMetrics(metrics)
	return service, metrics
}

func TestDownloadStoresPDFAndRecordsMetric(t *testing.T) {
	fetches := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 fixture"))
	}))
	defer server.Close()

	service, metrics := newTestPDFService(t)

	path, err := service.Download(context.Background(), server.URL+"/order.pdf", 7)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "%PDF")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.PDFDownloads.WithLabelValues("success")))

	// Second download of the same URL is served from the cache, not counted
	again, err := service.Download(context.Background(), server.URL+"/order.pdf", 7)
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.Equal(t, 1, fetches)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.PDFDownloads.WithLabelValues("success")))
}

func TestDownloadFailureRecordsMetric(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	service, metrics := newTestPDFService(t)

	_, err := service.Download(context.Background(), server.URL+"/missing.pdf", 8)
	require.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.PDFDownloads.WithLabelValues("failed")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.PDFDownloads.WithLabelValues("success")))
}

func TestDownloadRejectsOversizedPDF(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(make([]byte, 2*1024*1024))
	}))
	defer server.Close()

	service, metrics := newTestPDFService(t)

	_, err := service.Download(context.Background(), server.URL+"/huge.pdf", 9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.PDFDownloads.WithLabelValues("failed")))
}
