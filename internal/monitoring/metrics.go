package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SearchesTotal  *prometheus.CounterVec
	SearchDuration prometheus.Histogram
	CaptchaTotal   *prometheus.CounterVec
	PDFDownloads   *prometheus.CounterVec
}

// NewMetrics registers the application metrics on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers on the given registerer, so tests can use an
// isolated registry.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SearchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "court_searches_total",
			Help: "The total number of case searches by outcome",
		}, []string{"outcome"}), // 'success', 'not_found', 'error'
		SearchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "court_search_duration_seconds",
			Help:    "Wall-clock duration of case searches",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		CaptchaTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "court_captcha_attempts_total",
			Help: "The total number of captcha resolution attempts by result",
		}, []string{"result"}), // 'solved', 'failed'
		PDFDownloads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "court_pdf_downloads_total",
			Help: "The total number of order PDF downloads by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) RecordSearch(outcome string, seconds float64) {
	m.SearchesTotal.WithLabelValues(outcome).Inc()
	m.SearchDuration.Observe(seconds)
}

func (m *Metrics) RecordCaptcha(solved bool) {
	if solved {
		m.CaptchaTotal.WithLabelValues("solved").Inc()
	} else {
		m.CaptchaTotal.WithLabelValues("failed").Inc()
	}
}

func (m *Metrics) RecordPDFDownload(ok bool) {
	if ok {
		m.PDFDownloads.WithLabelValues("success").Inc()
	} else {
		m.PDFDownloads.WithLabelValues("failed").Inc()
	}
}
