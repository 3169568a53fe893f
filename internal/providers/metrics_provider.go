package providers

import (
	"tad/internal/services"
	"tad/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncFilesAnalyzed(kind string)
	IncInfractions(infractionType string)
	ObserveAnalysisDuration(duration time.Duration)
	ObservePersistenceDuration(duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	filesAnalyzed       *prometheus.CounterVec
	infractionsTotal    *prometheus.CounterVec
	analysisDuration    prometheus.Histogram
	persistenceDuration prometheus.Histogram
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncFilesAnalyzed(kind string) {
	m.filesAnalyzed.WithLabelValues(kind).Inc()
}

func (m *MetricsProvider) IncInfractions(infractionType string) {
	m.infractionsTotal.WithLabelValues(infractionType).Inc()
}

func (m *MetricsProvider) ObserveAnalysisDuration(duration time.Duration) {
	m.analysisDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, service services.AnalysisServiceInterface) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tad_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tad_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tad_cache_hits_total",
			Help: "Total number of result cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tad_cache_misses_total",
			Help: "Total number of result cache misses",
		}),

		filesAnalyzed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tad_files_analyzed_total",
			Help: "Total number of files analyzed per container kind",
		}, []string{"kind"}),

		infractionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tad_infractions_total",
			Help: "Total number of infractions detected per type",
		}, []string{"type"}),

		analysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tad_analysis_duration_seconds",
			Help:    "Duration of single-file analysis in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tad_persistence_duration_seconds",
			Help:    "Duration of persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "tad_results_total",
		Help: "Current number of analysis results in the registry",
	}, func() float64 {
		return float64(service.Count())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "tad_files_processed_total",
		Help: "Number of files processed since startup",
	}, func() float64 {
		return float64(service.FilesProcessed())
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncFilesAnalyzed(_ string)                        {}
func (n *noopMetrics) IncInfractions(_ string)                          {}
func (n *noopMetrics) ObserveAnalysisDuration(_ time.Duration)          {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
