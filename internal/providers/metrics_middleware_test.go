package providers

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"tad/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type mockAnalysisService struct{}

func (m *mockAnalysisService) Put(*models.AnalysisResult)                   {}
func (m *mockAnalysisService) GetByHash(string) *models.AnalysisResult      { return nil }
func (m *mockAnalysisService) GetAll() map[string]*models.AnalysisResult    { return nil }
func (m *mockAnalysisService) GetSnapshot() *models.Storage                 { return &models.Storage{} }
func (m *mockAnalysisService) PutResults(map[string]*models.AnalysisResult) {}
func (m *mockAnalysisService) Count() int                                   { return 0 }
func (m *mockAnalysisService) FilesProcessed() int64                        { return 0 }
func (m *mockAnalysisService) InfractionsDetected() int64                   { return 0 }

type recordingMetrics struct {
	mu        sync.Mutex
	endpoints []string
	statuses  []int
	observed  int
}

func (r *recordingMetrics) IncRequestsTotal(endpoint string, status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoints = append(r.endpoints, endpoint)
	r.statuses = append(r.statuses, status)
}

func (r *recordingMetrics) ObserveRequestDuration(string, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observed++
}

func (r *recordingMetrics) IncCacheHits()                            {}
func (r *recordingMetrics) IncCacheMisses()                          {}
func (r *recordingMetrics) IncFilesAnalyzed(string)                  {}
func (r *recordingMetrics) IncInfractions(string)                    {}
func (r *recordingMetrics) ObserveAnalysisDuration(time.Duration)    {}
func (r *recordingMetrics) ObservePersistenceDuration(time.Duration) {}

func TestMetricsMiddleware_RecordsRequest(t *testing.T) {
	metrics := &recordingMetrics{}
	handler := MetricsMiddleware(metrics, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, []string{"/health"}, metrics.endpoints)
	assert.Equal(t, []int{http.StatusOK}, metrics.statuses)
	assert.Equal(t, 1, metrics.observed)
}

func TestMetricsMiddleware_CapturesErrorStatus(t *testing.T) {
	metrics := &recordingMetrics{}
	handler := MetricsMiddleware(metrics, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusMethodNotAllowed)
	}))

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, []int{http.StatusMethodNotAllowed}, metrics.statuses)
}

func TestMetricsMiddleware_DefaultStatusIsOK(t *testing.T) {
	metrics := &recordingMetrics{}
	handler := MetricsMiddleware(metrics, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Handler writes the body without an explicit status.
		_, _ = w.Write([]byte("implicit ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, []int{http.StatusOK}, metrics.statuses)
}
