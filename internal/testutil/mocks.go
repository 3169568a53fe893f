package testutil

import (
	"sync"
	"tad/internal/providers"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockCompressor implements interfaces.CompressorInterface with injectable
// behavior; defaults to identity.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockCache implements providers.CacheProviderInterface and counts access.
type MockCache struct {
	mu     sync.Mutex
	Data   map[string][]byte
	Hits   int
	Misses int
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	if ok {
		m.Hits++
	} else {
		m.Misses++
	}
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu            sync.Mutex
	Requests      int
	CacheHits     int
	CacheMisses   int
	FilesByKind   map[string]int
	Infractions   map[string]int
	AnalysisObs   int
	PersistObs    int
	RequestDurObs int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		FilesByKind: make(map[string]int),
		Infractions: make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestDurObs++
}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) IncFilesAnalyzed(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FilesByKind[kind]++
}

func (m *MockMetrics) IncInfractions(infractionType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Infractions[infractionType]++
}

func (m *MockMetrics) ObserveAnalysisDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnalysisObs++
}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistObs++
}

// MockStore implements interfaces.ResultStoreInterface with injectable
// behavior and call counters.
type MockStore struct {
	mu         sync.Mutex
	SaveCalls  int
	LoadCalls  int
	CloseCalls int
	SaveErr    error
	LoadErr    error
}

func (m *MockStore) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	return m.SaveErr
}

func (m *MockStore) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadCalls++
	return m.LoadErr
}

func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalls++
	return nil
}
