package services

import (
	"sync"
	"tad/internal/models"

	"go.uber.org/atomic"
)

// AnalysisServiceInterface is the in-process face of the persistence
// collaborator: a registry of analysis results keyed by file content hash.
// The pipeline stages themselves are stateless; all cross-call state lives
// here.
type AnalysisServiceInterface interface {
	Put(result *models.AnalysisResult)
	GetByHash(hash string) *models.AnalysisResult
	GetAll() map[string]*models.AnalysisResult
	GetSnapshot() *models.Storage
	PutResults(results map[string]*models.AnalysisResult)
	Count() int
	FilesProcessed() int64
	InfractionsDetected() int64
}

const storageVersion = 1

type AnalysisService struct {
	mu             sync.RWMutex
	results        map[string]*models.AnalysisResult
	filesProcessed atomic.Int64
	infractions    atomic.Int64
}

func NewAnalysisService() AnalysisServiceInterface {
	return &AnalysisService{
		results: make(map[string]*models.AnalysisResult),
	}
}

// Put upserts a result by its file hash. Same hash overwrites the prior
// analysis.
func (as *AnalysisService) Put(result *models.AnalysisResult) {
	if result == nil || result.File.Hash == "" {
		return
	}
	as.mu.Lock()
	as.results[result.File.Hash] = result
	as.mu.Unlock()

	as.filesProcessed.Inc()
	as.infractions.Add(int64(len(result.Infractions)))
}

func (as *AnalysisService) GetByHash(hash string) *models.AnalysisResult {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return as.results[hash]
}

func (as *AnalysisService) GetAll() map[string]*models.AnalysisResult {
	as.mu.RLock()
	defer as.mu.RUnlock()

	copyMap := make(map[string]*models.AnalysisResult, len(as.results))
	for k, v := range as.results {
		copyMap[k] = v
	}
	return copyMap
}

func (as *AnalysisService) GetSnapshot() *models.Storage {
	return &models.Storage{
		Version: storageVersion,
		Results: as.GetAll(),
	}
}

// PutResults merges restored results into the registry without touching the
// processed-files counters; it is the load path, not the analysis path.
func (as *AnalysisService) PutResults(results map[string]*models.AnalysisResult) {
	as.mu.Lock()
	defer as.mu.Unlock()
	for hash, res := range results {
		if res == nil {
			continue
		}
		as.results[hash] = res
	}
}

func (as *AnalysisService) Count() int {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return len(as.results)
}

func (as *AnalysisService) FilesProcessed() int64 {
	return as.filesProcessed.Load()
}

func (as *AnalysisService) InfractionsDetected() int64 {
	return as.infractions.Load()
}
