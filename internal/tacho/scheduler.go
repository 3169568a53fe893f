package tacho

import (
	"context"
	"sync"
	"tad/internal/providers"
	"tad/internal/services"
	"tad/internal/structures"
	"tad/internal/tacho/interfaces"
	"time"

	"github.com/roylee0704/gron"
)

// Scheduler drives the daemon's two periodic jobs: scanning the inbox
// directory for device files and persisting the result registry. Both run
// under one ops mutex so a persist never observes a half-finished scan.
type Scheduler struct {
	config   *structures.Config
	logger   providers.Logger
	service  services.AnalysisServiceInterface
	analyzer *Analyzer
	store    interfaces.ResultStoreInterface
	metrics  providers.MetricsProviderInterface
	cron     *gron.Cron
	opsMu    sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.AnalysisServiceInterface, analyzer *Analyzer, store interfaces.ResultStoreInterface, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		config:   config,
		logger:   logger,
		service:  service,
		analyzer: analyzer,
		store:    store,
		metrics:  metrics,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Analysis.ScanInterval), func() {
		s.ScanInbox()
	})

	s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		if err := s.persistLocked(); err != nil {
			s.logger.Errorf(providers.TypeStore, "Error while persisting results: %s", err)
			return
		}
		s.logger.Infof(providers.TypeStore, "Persisted %d results", s.service.Count())
	})

	s.cron.Start()
}

// ScanInbox analyzes every matching file under the configured inbox
// directory and upserts the results into the registry. Cancellation via
// Stop is cooperative between files.
func (s *Scheduler) ScanInbox() {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	dir := s.config.Analysis.InboxDir
	s.logger.Infof(providers.TypeScan, "Scanning %s", dir)

	results := s.analyzer.AnalyzeDirectory(s.ctx, dir)
	for _, result := range results {
		if result.File.Hash == "" {
			// Unreadable file, nothing to key the result by.
			continue
		}
		s.service.Put(result)
		s.logger.Infof(providers.TypeScan, "%s: %d infractions, score %.1f",
			result.File.Name, len(result.Infractions), result.ComplianceScore)
	}
	s.logger.Infof(providers.TypeScan, "Scan finished: %d files processed", len(results))
}

func (s *Scheduler) Stop() {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	return s.store.Load()
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeStore, "Persisting analysis results...")
	if err := s.persistLocked(); err != nil {
		s.logger.Errorf(providers.TypeStore, "Error while persisting results: %s", err)
		return err
	}
	return nil
}

func (s *Scheduler) persistLocked() error {
	start := time.Now()
	err := s.store.Save()
	s.metrics.ObservePersistenceDuration(time.Since(start))
	return err
}
