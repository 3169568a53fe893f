package tacho

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"tad/internal/models"
	"tad/internal/providers"
	"tad/internal/structures"
	"time"

	json "github.com/goccy/go-json"
)

// Baseline recommendations appended to every analysis.
var baselineRecommendations = []string{
	"Maintain an active regulatory watch",
	"Run regular internal compliance checks",
}

// Extra recommendations when a file accumulates many infractions.
var auditRecommendations = []string{
	"A full regulatory compliance audit is recommended",
	"In-depth training on social regulations",
}

const auditThreshold = 5

// Analyzer runs the full pipeline over one file or a directory: detect →
// decode → timeline → per-day rules → weekly rules → score. Each stage
// consumes the prior stage's complete output; per file the stages run in
// strict sequence, across files the analyzer fans out over a bounded worker
// pool.
type Analyzer struct {
	config   *structures.Config
	logger   providers.Logger
	cache    providers.CacheProviderInterface
	metrics  providers.MetricsProviderInterface
	decoder  *Decoder
	timeline *TimelineBuilder
	rules    *RuleEngine
}

func NewAnalyzer(conf *structures.Config, logger providers.Logger, cache providers.CacheProviderInterface, metrics providers.MetricsProviderInterface) *Analyzer {
	return &Analyzer{
		config:   conf,
		logger:   logger,
		cache:    cache,
		metrics:  metrics,
		decoder:  NewDecoder(logger),
		timeline: NewTimelineBuilder(),
		rules:    NewRuleEngine(),
	}
}

// AnalyzeFile reads and analyzes a single file. Failures are recorded in
// the result's error field, never returned: one bad file must not abort a
// directory scan.
func (a *Analyzer) AnalyzeFile(path string) *models.AnalysisResult {
	data, err := os.ReadFile(path)
	if err != nil {
		a.logger.Errorf(providers.TypeScan, "Failed to read %s: %s", path, err)
		return &models.AnalysisResult{
			File: models.FileInfo{
				Name:       filepath.Base(path),
				Kind:       models.KindUnrecognized,
				AnalyzedAt: time.Now(),
			},
			ComplianceScore: 100.0,
			Error:           err.Error(),
		}
	}
	return a.AnalyzeBytes(filepath.Base(path), data)
}

// AnalyzeBytes analyzes a raw buffer. The pipeline is deterministic: the
// same bytes always yield the same result, with analysis_time as the only
// field allowed to differ between runs. Already-seen buffers are served
// from the content-addressed result cache without re-decoding.
func (a *Analyzer) AnalyzeBytes(name string, data []byte) *models.AnalysisResult {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	if cached, ok := a.cache.Get(hash); ok {
		var result models.AnalysisResult
		if err := json.Unmarshal(cached, &result); err == nil {
			a.metrics.IncCacheHits()
			result.File.AnalyzedAt = time.Now()
			return &result
		}
	}
	a.metrics.IncCacheMisses()

	start := time.Now()
	kind := DetectFormat(data)

	result := &models.AnalysisResult{
		ID: models.ResultID(hash),
		File: models.FileInfo{
			Name:       name,
			SizeBytes:  int64(len(data)),
			Hash:       hash,
			Kind:       kind,
			AnalyzedAt: start,
		},
		ComplianceScore: 100.0,
	}

	if kind == models.KindUnrecognized {
		result.Note = "unrecognized container format, decoding skipped"
		a.finish(result, start)
		return result
	}

	parsed, err := a.decoder.Decode(data, kind)
	if err != nil {
		result.Note = err.Error()
		a.finish(result, start)
		return result
	}
	result.Card = parsed.Card
	result.Vehicle = parsed.Vehicle
	result.SpeedRecords = parsed.SpeedRecords

	result.DailySummaries = a.timeline.Build(parsed.Activities)

	var infractions []models.DetectedInfraction
	for _, day := range result.DailySummaries {
		infractions = append(infractions, a.rules.CheckDay(day)...)
	}
	if len(result.DailySummaries) >= WeeklyWindowDays {
		week := result.DailySummaries[len(result.DailySummaries)-WeeklyWindowDays:]
		infractions = append(infractions, a.rules.CheckWeek(week)...)
	}
	result.Infractions = infractions
	result.ComplianceScore = ComplianceScore(infractions)
	result.Recommendations = aggregateRecommendations(infractions)

	a.finish(result, start)
	return result
}

func (a *Analyzer) finish(result *models.AnalysisResult, start time.Time) {
	a.metrics.IncFilesAnalyzed(string(result.File.Kind))
	for _, inf := range result.Infractions {
		a.metrics.IncInfractions(inf.Kind.String())
	}
	a.metrics.ObserveAnalysisDuration(time.Since(start))

	if encoded, err := json.Marshal(result); err == nil {
		a.cache.Set(result.File.Hash, encoded)
	}
}

// AnalyzeDirectory fans the per-file pipeline out over a bounded worker
// pool. Files are independent: no ordering is required between them, no
// state is shared, and cancellation is cooperative between files (mid-file
// decode is bounded and fast). Results come back sorted by file name for
// stable output.
func (a *Analyzer) AnalyzeDirectory(ctx context.Context, dir string) []*models.AnalysisResult {
	paths := a.collectFiles(dir)
	if len(paths) == 0 {
		return nil
	}

	jobs := make(chan string)
	out := make(chan *models.AnalysisResult, len(paths))

	workers := a.config.Analysis.Workers
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				out <- a.AnalyzeFile(path)
			}
		}()
	}

dispatch:
	for _, path := range paths {
		select {
		case <-ctx.Done():
			a.logger.Warnf(providers.TypeScan, "Directory scan cancelled: %s", ctx.Err())
			break dispatch
		case jobs <- path:
		}
	}
	close(jobs)
	wg.Wait()
	close(out)

	results := make([]*models.AnalysisResult, 0, len(paths))
	for res := range out {
		results = append(results, res)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].File.Name < results[j].File.Name })
	return results
}

// collectFiles walks dir gathering files matching the extension allow-list.
func (a *Analyzer) collectFiles(dir string) []string {
	allowed := make(map[string]struct{}, len(a.config.Analysis.Extensions))
	for _, ext := range a.config.Analysis.Extensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			a.logger.Warnf(providers.TypeScan, "Skipping %s: %s", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		a.logger.Errorf(providers.TypeScan, "Directory walk failed for %s: %s", dir, err)
	}
	return paths
}

// aggregateRecommendations deduplicates per-infraction recommendations in
// first-seen order, adds the audit pair when the file accumulates many
// infractions, and always appends the static baseline.
func aggregateRecommendations(infractions []models.DetectedInfraction) []string {
	seen := make(map[string]struct{})
	var recs []string
	add := func(items []string) {
		for _, r := range items {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			recs = append(recs, r)
		}
	}

	for _, inf := range infractions {
		add(inf.Recommendations)
	}
	if len(infractions) > auditThreshold {
		add(auditRecommendations)
	}
	add(baselineRecommendations)
	return recs
}
