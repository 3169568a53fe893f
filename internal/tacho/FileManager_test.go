package tacho

import (
	"errors"
	"os"
	"path/filepath"
	"tad/internal/models"
	"tad/internal/services"
	"tad/internal/testutil"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(name, hash string) *models.AnalysisResult {
	return &models.AnalysisResult{
		ID: models.ResultID(hash),
		File: models.FileInfo{
			Name:       name,
			Hash:       hash,
			Kind:       models.KindDriverCard,
			AnalyzedAt: time.Now(),
		},
		ComplianceScore: 85.5,
	}
}

func TestFileManager_Save_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.dat")

	svc := services.NewAnalysisService()
	svc.Put(sampleResult("a.ddd", "hash-a"))

	fm := NewFileManager(path, &testutil.MockCompressor{}, svc, &testutil.MockLogger{})
	require.NoError(t, fm.Save())

	_, err := os.Stat(path)
	assert.NoError(t, err)

	// Temp file must be gone after the rename.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileManager_Load_FileNotExist(t *testing.T) {
	fm := NewFileManager("/nonexistent/results.dat", &testutil.MockCompressor{}, services.NewAnalysisService(), &testutil.MockLogger{})
	assert.NoError(t, fm.Load())
}

func TestFileManager_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roundtrip.dat")

	svc := services.NewAnalysisService()
	svc.Put(sampleResult("a.ddd", "hash-a"))
	svc.Put(sampleResult("b.tgd", "hash-b"))

	fm := NewFileManager(path, &testutil.MockCompressor{}, svc, &testutil.MockLogger{})
	require.NoError(t, fm.Save())

	svc2 := services.NewAnalysisService()
	fm2 := NewFileManager(path, &testutil.MockCompressor{}, svc2, &testutil.MockLogger{})
	require.NoError(t, fm2.Load())

	assert.Equal(t, 2, svc2.Count())
	restored := svc2.GetByHash("hash-a")
	require.NotNil(t, restored)
	assert.Equal(t, "a.ddd", restored.File.Name)
	assert.Equal(t, 85.5, restored.ComplianceScore)
	assert.Equal(t, models.ResultID("hash-a"), restored.ID)
}

func TestFileManager_RoundtripWithRealCompressor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zstd.dat")

	comp, err := NewZstdCompressor()
	require.NoError(t, err)

	svc := services.NewAnalysisService()
	svc.Put(sampleResult("a.ddd", "hash-a"))

	fm := NewFileManager(path, comp, svc, &testutil.MockLogger{})
	require.NoError(t, fm.Save())

	svc2 := services.NewAnalysisService()
	fm2 := NewFileManager(path, comp, svc2, &testutil.MockLogger{})
	require.NoError(t, fm2.Load())
	assert.Equal(t, 1, svc2.Count())

	fm.Close()
}

func TestFileManager_Load_LegacyBareMap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "legacy.dat")

	legacy := map[string]*models.AnalysisResult{
		"hash-x": sampleResult("x.ddd", "hash-x"),
	}
	jsonData, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, jsonData, 0644))

	svc := services.NewAnalysisService()
	logger := &testutil.MockLogger{}
	fm := NewFileManager(path, &testutil.MockCompressor{}, svc, logger)
	require.NoError(t, fm.Load())

	assert.Equal(t, 1, svc.Count())
	assert.NotNil(t, svc.GetByHash("hash-x"))
	assert.NotEmpty(t, logger.Logs)
}

func TestFileManager_Load_InvalidData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invalid.dat")
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0644))

	fm := NewFileManager(path, &testutil.MockCompressor{}, services.NewAnalysisService(), &testutil.MockLogger{})
	assert.Error(t, fm.Load())
}

func TestFileManager_Save_CompressError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "err.dat")

	comp := &testutil.MockCompressor{
		CompressFn: func(b []byte) ([]byte, error) {
			return nil, errors.New("compress failed")
		},
	}
	fm := NewFileManager(path, comp, services.NewAnalysisService(), &testutil.MockLogger{})

	err := fm.Save()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "compress failed")
}

func TestFileManager_Load_DecompressError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dec.dat")
	require.NoError(t, os.WriteFile(path, []byte("some data"), 0644))

	comp := &testutil.MockCompressor{
		DecompressFn: func(b []byte) ([]byte, error) {
			return nil, errors.New("decompress failed")
		},
	}
	fm := NewFileManager(path, comp, services.NewAnalysisService(), &testutil.MockLogger{})

	err := fm.Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "decompress failed")
}

func TestFileManager_Save_Overwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overwrite.dat")

	svc := services.NewAnalysisService()
	svc.Put(sampleResult("a.ddd", "hash-a"))
	fm := NewFileManager(path, &testutil.MockCompressor{}, svc, &testutil.MockLogger{})
	require.NoError(t, fm.Save())

	// Re-analysis of the same content updates the snapshot in place.
	updated := sampleResult("a.ddd", "hash-a")
	updated.ComplianceScore = 60.0
	svc.Put(updated)
	require.NoError(t, fm.Save())

	svc2 := services.NewAnalysisService()
	fm2 := NewFileManager(path, &testutil.MockCompressor{}, svc2, &testutil.MockLogger{})
	require.NoError(t, fm2.Load())

	assert.Equal(t, 1, svc2.Count())
	assert.Equal(t, 60.0, svc2.GetByHash("hash-a").ComplianceScore)
}
