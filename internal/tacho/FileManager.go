package tacho

import (
	"os"
	"tad/internal/models"
	"tad/internal/providers"
	"tad/internal/services"
	"tad/internal/tacho/interfaces"

	json "github.com/goccy/go-json"
)

// FileManager persists the result registry as a zstd-compressed JSON
// snapshot. Writes are atomic (tmp file + fsync + rename); loading a
// missing file is not an error. Upsert semantics fall out of the snapshot
// being keyed by file hash.
type FileManager struct {
	service    services.AnalysisServiceInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	filePath   string
}

func NewFileManager(filePath string, compressor interfaces.CompressorInterface, service services.AnalysisServiceInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		service:    service,
		logger:     logger,
		filePath:   filePath,
	}
}

func (f *FileManager) Save() error {
	storage := f.service.GetSnapshot()

	jsonData, err := json.Marshal(storage)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := f.filePath + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, f.filePath)
}

func (f *FileManager) Load() error {
	data, err := os.ReadFile(f.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	// Current format: versioned envelope.
	var storage models.Storage
	if err := json.Unmarshal(decompressedData, &storage); err == nil && storage.Results != nil {
		f.service.PutResults(storage.Results)
		return nil
	}

	// Legacy format: bare hash → result map.
	f.logger.Warnf(providers.TypeStore, "Inconsistent store file found, trying legacy format")
	var results map[string]*models.AnalysisResult
	if err := json.Unmarshal(decompressedData, &results); err != nil {
		f.logger.Warnf(providers.TypeStore, "Migration failed")
		return err
	}
	f.logger.Warnf(providers.TypeStore, "Migration from legacy format successful")
	f.service.PutResults(results)
	return nil
}

func (f *FileManager) Close() error {
	f.compressor.Close()
	return nil
}
