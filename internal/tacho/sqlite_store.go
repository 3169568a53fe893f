package tacho

import (
	"database/sql"
	"fmt"
	"tad/internal/models"
	"tad/internal/providers"
	"tad/internal/services"
	"tad/internal/structures"
	"tad/internal/tacho/interfaces"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"
)

const createAnalysesTable = `
CREATE TABLE IF NOT EXISTS tachograph_analyses (
	file_hash         TEXT PRIMARY KEY,
	file_name         TEXT NOT NULL,
	analysis_json     BLOB NOT NULL,
	compliance_score  REAL NOT NULL,
	infractions_count INTEGER NOT NULL,
	created_at        TIMESTAMP NOT NULL,
	updated_at        TIMESTAMP NOT NULL
)`

const upsertAnalysis = `
INSERT INTO tachograph_analyses
	(file_hash, file_name, analysis_json, compliance_score, infractions_count, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(file_hash) DO UPDATE SET
	file_name = excluded.file_name,
	analysis_json = excluded.analysis_json,
	compliance_score = excluded.compliance_score,
	infractions_count = excluded.infractions_count,
	updated_at = excluded.updated_at`

// SQLiteStore persists results into an embedded relational store, one row
// per file hash with upsert semantics: re-analyzing the same content
// overwrites the prior row and refreshes updated_at.
type SQLiteStore struct {
	db      *sql.DB
	service services.AnalysisServiceInterface
	logger  providers.Logger
}

func NewSQLiteStore(path string, service services.AnalysisServiceInterface, logger providers.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	if _, err := db.Exec(createAnalysesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create analyses table: %w", err)
	}
	return &SQLiteStore{db: db, service: service, logger: logger}, nil
}

func (s *SQLiteStore) Save() error {
	snapshot := s.service.GetSnapshot()
	now := time.Now()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(upsertAnalysis)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for hash, result := range snapshot.Results {
		encoded, err := json.Marshal(result)
		if err != nil {
			s.logger.Errorf(providers.TypeStore, "Skipping unserializable result %s: %s", hash, err)
			continue
		}
		_, err = stmt.Exec(hash, result.File.Name, encoded, result.ComplianceScore, len(result.Infractions), now, now)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Load() error {
	rows, err := s.db.Query(`SELECT file_hash, analysis_json FROM tachograph_analyses`)
	if err != nil {
		return err
	}
	defer rows.Close()

	results := make(map[string]*models.AnalysisResult)
	for rows.Next() {
		var hash string
		var encoded []byte
		if err := rows.Scan(&hash, &encoded); err != nil {
			return err
		}
		var result models.AnalysisResult
		if err := json.Unmarshal(encoded, &result); err != nil {
			s.logger.Warnf(providers.TypeStore, "Skipping unreadable stored result %s: %s", hash, err)
			continue
		}
		results[hash] = &result
	}
	if err := rows.Err(); err != nil {
		return err
	}

	s.service.PutResults(results)
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// NewResultStore selects the persistence backend from config.
func NewResultStore(conf *structures.Config, service services.AnalysisServiceInterface, compressor interfaces.CompressorInterface, logger providers.Logger) (interfaces.ResultStoreInterface, error) {
	switch conf.Persistence.Backend {
	case "sqlite":
		return NewSQLiteStore(conf.Persistence.SqlitePath, service, logger)
	default:
		return NewFileManager(conf.Persistence.FilePath, compressor, service, logger), nil
	}
}
