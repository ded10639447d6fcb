package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/anime-shed/folkart-inspector/pkg/models"
)

const analysisSchema = `
CREATE TABLE IF NOT EXISTS analyses (
	id            TEXT PRIMARY KEY,
	image_url     TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	processing_ms INTEGER NOT NULL,
	seed          INTEGER NOT NULL,
	art_form      TEXT NOT NULL,
	confidence    REAL NOT NULL,
	provenance    TEXT NOT NULL,
	report        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_image_url ON analyses (image_url, created_at);
`

// Fixed-width so that text ordering matches time ordering.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// SQLiteAnalysisRepository stores analyses in a SQLite database.
type SQLiteAnalysisRepository struct {
	db *sql.DB
}

// NewSQLiteAnalysisRepository opens dbPath and runs migrations. ":memory:"
// gives a private in-process database.
func NewSQLiteAnalysisRepository(dbPath string) (*SQLiteAnalysisRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(analysisSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteAnalysisRepository{db: db}, nil
}

func (s *SQLiteAnalysisRepository) Close() error {
	return s.db.Close()
}

func (s *SQLiteAnalysisRepository) SaveAnalysisResult(ctx context.Context, record *models.AnalysisRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	record.CreatedAt = record.CreatedAt.UTC()

	provenance, err := json.Marshal(record.Provenance)
	if err != nil {
		return fmt.Errorf("marshal provenance: %w", err)
	}
	report := record.Report
	if len(report) == 0 {
		report = json.RawMessage("{}")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, image_url, created_at, processing_ms, seed, art_form, confidence, provenance, report)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.ImageURL, record.CreatedAt.Format(createdAtLayout), record.ProcessingTimeMs,
		record.Seed, record.ArtForm, record.Confidence, string(provenance), string(report),
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (s *SQLiteAnalysisRepository) GetAnalysisResult(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, image_url, created_at, processing_ms, seed, art_form, confidence, provenance, report
		 FROM analyses WHERE id = ?`, id)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAnalysisNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetAnalysisHistory returns at most limit records. A non-positive limit
// means DefaultHistoryLimit; larger limits are clamped to MaxHistoryLimit.
func (s *SQLiteAnalysisRepository) GetAnalysisHistory(ctx context.Context, imageURL string, limit int) ([]*models.AnalysisRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, image_url, created_at, processing_ms, seed, art_form, confidence, provenance, report
		 FROM analyses WHERE image_url = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`, imageURL, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	records := make([]*models.AnalysisRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*models.AnalysisRecord, error) {
	var (
		record     models.AnalysisRecord
		createdAt  string
		provenance string
		report     string
	)
	err := row.Scan(&record.ID, &record.ImageURL, &createdAt, &record.ProcessingTimeMs,
		&record.Seed, &record.ArtForm, &record.Confidence, &provenance, &report)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan analysis: %w", err)
	}

	if record.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(provenance), &record.Provenance); err != nil {
		return nil, fmt.Errorf("unmarshal provenance: %w", err)
	}
	record.Report = json.RawMessage(report)
	return &record, nil
}
