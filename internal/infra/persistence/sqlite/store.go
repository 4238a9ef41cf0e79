// Package sqlite persists pipeline snapshots to a single SQLite table as
// JSON blobs, one bucket per snapshot kind.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"surveycore/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.PersistentStore = (*Store)(nil)

// Snapshot buckets.
const (
	bucketDataset = "dataset"
	bucketResults = "results"
)

// Store is a SQLite-backed persistent store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) a SQLite store at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "surveycore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func (s *Store) save(ctx context.Context, bucket string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", bucket, err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO state(bucket, payload) VALUES(?, ?)
		 ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
		bucket, payload); err != nil {
		return fmt.Errorf("save %s: %w", bucket, err)
	}
	return nil
}

func (s *Store) load(ctx context.Context, bucket string, out any) (bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM state WHERE bucket = ?`, bucket).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", bucket, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", bucket, err)
	}
	return true, nil
}

// SaveDataset snapshots the harmonized dataset.
func (s *Store) SaveDataset(ctx context.Context, ds domain.Dataset) error {
	return s.save(ctx, bucketDataset, ds)
}

// Dataset loads the stored dataset, if any.
func (s *Store) Dataset(ctx context.Context) (domain.Dataset, bool, error) {
	var ds domain.Dataset
	ok, err := s.load(ctx, bucketDataset, &ds)
	return ds, ok, err
}

// SaveResults snapshots the analysis result tables.
func (s *Store) SaveResults(ctx context.Context, res domain.AnalysisResult) error {
	return s.save(ctx, bucketResults, res)
}

// Results loads the stored analysis, if any.
func (s *Store) Results(ctx context.Context) (domain.AnalysisResult, bool, error) {
	var res domain.AnalysisResult
	ok, err := s.load(ctx, bucketResults, &res)
	return res, ok, err
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
