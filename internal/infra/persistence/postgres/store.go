// Package postgres persists pipeline snapshots to Postgres, mirroring the
// SQLite store's bucketed JSON layout.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"surveycore/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.PersistentStore = (*Store)(nil)

const (
	driverName = "pgx"
	defaultDSN = "postgres://localhost/surveycore?sslmode=disable"
)

// Snapshot buckets.
const (
	bucketDataset = "dataset"
	bucketResults = "results"
)

// Store is a Postgres-backed persistent store.
type Store struct {
	db *sql.DB
}

// NewStore opens a Postgres store using the provided DSN (falls back to
// defaultDSN) and ensures the state table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BYTEA NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) save(ctx context.Context, bucket string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", bucket, err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO state(bucket, payload) VALUES($1, $2)
		 ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
		bucket, payload); err != nil {
		return fmt.Errorf("save %s: %w", bucket, err)
	}
	return nil
}

func (s *Store) load(ctx context.Context, bucket string, out any) (bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM state WHERE bucket = $1`, bucket).Scan(&payload)
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
