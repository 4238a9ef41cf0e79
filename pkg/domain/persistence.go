package domain

import "context"

// PersistentStore is the minimal abstraction over durable backends for the
// harmonized dataset and the computed result tables. Implementations
// snapshot whole values; the pipeline is a batch computation, so there is
// no row-level mutation to support.
type PersistentStore interface {
	SaveDataset(ctx context.Context, ds Dataset) error
	// Dataset returns the stored dataset; the second return reports whether
	// one has been saved.
	Dataset(ctx context.Context) (Dataset, bool, error)
	SaveResults(ctx context.Context, res AnalysisResult) error
	// Results returns the stored analysis; the second return reports whether
	// one has been saved.
	Results(ctx context.Context) (AnalysisResult, bool, error)
	Close() error
}
