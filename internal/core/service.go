// Package core wires the harmonization, derivation, and analysis stages into
// one observable pipeline service. The service owns no storage format itself:
// raw tables come from a loader, snapshots go to a persistent store.
package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"surveycore/internal/analyze"
	"surveycore/internal/derive"
	"surveycore/internal/harmonize"
	"surveycore/internal/loader"
	"surveycore/pkg/domain"
)

// defaultParallelism bounds concurrent per-cycle harmonization.
const defaultParallelism = 4

// Service runs the survey pipeline end to end.
type Service struct {
	store       domain.PersistentStore
	logger      Logger
	metrics     MetricsRecorder
	tracer      Tracer
	parallelism int
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger installs a structured logger.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics installs a metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer installs a tracer.
func WithTracer(t Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithParallelism bounds concurrent cycle harmonization. Values below one
// are ignored.
func WithParallelism(n int) Option {
	return func(s *Service) {
		if n >= 1 {
			s.parallelism = n
		}
	}
}

// NewService constructs a pipeline service over the given snapshot store.
// The store may be nil for callers that only need in-memory results.
func NewService(store domain.PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:       store,
		logger:      noopLogger{},
		metrics:     noopMetrics{},
		tracer:      noopTracer{},
		parallelism: defaultParallelism,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// observe wraps one named operation with tracing and metrics.
func (s *Service) observe(ctx context.Context, operation string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, operation)
	start := time.Now()
	err := fn(ctx)
	s.metrics.Observe(ctx, operation, err == nil, time.Since(start))
	span.End(err)
	return err
}

type cycleResult struct {
	ds   domain.Dataset
	err  error
	skip bool
}

// HarmonizeAll loads and harmonizes every requested cycle, concatenating the
// per-cycle datasets in the order the cycles were given. Cycles whose
// demographics anchor is absent are skipped with a warning; any other error
// aborts the whole operation.
func (s *Service) HarmonizeAll(ctx context.Context, cycles []domain.Cycle, l loader.Loader) (domain.Dataset, error) {
	var out domain.Dataset
	err := s.observe(ctx, "harmonize_all", func(ctx context.Context) error {
		results := make([]cycleResult, len(cycles))
		sem := make(chan struct{}, s.parallelism)
		var wg sync.WaitGroup
		for i, cycle := range cycles {
			wg.Add(1)
			go func(i int, cycle domain.Cycle) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				results[i] = s.harmonizeCycle(ctx, l, cycle)
			}(i, cycle)
		}
		wg.Wait()

		for i, res := range results {
			if res.err != nil {
				return fmt.Errorf("cycle %s: %w", cycles[i].ID, res.err)
			}
			if res.skip {
				s.logger.Warn("skipping cycle without demographics", "cycle", cycles[i].ID)
				continue
			}
			out = out.Append(res.ds)
		}
		s.logger.Info("harmonized cycles", "cycles", len(cycles), "records", out.Len())
		return nil
	})
	if err != nil {
		return domain.Dataset{}, err
	}
	return out, nil
}

func (s *Service) harmonizeCycle(ctx context.Context, l loader.Loader, cycle domain.Cycle) cycleResult {
	tables, err := loader.LoadCycle(ctx, l, cycle)
	if err != nil {
		return cycleResult{err: err}
	}
	ds, err := harmonize.Harmonize(cycle, tables)
	if errors.Is(err, harmonize.ErrNoDemographics) {
		return cycleResult{skip: true}
	}
	if err != nil {
		return cycleResult{err: err}
	}
	s.logger.Info("harmonized cycle", "cycle", cycle.ID, "records", ds.Len())
	return cycleResult{ds: ds}
}

// Derive enriches every record with the derived clinical variables.
func (s *Service) Derive(ctx context.Context, ds domain.Dataset) domain.Dataset {
	var out domain.Dataset
	_ = s.observe(ctx, "derive", func(context.Context) error {
		out = derive.Apply(ds)
		return nil
	})
	return out
}

// Analyze applies the analytic exclusions and computes the full result set.
func (s *Service) Analyze(ctx context.Context, ds domain.Dataset) (domain.AnalysisResult, analyze.ExclusionCounts) {
	var (
		result domain.AnalysisResult
		counts analyze.ExclusionCounts
	)
	_ = s.observe(ctx, "analyze", func(context.Context) error {
		analytic, c := analyze.Exclusions(ds)
		counts = c
		s.logger.Info("applied exclusions",
			"initial", counts.Initial,
			"after_age", counts.AfterAge,
			"after_outcome", counts.AfterOutcome,
			"after_weight", counts.AfterWeight,
		)
		result = analyze.Run(analytic)
		return nil
	})
	return result, counts
}

// Run executes the whole pipeline for the given cycles and persists the
// harmonized dataset and results when a store is configured.
func (s *Service) Run(ctx context.Context, cycles []domain.Cycle, l loader.Loader) (domain.AnalysisResult, error) {
	var result domain.AnalysisResult
	err := s.observe(ctx, "run", func(ctx context.Context) error {
		ds, err := s.HarmonizeAll(ctx, cycles, l)
		if err != nil {
			return err
		}
		enriched := s.Derive(ctx, ds)
		if s.store != nil {
			if err := s.store.SaveDataset(ctx, enriched); err != nil {
				return fmt.Errorf("persist dataset: %w", err)
			}
		}
		result, _ = s.Analyze(ctx, enriched)
		if s.store != nil {
			if err := s.store.SaveResults(ctx, result); err != nil {
				return fmt.Errorf("persist results: %w", err)
			}
		}
		s.logger.Info("pipeline complete", "eras", len(result.ByEra))
		return nil
	})
	if err != nil {
		s.logger.Error("pipeline failed", "error", err)
		return domain.AnalysisResult{}, err
	}
	return result, nil
}
