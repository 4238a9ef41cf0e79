// Command surveycore runs the survey harmonization and prevalence pipeline:
// it loads raw per-cycle component tables from an archive store, harmonizes
// them into the canonical schema, derives the clinical variables, estimates
// weighted prevalence per era and subgroup, and writes the CSV result tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"surveycore/internal/archive/core"
	archivefs "surveycore/internal/archive/fs"
	archivemem "surveycore/internal/archive/memory"
	archives3 "surveycore/internal/archive/s3"
	pipeline "surveycore/internal/core"
	"surveycore/internal/loader"
	persistmem "surveycore/internal/infra/persistence/memory"
	"surveycore/internal/infra/persistence/postgres"
	"surveycore/internal/infra/persistence/sqlite"
	"surveycore/internal/report"
	"surveycore/pkg/domain"
)

// Environment fallbacks for flag defaults.
const (
	envArchiveDriver = "SURVEYCORE_ARCHIVE_DRIVER"
	envArchiveRoot   = "SURVEYCORE_ARCHIVE_ROOT"
	envStoreDriver   = "SURVEYCORE_STORE_DRIVER"
	envStoreDSN      = "SURVEYCORE_STORE_DSN"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	var (
		cyclesFlag    = flag.String("cycles", "all", "comma-separated cycle IDs, or \"all\"")
		archiveDriver = flag.String("archive", envOr(envArchiveDriver, string(core.DriverFilesystem)), "archive driver: fs, s3, or memory")
		archiveRoot   = flag.String("archive-root", envOr(envArchiveRoot, "data"), "root directory for the fs archive driver")
		storeDriver   = flag.String("store", envOr(envStoreDriver, "sqlite"), "snapshot store driver: memory, sqlite, or postgres")
		storeDSN      = flag.String("store-dsn", envOr(envStoreDSN, "surveycore.db"), "SQLite path or Postgres DSN for the snapshot store")
		outDir        = flag.String("out", "results", "directory for CSV result tables")
		metricsAddr   = flag.String("metrics-listen", "", "address for the Prometheus metrics endpoint (empty disables)")
		traceOut      = flag.String("trace-out", "", "file for JSON trace spans (empty disables)")
		parallelism   = flag.Int("parallelism", 4, "maximum cycles harmonized concurrently")
		verbose       = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(context.Background(), logger, runConfig{
		cycles:        *cyclesFlag,
		archiveDriver: *archiveDriver,
		archiveRoot:   *archiveRoot,
		storeDriver:   *storeDriver,
		storeDSN:      *storeDSN,
		outDir:        *outDir,
		metricsAddr:   *metricsAddr,
		traceOut:      *traceOut,
		parallelism:   *parallelism,
	}); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

type runConfig struct {
	cycles        string
	archiveDriver string
	archiveRoot   string
	storeDriver   string
	storeDSN      string
	outDir        string
	metricsAddr   string
	traceOut      string
	parallelism   int
}

func run(ctx context.Context, logger *slog.Logger, cfg runConfig) error {
	cycles, err := selectCycles(cfg.cycles)
	if err != nil {
		return err
	}

	archive, err := openArchive(ctx, cfg)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	opts := []pipeline.Option{
		pipeline.WithLogger(pipeline.NewSlogLogger(logger)),
		pipeline.WithParallelism(cfg.parallelism),
	}
	if cfg.metricsAddr != "" {
		metrics := pipeline.NewPrometheusMetricsRecorder()
		opts = append(opts, pipeline.WithMetrics(metrics))
		go serveMetrics(logger, cfg.metricsAddr, metrics)
	} else {
		opts = append(opts, pipeline.WithMetrics(pipeline.NewExpvarMetricsRecorder("surveycore")))
	}
	if cfg.traceOut != "" {
		f, err := os.Create(cfg.traceOut)
		if err != nil {
			return fmt.Errorf("create trace output: %w", err)
		}
		defer func() { _ = f.Close() }()
		opts = append(opts, pipeline.WithTracer(pipeline.NewJSONTracer(f)))
	}

	svc := pipeline.NewService(store, opts...)
	result, err := svc.Run(ctx, cycles, loader.New(archive))
	if err != nil {
		return err
	}
	if err := report.WriteAll(cfg.outDir, result); err != nil {
		return err
	}
	logger.Info("wrote result tables", "dir", cfg.outDir, "eras", len(result.ByEra))
	return nil
}

func selectCycles(selector string) ([]domain.Cycle, error) {
	if selector == "" || selector == "all" {
		return domain.AllCycles(), nil
	}
	known := make(map[string]domain.Cycle)
	for _, c := range domain.AllCycles() {
		known[c.ID] = c
	}
	var cycles []domain.Cycle
	for _, id := range strings.Split(selector, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		c, ok := known[id]
		if !ok {
			return nil, fmt.Errorf("unknown cycle %q", id)
		}
		cycles = append(cycles, c)
	}
	if len(cycles) == 0 {
		return nil, fmt.Errorf("no cycles selected from %q", selector)
	}
	return cycles, nil
}

func openArchive(ctx context.Context, cfg runConfig) (core.Store, error) {
	switch core.Driver(cfg.archiveDriver) {
	case core.DriverFilesystem:
		return archivefs.New(cfg.archiveRoot)
	case core.DriverS3:
		return archives3.OpenFromEnv(ctx)
	case core.DriverMemory:
		return archivemem.New(), nil
	default:
		return nil, fmt.Errorf("unknown archive driver %q", cfg.archiveDriver)
	}
}

func openStore(ctx context.Context, cfg runConfig) (domain.PersistentStore, error) {
	switch cfg.storeDriver {
	case "memory":
		return persistmem.NewStore(), nil
	case "sqlite":
		return sqlite.NewStore(cfg.storeDSN)
	case "postgres":
		return postgres.NewStore(ctx, cfg.storeDSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.storeDriver)
	}
}

func serveMetrics(logger *slog.Logger, addr string, metrics *pipeline.PrometheusMetricsRecorder) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server stopped", "error", err)
	}
}
