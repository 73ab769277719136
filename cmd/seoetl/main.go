// Package main wires together the SEO audit ETL binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seoaudit/etl/internal/archive"
	"github.com/seoaudit/etl/internal/clock/system"
	"github.com/seoaudit/etl/internal/config"
	"github.com/seoaudit/etl/internal/credentials"
	"github.com/seoaudit/etl/internal/ingest"
	"github.com/seoaudit/etl/internal/logging"
	"github.com/seoaudit/etl/internal/pipeline"
	"github.com/seoaudit/etl/internal/store/postgres"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	envFile := flag.String("env-file", "", "Optional .env file providing database credentials")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, credentials.EnvResolver{EnvFile: *envFile}, logger); err != nil {
		logger.Error("etl run failed", zap.Error(err))
		stop()
		logger.Sync() //nolint:errcheck // best-effort flush
		os.Exit(1)
	}
	logger.Info("etl run completed")
}

// run executes one full ETL pass. Every precondition failure returns before
// any database work; once the session is open, all writes share its single
// transaction, committed only when the whole walk finishes cleanly.
func run(ctx context.Context, cfg config.Config, resolver credentials.Resolver, logger *zap.Logger) error {
	creds, err := resolver.Resolve(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDatabase, cfg.DBCredentialName)
	if err != nil {
		return fmt.Errorf("resolve credentials: %w", err)
	}

	if _, err := os.Stat(cfg.BaseExportPath); err != nil {
		return fmt.Errorf("export directory not found: %w", err)
	}

	sess, err := postgres.Connect(ctx, creds.DSN())
	if err != nil {
		return err
	}
	defer sess.Close()
	logger.Info("database session established",
		zap.String("host", creds.Host), zap.String("database", creds.Database))

	runID := uuid.NewString()
	runLogger := logger.With(zap.String("run_id", runID))

	clk := system.New()
	events := postgres.NewEventStore(sess, runLogger.Named("events"))
	orch := pipeline.New(
		postgres.NewRegistry(sess, clk),
		ingest.NewCSVIngester(),
		postgres.NewPageStore(sess),
		postgres.NewCrawlSummarizer(sess, clk),
		events,
		archive.New(cfg.ArchivePath),
		pipeline.Config{
			ExportRoot:     cfg.BaseExportPath,
			ArchiveEnabled: cfg.ArchiveProcessedFiles,
			RunID:          runID,
		},
		runLogger.Named("pipeline"),
	)

	if err := orch.Run(ctx); err != nil {
		runLogger.Warn("rolling back run transaction")
		sess.Rollback(ctx)
		return err
	}
	if err := sess.Commit(ctx); err != nil {
		return err
	}
	runLogger.Info("run transaction committed")
	return nil
}
