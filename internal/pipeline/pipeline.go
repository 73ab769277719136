// Package pipeline walks the export tree and drives ingestion.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/seoaudit/etl/internal/etl"
)

// dateDirPattern matches the fixed-width YYYY_MM_DD directory names the
// export tooling writes. Anything else under the export root is ignored.
var dateDirPattern = regexp.MustCompile(`^\d{4}_\d{2}_\d{2}$`)

const dateDirLayout = "2006_01_02"

// Config controls a pipeline run.
type Config struct {
	ExportRoot     string
	ArchiveEnabled bool
	RunID          string
}

// Orchestrator sequences registry, ingest, load, summary, event and
// archive steps for every domain directory under the export root. All
// database work happens through the single run session owned by the
// caller; the orchestrator never commits or rolls back itself.
type Orchestrator struct {
	registry   etl.Registry
	ingester   etl.Ingester
	loader     etl.PageLoader
	summarizer etl.Summarizer
	events     etl.EventLogger
	archiver   etl.Archiver
	cfg        Config
	logger     *zap.Logger
}

// New constructs an Orchestrator.
func New(
	registry etl.Registry,
	ingester etl.Ingester,
	loader etl.PageLoader,
	summarizer etl.Summarizer,
	events etl.EventLogger,
	archiver etl.Archiver,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		registry:   registry,
		ingester:   ingester,
		loader:     loader,
		summarizer: summarizer,
		events:     events,
		archiver:   archiver,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run processes every date directory in ascending lexical order and every
// domain directory within it, in directory listing order. Failures inside
// one domain are recorded and skipped; only fatal (session-dead) errors
// escape, which makes the caller roll back the whole run.
func (o *Orchestrator) Run(ctx context.Context) error {
	entries, err := os.ReadDir(o.cfg.ExportRoot)
	if err != nil {
		return fmt.Errorf("read export root: %w", err)
	}

	var dateNames []string
	for _, entry := range entries {
		if entry.IsDir() && dateDirPattern.MatchString(entry.Name()) {
			dateNames = append(dateNames, entry.Name())
		}
	}
	sort.Strings(dateNames)

	if len(dateNames) == 0 {
		o.logger.Warn("no date directories found in export path",
			zap.String("export_root", o.cfg.ExportRoot))
		return nil
	}

	o.logger.Info("etl run started",
		zap.String("run_id", o.cfg.RunID), zap.Int("date_dirs", len(dateNames)))

	for _, dateName := range dateNames {
		crawlDate, err := time.Parse(dateDirLayout, dateName)
		if err != nil {
			// Pattern-matched but not a calendar date, e.g. 2024_13_40.
			o.logger.Warn("skipping directory with invalid date",
				zap.String("dir", dateName), zap.Error(err))
			continue
		}
		o.logger.Info("processing crawl date",
			zap.String("crawl_date", crawlDate.Format("2006-01-02")))

		dateDir := filepath.Join(o.cfg.ExportRoot, dateName)
		domainEntries, err := os.ReadDir(dateDir)
		if err != nil {
			return fmt.Errorf("read date directory %s: %w", dateDir, err)
		}

		for _, domainEntry := range domainEntries {
			if !domainEntry.IsDir() {
				continue
			}
			domainDir := filepath.Join(dateDir, domainEntry.Name())
			if err := o.processDomain(ctx, crawlDate, domainDir); err != nil {
				if etl.IsFatal(err) {
					return err
				}
				msg := fmt.Sprintf("Failed to process %s: %v", domainEntry.Name(), err)
				o.logger.Error("domain processing failed",
					zap.String("domain", domainEntry.Name()), zap.Error(err))
				o.events.LogEvent(ctx, etl.LogEvent{
					Level:    etl.LevelError,
					Message:  msg,
					FilePath: domainDir,
				})
			}
		}
	}

	o.logger.Info("etl run finished", zap.String("run_id", o.cfg.RunID))
	return nil
}

// processDomain ingests one domain directory for one crawl date. A nil
// return means the domain is done, including the "no export file" case,
// which is recorded as a warning rather than an error.
func (o *Orchestrator) processDomain(ctx context.Context, crawlDate time.Time, domainDir string) error {
	domain := filepath.Base(domainDir)
	logger := o.logger.With(zap.String("domain", domain))
	logger.Info("processing domain")

	siteID, err := o.registry.GetOrCreateSite(ctx, domain, "")
	if err != nil {
		return err
	}
	crawlID, err := o.registry.GetOrCreateCrawl(ctx, siteID, crawlDate)
	if err != nil {
		return err
	}

	matches, err := filepath.Glob(filepath.Join(domainDir, "*internal_all*.csv"))
	if err != nil {
		return fmt.Errorf("glob exports in %s: %w", domainDir, err)
	}
	if len(matches) == 0 {
		msg := fmt.Sprintf("No internal_all.csv found for %s", domain)
		logger.Warn(msg)
		o.events.LogEvent(ctx, etl.LogEvent{
			CrawlID:  &crawlID,
			SiteID:   &siteID,
			Level:    etl.LevelWarning,
			Message:  msg,
			FilePath: domainDir,
		})
		return nil
	}
	csvPath := matches[0]

	pages, err := o.ingester.ParseFile(csvPath, crawlID)
	if err != nil {
		return err
	}
	totalPages, err := o.loader.LoadPages(ctx, pages)
	if err != nil {
		return err
	}
	if err := o.summarizer.CompleteCrawl(ctx, crawlID, totalPages); err != nil {
		return err
	}

	logger.Info("loaded pages", zap.Int("total_pages", totalPages))
	o.events.LogEvent(ctx, etl.LogEvent{
		CrawlID:  &crawlID,
		SiteID:   &siteID,
		Level:    etl.LevelInfo,
		Message:  fmt.Sprintf("Successfully processed %d pages", totalPages),
		FilePath: csvPath,
	})

	if o.cfg.ArchiveEnabled {
		dest, err := o.archiver.Move(domainDir)
		if err != nil {
			logger.Warn("failed to archive processed files", zap.Error(err))
		} else {
			logger.Info("archived processed files", zap.String("dest", dest))
		}
	}
	return nil
}
