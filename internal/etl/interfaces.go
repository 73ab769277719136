package etl

import (
	"context"
	"time"
)

// Registry resolves site and crawl identities idempotently. Calling either
// method twice with the same key returns the same identifier and performs
// exactly one insert.
type Registry interface {
	GetOrCreateSite(ctx context.Context, domain, label string) (int64, error)
	GetOrCreateCrawl(ctx context.Context, siteID int64, crawlDate time.Time) (int64, error)
}

// PageLoader bulk-inserts page records for one crawl. The returned count is
// the number of records presented, not the number newly stored: rows that
// collide with an existing (crawl_id, url) are silently skipped.
type PageLoader interface {
	LoadPages(ctx context.Context, pages []Page) (int, error)
}

// Summarizer stamps a crawl with its final row count and completion time.
type Summarizer interface {
	CompleteCrawl(ctx context.Context, crawlID int64, totalPages int) error
}

// EventLogger appends audit events best-effort. Implementations swallow
// their own failures; an event that cannot be written must never alter the
// outcome of the operation it documents.
type EventLogger interface {
	LogEvent(ctx context.Context, event LogEvent)
}

// Ingester parses one export file into page records owned by a crawl.
type Ingester interface {
	ParseFile(path string, crawlID int64) ([]Page, error)
}

// Archiver relocates a processed domain directory into the archive tree.
type Archiver interface {
	Move(domainDir string) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
