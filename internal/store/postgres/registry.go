package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/seoaudit/etl/internal/etl"
)

// Registry implements etl.Registry on the run session. Idempotency comes
// from lookup-then-insert inside the run transaction; concurrent loaders
// are out of scope, so there is no locking beyond transaction isolation.
type Registry struct {
	session *Session
	clock   etl.Clock
}

// NewRegistry constructs a Registry.
func NewRegistry(session *Session, clock etl.Clock) *Registry {
	return &Registry{session: session, clock: clock}
}

// GetOrCreateSite returns the site_id for domain, inserting the site on
// first sight. New sites are created active, labeled with the domain when
// no label is given. The label and status are never touched again.
func (r *Registry) GetOrCreateSite(ctx context.Context, domain, label string) (int64, error) {
	var siteID int64
	err := r.session.QueryRowScan(ctx,
		`SELECT site_id FROM sites WHERE domain = $1`,
		[]any{domain}, &siteID)
	if err == nil {
		return siteID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("lookup site %s: %w", domain, err)
	}

	if label == "" {
		label = domain
	}
	err = r.session.QueryRowScan(ctx,
		`INSERT INTO sites (domain, label, status) VALUES ($1, $2, 'active') RETURNING site_id`,
		[]any{domain, label}, &siteID)
	if err != nil {
		return 0, fmt.Errorf("create site %s: %w", domain, err)
	}
	return siteID, nil
}

// GetOrCreateCrawl returns the crawl_id for (siteID, crawlDate), inserting
// on first sight. New crawls are stamped started_at now and created with
// status 'completed': the export only exists because the crawl already
// finished, so there is no in-progress state to track.
func (r *Registry) GetOrCreateCrawl(ctx context.Context, siteID int64, crawlDate time.Time) (int64, error) {
	var crawlID int64
	err := r.session.QueryRowScan(ctx,
		`SELECT crawl_id FROM crawls WHERE site_id = $1 AND crawl_date = $2`,
		[]any{siteID, crawlDate}, &crawlID)
	if err == nil {
		return crawlID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("lookup crawl site=%d date=%s: %w", siteID, crawlDate.Format("2006-01-02"), err)
	}

	err = r.session.QueryRowScan(ctx,
		`INSERT INTO crawls (site_id, crawl_date, started_at, status) VALUES ($1, $2, $3, 'completed') RETURNING crawl_id`,
		[]any{siteID, crawlDate, r.clock.Now()}, &crawlID)
	if err != nil {
		return 0, fmt.Errorf("create crawl site=%d date=%s: %w", siteID, crawlDate.Format("2006-01-02"), err)
	}
	return crawlID, nil
}
