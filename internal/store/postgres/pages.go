package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/seoaudit/etl/internal/etl"
)

// batchSize caps how many page inserts travel in one round-trip.
const batchSize = 1000

const insertPageSQL = `
INSERT INTO pages (
	crawl_id, url, status_code, indexability, indexability_status,
	title, title_length, meta_description, meta_description_length,
	h1, h1_length, word_count, response_time_ms, size_bytes,
	canonical_link, robots_txt_status, x_robots_tag
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17
) ON CONFLICT (crawl_id, url) DO NOTHING`

// PageStore implements etl.PageLoader on the run session.
type PageStore struct {
	session *Session
}

// NewPageStore constructs a PageStore.
func NewPageStore(session *Session) *PageStore {
	return &PageStore{session: session}
}

// LoadPages bulk-inserts pages in rounds of up to batchSize rows. Rows
// whose (crawl_id, url) already exist are skipped by the database, not
// updated. The returned count is the number of records presented, so a
// re-run over the same export reports the parsed row count even when
// nothing new was stored.
func (p *PageStore) LoadPages(ctx context.Context, pages []etl.Page) (int, error) {
	for start := 0; start < len(pages); start += batchSize {
		end := start + batchSize
		if end > len(pages) {
			end = len(pages)
		}
		batch := &pgx.Batch{}
		for _, page := range pages[start:end] {
			batch.Queue(insertPageSQL,
				page.CrawlID,
				page.URL,
				page.StatusCode,
				page.Indexability,
				page.IndexabilityStatus,
				page.Title,
				page.TitleLength,
				page.MetaDescription,
				page.MetaDescriptionLength,
				page.H1,
				page.H1Length,
				page.WordCount,
				page.ResponseTimeMs,
				page.SizeBytes,
				page.CanonicalLink,
				page.RobotsTxtStatus,
				page.XRobotsTag,
			)
		}
		if err := p.session.SendBatch(ctx, batch); err != nil {
			return 0, fmt.Errorf("insert pages rows %d..%d: %w", start, end, err)
		}
	}
	return len(pages), nil
}
