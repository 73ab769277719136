package postgres

import (
	"context"
	"fmt"

	"github.com/seoaudit/etl/internal/etl"
)

// CrawlSummarizer implements etl.Summarizer on the run session.
type CrawlSummarizer struct {
	session *Session
	clock   etl.Clock
}

// NewCrawlSummarizer constructs a CrawlSummarizer.
func NewCrawlSummarizer(session *Session, clock etl.Clock) *CrawlSummarizer {
	return &CrawlSummarizer{session: session, clock: clock}
}

// CompleteCrawl overwrites total_pages and stamps completed_at. It runs
// once per processed domain directory, after the page load for that crawl.
func (c *CrawlSummarizer) CompleteCrawl(ctx context.Context, crawlID int64, totalPages int) error {
	err := c.session.Exec(ctx,
		`UPDATE crawls SET total_pages = $1, completed_at = $2 WHERE crawl_id = $3`,
		totalPages, c.clock.Now(), crawlID)
	if err != nil {
		return fmt.Errorf("update crawl %d summary: %w", crawlID, err)
	}
	return nil
}
