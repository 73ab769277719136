package postgres

import (
	"context"

	"go.uber.org/zap"

	"github.com/seoaudit/etl/internal/etl"
)

// EventStore implements etl.EventLogger on the run session. Appends are
// best-effort: a failure is logged and discarded, never returned, so an
// event that cannot be written cannot mask the outcome it documents.
type EventStore struct {
	session *Session
	logger  *zap.Logger
}

// NewEventStore constructs an EventStore.
func NewEventStore(session *Session, logger *zap.Logger) *EventStore {
	return &EventStore{session: session, logger: logger}
}

// LogEvent appends one etl_logs row. created_at defaults in the schema.
func (e *EventStore) LogEvent(ctx context.Context, event etl.LogEvent) {
	err := e.session.Exec(ctx,
		`INSERT INTO etl_logs (crawl_id, site_id, log_level, message, file_path) VALUES ($1, $2, $3, $4, $5)`,
		event.CrawlID, event.SiteID, string(event.Level), event.Message, nullableString(event.FilePath))
	if err != nil {
		e.logger.Warn("failed to record etl event",
			zap.String("level", string(event.Level)),
			zap.String("message", event.Message),
			zap.Error(err))
	}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
