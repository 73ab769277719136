// Package etl defines core types shared across the ingestion pipeline.
package etl

// Level classifies an audit log event.
type Level string

// Event levels persisted in etl_logs.
const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

// Page holds one URL's metrics from a crawl export. Numeric fields are
// pointers because the export leaves them blank for non-HTML resources;
// a nil value is stored as SQL NULL, never zero.
type Page struct {
	CrawlID               int64
	URL                   string
	StatusCode            *int
	Indexability          string
	IndexabilityStatus    string
	Title                 string
	TitleLength           *int
	MetaDescription       string
	MetaDescriptionLength *int
	H1                    string
	H1Length              *int
	WordCount             *int
	ResponseTimeMs        *int
	SizeBytes             *int
	CanonicalLink         string
	RobotsTxtStatus       string
	XRobotsTag            string
}

// LogEvent is one append-only row in etl_logs. CrawlID and SiteID are
// pointers so events raised before identity resolution can be recorded
// without a parent row.
type LogEvent struct {
	CrawlID  *int64
	SiteID   *int64
	Level    Level
	Message  string
	FilePath string
}
