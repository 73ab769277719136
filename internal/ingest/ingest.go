// Package ingest parses Screaming Frog "internal_all" CSV exports into
// typed page records.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/seoaudit/etl/internal/etl"
)

// Header names in the export. These are case- and spacing-sensitive; the
// export tooling has been emitting them unchanged for years and the
// mapping must match exactly.
const (
	colAddress            = "Address"
	colStatusCode         = "Status Code"
	colIndexability       = "Indexability"
	colIndexabilityStatus = "Indexability Status"
	colTitle              = "Title 1"
	colTitleLength        = "Title 1 Length"
	colMetaDescription    = "Meta Description 1"
	colMetaDescLength     = "Meta Description 1 Length"
	colH1                 = "H1-1"
	colH1Length           = "H1-1 length"
	colWordCount          = "Word Count"
	colResponseTime       = "Response Time"
	colSizeBytes          = "Size (bytes)"
	colCanonicalLink      = "Canonical Link Element 1"
	colRobotsTxt          = "robots.txt"
	colXRobotsTag         = "X-Robots-Tag 1"
)

// CSVIngester reads one export file into memory. Files are buffered whole;
// exports top out in the low hundreds of thousands of rows, which is fine
// for a nightly batch job.
type CSVIngester struct{}

// NewCSVIngester constructs a CSVIngester.
func NewCSVIngester() *CSVIngester {
	return &CSVIngester{}
}

// ParseFile reads the export at path and returns one Page per data row,
// owned by crawlID. Any read or parse error aborts the whole file; there
// is no partial-row recovery.
func (CSVIngester) ParseFile(path string, crawlID int64) ([]etl.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	pages, err := parse(f, crawlID)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return pages, nil
}

func parse(r io.Reader, crawlID int64) ([]etl.Page, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows happen; missing cells read as empty

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	var pages []etl.Page
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}
		pages = append(pages, etl.Page{
			CrawlID:               crawlID,
			URL:                   field(colAddress),
			StatusCode:            digitsToInt(field(colStatusCode)),
			Indexability:          field(colIndexability),
			IndexabilityStatus:    field(colIndexabilityStatus),
			Title:                 field(colTitle),
			TitleLength:           digitsToInt(field(colTitleLength)),
			MetaDescription:       field(colMetaDescription),
			MetaDescriptionLength: digitsToInt(field(colMetaDescLength)),
			H1:                    field(colH1),
			H1Length:              digitsToInt(field(colH1Length)),
			WordCount:             digitsToInt(field(colWordCount)),
			ResponseTimeMs:        digitsToInt(field(colResponseTime)),
			SizeBytes:             digitsToInt(field(colSizeBytes)),
			CanonicalLink:         field(colCanonicalLink),
			RobotsTxtStatus:       field(colRobotsTxt),
			XRobotsTag:            field(colXRobotsTag),
		})
	}
	return pages, nil
}

// digitsToInt parses s only when it consists entirely of decimal digits.
// Empty, negative, fractional, or otherwise non-numeric values become nil.
// This matches the long-standing loader contract: downstream reports
// distinguish "no value" from zero, so coercion must never invent a zero.
func digitsToInt(s string) *int {
	if s == "" {
		return nil
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
