// Package archive relocates processed export directories.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
)

// Mover moves processed domain directories under Root, preserving the
// trailing date/domain segments of the source path.
type Mover struct {
	Root string
}

// New constructs a Mover rooted at archiveRoot.
func New(archiveRoot string) *Mover {
	return &Mover{Root: archiveRoot}
}

// Move relocates domainDir to <Root>/<date>/<domain> and returns the
// destination. The relative path is computed from two levels above the
// domain directory, so exports/2024_01_15/example.com keeps its shape
// under the archive root. Parent directories are created as needed.
// Failures are returned for the caller to report; a failed move never
// blocks further processing.
func (m *Mover) Move(domainDir string) (string, error) {
	src := filepath.Clean(domainDir)
	base := filepath.Dir(filepath.Dir(src))
	rel, err := filepath.Rel(base, src)
	if err != nil {
		return "", fmt.Errorf("relativize %s: %w", domainDir, err)
	}
	dest := filepath.Join(m.Root, rel)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create archive parent: %w", err)
	}
	if err := os.Rename(src, dest); err != nil {
		return "", fmt.Errorf("move %s to archive: %w", domainDir, err)
	}
	return dest, nil
}
