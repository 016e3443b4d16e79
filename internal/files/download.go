package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oukeidos/panetrans/internal/logger"
)

// DirDownloader stores exported files in a directory, never overwriting an
// existing file.
type DirDownloader struct {
	Dir string
}

// Save writes data under name and returns the path actually used.
func (d DirDownloader) Save(name string, data []byte) (string, error) {
	clean := SanitizeFileName(name)
	if clean == "" {
		return "", fmt.Errorf("download name is empty")
	}
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	target, changed, err := UniquePath(filepath.Join(dir, clean))
	if err != nil {
		return "", fmt.Errorf("failed to resolve download path: %w", err)
	}
	if changed {
		logger.Warn("Download renamed to avoid overwrite", "file", clean, "path", target)
	}
	if err := AtomicWrite(target, data, 0o644); err != nil {
		return "", err
	}
	return target, nil
}

// SanitizeFileName strips directories and characters that are unsafe on
// common filesystems.
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '|', '?', '*':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
}
