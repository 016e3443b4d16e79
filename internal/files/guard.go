package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LinkError reports an output path that resolves through a link.
type LinkError struct {
	Path string // requested path
	At   string // first linked component
	Kind string // "symlink" or "reparse point"
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("refusing to write %s: %s at %s", e.Path, e.Kind, e.At)
}

// CheckOutputPath refuses exports, pages and log files whose target or any
// existing parent directory is a link. Components that do not exist yet are
// fine; they will be created as plain directories.
func CheckOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("output path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}

	for _, dir := range lineage(abs) {
		info, err := os.Lstat(dir)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w", dir, err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return &LinkError{Path: path, At: dir, Kind: "symlink"}
		}
		reparse, err := isReparsePoint(dir)
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w", dir, err)
		}
		if reparse {
			return &LinkError{Path: path, At: dir, Kind: "reparse point"}
		}
	}
	return nil
}

// lineage lists abs and its ancestors from the top down, without the root.
func lineage(abs string) []string {
	var chain []string
	for p := abs; ; {
		parent := filepath.Dir(p)
		if parent == p {
			break
		}
		chain = append(chain, p)
		p = parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
