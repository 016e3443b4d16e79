package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// maxNumbered bounds the "name (n).ext" candidates tried before falling
// back to a random suffix.
const maxNumbered = 99

// UniquePath returns path if nothing exists there, otherwise the first free
// "name (n).ext" sibling, the way browsers name repeated downloads. The bool
// reports whether the name changed.
func UniquePath(path string) (string, bool, error) {
	if path == "" {
		return "", false, errors.New("path is empty")
	}
	free, err := isFree(path)
	if err != nil || free {
		return path, false, err
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 1; n <= maxNumbered; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		free, err := isFree(candidate)
		if err != nil {
			return "", false, err
		}
		if free {
			return candidate, true, nil
		}
	}
	return fmt.Sprintf("%s (%s)%s", stem, uuid.NewString()[:8], ext), true, nil
}

func isFree(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, os.ErrNotExist):
		return true, nil
	default:
		return false, fmt.Errorf("failed to check %s: %w", path, err)
	}
}
