package intake

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrImagesOnly is returned when a selection contains no images and no
// single document.
var ErrImagesOnly = errors.New("multi-file upload supports images only")

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// IsImage reports whether name has an image extension (case-insensitive).
func IsImage(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// Classification is the routing decision for one selection.
type Classification struct {
	Images   []File
	Others   []File
	Document File   // set when the selection is exactly one non-image file
	Warning  string // set when non-image files were discarded
	Err      error
}

// Classify partitions files into images and non-images and decides the route.
func Classify(files []File) Classification {
	var c Classification
	for _, f := range files {
		if IsImage(f.Name()) {
			c.Images = append(c.Images, f)
		} else {
			c.Others = append(c.Others, f)
		}
	}

	if len(c.Others) == 1 && len(c.Images) == 0 {
		c.Document = c.Others[0]
		return c
	}
	if len(c.Others) > 0 {
		c.Warning = fmt.Sprintf("filtered %d non-image file(s)", len(c.Others))
	}
	if len(c.Images) == 0 && len(files) > 0 {
		c.Err = ErrImagesOnly
	}
	return c
}

// StripExt returns name without its final extension.
func StripExt(name string) string {
	base := filepath.Base(name)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		return strings.TrimSuffix(base, ext)
	}
	return base
}
