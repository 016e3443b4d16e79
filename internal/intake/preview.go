package intake

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Preview describes one thumbnail in the pending image strip.
type Preview struct {
	Index   int // 1-based
	Name    string
	Width   int
	Height  int
	Format  string
	Caption string
}

// DescribeImages builds the preview strip, numbered 1..N in order. Files that
// cannot be read or decoded still get an entry, without dimensions.
func DescribeImages(files []File) []Preview {
	out := make([]Preview, len(files))
	for i, f := range files {
		p := Preview{
			Index:   i + 1,
			Name:    f.Name(),
			Caption: fmt.Sprintf("Image %d", i+1),
		}
		if data, err := ReadAll(f); err == nil {
			if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
				p.Width, p.Height, p.Format = cfg.Width, cfg.Height, format
			}
		}
		out[i] = p
	}
	return out
}

// DetectContentType sniffs data for the multipart part header.
func DetectContentType(data []byte) string {
	return mimetype.Detect(data).String()
}
