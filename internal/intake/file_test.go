package intake

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestReadBase64_NoDataURLPrefix(t *testing.T) {
	data := pngBytes(t, 2, 2)
	got, err := ReadBase64(MemFile("a.png", data))
	if err != nil {
		t.Fatalf("ReadBase64: %v", err)
	}
	if strings.HasPrefix(got, "data:") || strings.Contains(got, ",") {
		t.Fatalf("payload carries a data URL prefix: %q", got[:20])
	}
	decoded, err := base64.StdEncoding.DecodeString(got)
	if err != nil || !bytes.Equal(decoded, data) {
		t.Fatalf("payload does not round trip: %v", err)
	}
}

func TestLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.png")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f := LocalFile(path)
	if f.Name() != "scan.png" {
		t.Fatalf("Name() = %q", f.Name())
	}
	data, err := ReadAll(f)
	if err != nil || string(data) != "x" {
		t.Fatalf("ReadAll = (%q, %v)", data, err)
	}
	if _, err := ReadAll(LocalFile(filepath.Join(dir, "missing.png"))); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestReadAll_TooLarge(t *testing.T) {
	big := make([]byte, MaxFileBytes+1)
	if _, err := ReadAll(MemFile("big.png", big)); err == nil {
		t.Fatalf("expected size limit error")
	}
}

func TestDescribeImages(t *testing.T) {
	files := []File{
		MemFile("first.png", pngBytes(t, 4, 3)),
		MemFile("broken.jpg", []byte("not an image")),
		MemFile("third.png", pngBytes(t, 1, 1)),
	}
	previews := DescribeImages(files)
	if len(previews) != 3 {
		t.Fatalf("got %d previews, want 3", len(previews))
	}
	for i, p := range previews {
		if p.Index != i+1 {
			t.Errorf("previews[%d].Index = %d", i, p.Index)
		}
	}
	if previews[0].Width != 4 || previews[0].Height != 3 || previews[0].Format != "png" {
		t.Errorf("unexpected first preview: %+v", previews[0])
	}
	if previews[1].Width != 0 || previews[1].Caption != "Image 2" {
		t.Errorf("unexpected broken preview: %+v", previews[1])
	}
}

func TestDetectContentType(t *testing.T) {
	if got := DetectContentType(pngBytes(t, 1, 1)); got != "image/png" {
		t.Fatalf("DetectContentType(png) = %q", got)
	}
}
