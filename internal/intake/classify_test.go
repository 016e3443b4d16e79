package intake

import (
	"errors"
	"testing"
)

func names(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name()
	}
	return out
}

func TestIsImage(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.png", true},
		{"a.JPG", true},
		{"scan.jpeg", true},
		{"anim.gif", true},
		{"old.bmp", true},
		{"new.WebP", true},
		{"doc.pdf", false},
		{"report.docx", false},
		{"png", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsImage(tt.name); got != tt.want {
			t.Errorf("IsImage(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	img1 := MemFile("1.png", nil)
	img2 := MemFile("2.jpg", nil)
	doc := MemFile("paper.pdf", nil)
	doc2 := MemFile("notes.docx", nil)

	tests := []struct {
		name        string
		files       []File
		wantDoc     string
		wantImages  []string
		wantWarning string
		wantErr     error
	}{
		{
			name:    "single document",
			files:   []File{doc},
			wantDoc: "paper.pdf",
		},
		{
			name:       "images only",
			files:      []File{img1, img2},
			wantImages: []string{"1.png", "2.jpg"},
		},
		{
			name:        "document mixed with images is discarded",
			files:       []File{img1, doc, img2},
			wantImages:  []string{"1.png", "2.jpg"},
			wantWarning: "filtered 1 non-image file(s)",
		},
		{
			name:        "several documents",
			files:       []File{doc, doc2},
			wantWarning: "filtered 2 non-image file(s)",
			wantErr:     ErrImagesOnly,
		},
		{
			name:  "empty selection",
			files: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.files)
			if tt.wantDoc == "" && c.Document != nil {
				t.Fatalf("unexpected document %q", c.Document.Name())
			}
			if tt.wantDoc != "" && (c.Document == nil || c.Document.Name() != tt.wantDoc) {
				t.Fatalf("Document = %v, want %q", c.Document, tt.wantDoc)
			}
			got := names(c.Images)
			if len(got) != len(tt.wantImages) {
				t.Fatalf("Images = %v, want %v", got, tt.wantImages)
			}
			for i := range got {
				if got[i] != tt.wantImages[i] {
					t.Fatalf("Images = %v, want %v", got, tt.wantImages)
				}
			}
			if c.Warning != tt.wantWarning {
				t.Fatalf("Warning = %q, want %q", c.Warning, tt.wantWarning)
			}
			if !errors.Is(c.Err, tt.wantErr) || (tt.wantErr == nil && c.Err != nil) {
				t.Fatalf("Err = %v, want %v", c.Err, tt.wantErr)
			}
		})
	}
}

func TestStripExt(t *testing.T) {
	tests := map[string]string{
		"report.pdf":      "report",
		"archive.tar.gz":  "archive.tar",
		"README":          "README",
		".env":            ".env",
		"/tmp/dir/a.docx": "a",
	}
	for in, want := range tests {
		if got := StripExt(in); got != want {
			t.Errorf("StripExt(%q) = %q, want %q", in, got, want)
		}
	}
}
