package session

import (
	"testing"

	"github.com/oukeidos/panetrans/internal/intake"
	"github.com/oukeidos/panetrans/internal/models"
)

func images(names ...string) []intake.File {
	out := make([]intake.File, len(names))
	for i, n := range names {
		out[i] = intake.MemFile(n, nil)
	}
	return out
}

func TestNew(t *testing.T) {
	s := New()
	if s.Mode() != ModeEmpty || s.CurrentFileName != DefaultFileName || s.ImageMode != models.ModeSegment {
		t.Fatalf("unexpected fresh state: %+v", s)
	}
}

func TestLoadDocument_ClearsBatch(t *testing.T) {
	s := New()
	s.AppendImages(images("a.png", "b.png"))
	html := `<p id="p1" class="translatable">Hi</p>`
	s.LoadDocument("report.final.docx", []models.ContentItem{{Text: "Hi", ID: "p1"}}, true, &html)

	if s.PendingFiles != nil {
		t.Fatalf("pending images should be cleared")
	}
	if s.Mode() != ModeDocument {
		t.Fatalf("Mode() = %v", s.Mode())
	}
	if s.CurrentFileName != "report.final" {
		t.Fatalf("CurrentFileName = %q", s.CurrentFileName)
	}
	if !s.HasFormat || s.OriginalHTML == nil || *s.OriginalHTML != html {
		t.Fatalf("formatted state not stored")
	}
}

func TestLoadDocument_FormatWithoutHTMLIsPlain(t *testing.T) {
	s := New()
	s.LoadDocument("a.pdf", nil, true, nil)
	if s.HasFormat {
		t.Fatalf("HasFormat without HTML must be downgraded")
	}
	if s.CurrentContent == nil {
		t.Fatalf("document content should be non-nil even when empty")
	}
}

func TestAppendImages_NeverDrops(t *testing.T) {
	s := New()
	prev := 0
	for _, batch := range [][]intake.File{images("1.png"), images("2.png", "3.png"), nil, images("4.gif")} {
		n := s.AppendImages(batch)
		if n < prev {
			t.Fatalf("pending count decreased from %d to %d", prev, n)
		}
		prev = n
	}
	want := []string{"1.png", "2.png", "3.png", "4.gif"}
	snap := s.Snapshot()
	if len(snap.PendingImages) != len(want) {
		t.Fatalf("PendingImages = %v", snap.PendingImages)
	}
	for i := range want {
		if snap.PendingImages[i] != want[i] {
			t.Fatalf("PendingImages = %v, want %v", snap.PendingImages, want)
		}
	}
}

func TestAppendImages_ClearsDocument(t *testing.T) {
	s := New()
	html := "<p>x</p>"
	s.LoadDocument("a.docx", []models.ContentItem{{Text: "x"}}, true, &html)
	s.SetTranslation([]models.TranslatedItem{{Translation: "y"}}, nil)
	s.AppendImages(images("a.png"))

	if s.CurrentContent != nil || s.TranslatedContent != nil || s.HasFormat || s.OriginalHTML != nil {
		t.Fatalf("document state should be cleared: %+v", s)
	}
	if s.Mode() != ModeImageBatch {
		t.Fatalf("Mode() = %v", s.Mode())
	}
}

func TestRemoveImage(t *testing.T) {
	s := New()
	s.AppendImages(images("1.png", "2.png", "3.png"))
	if err := s.RemoveImage(1); err != nil {
		t.Fatalf("RemoveImage: %v", err)
	}
	snap := s.Snapshot()
	if len(snap.PendingImages) != 2 || snap.PendingImages[0] != "1.png" || snap.PendingImages[1] != "3.png" {
		t.Fatalf("PendingImages = %v", snap.PendingImages)
	}
	if err := s.RemoveImage(5); err == nil {
		t.Fatalf("expected out of range error")
	}
	_ = s.RemoveImage(0)
	_ = s.RemoveImage(0)
	if s.PendingFiles != nil || s.Mode() != ModeEmpty {
		t.Fatalf("batch should be empty, got %v", s.PendingFiles)
	}
}

func TestSetTranslation_FormattedHTMLOnlyWhenFormatted(t *testing.T) {
	s := New()
	s.LoadDocument("a.txt", []models.ContentItem{{Text: "x"}}, false, nil)
	html := "<p>y</p>"
	s.SetTranslation([]models.TranslatedItem{{Translation: "y"}}, &html)
	if s.TranslatedHTML != nil {
		t.Fatalf("plain document must not keep translated HTML")
	}
	if s.TranslatedContent[0].Paragraph != 1 {
		t.Fatalf("paragraph not numbered: %+v", s.TranslatedContent[0])
	}
}

func TestLoadWholeImage(t *testing.T) {
	s := New()
	s.AppendImages(images("1.png", "2.png"))
	s.LoadWholeImage([]models.TranslatedItem{
		{Paragraph: 1, Text: "[Image 1 original]", Translation: "a", SourceImage: 1},
		{Paragraph: 2, Text: "[Image 2 original]", Translation: "b", SourceImage: 2},
	})
	if s.PendingFiles != nil || !s.HasTranslation() || s.CurrentFileName != "2 images" {
		t.Fatalf("unexpected state: %+v", s)
	}
	if s.CurrentContent[1].Paragraph != 2 || s.CurrentContent[1].Text != "[Image 2 original]" {
		t.Fatalf("unexpected content: %+v", s.CurrentContent)
	}
	if !s.WholeImage {
		t.Fatalf("whole-image content not marked")
	}
	s.LoadDocument("a.txt", []models.ContentItem{{Text: "x"}}, false, nil)
	if s.WholeImage {
		t.Fatalf("document load should clear the whole-image mark")
	}
}

func TestSnapshot_IsCopy(t *testing.T) {
	s := New()
	s.AppendImages(images("1.png"))
	s.LoadRecognized([]models.ContentItem{{Text: "[Image 1] a", SourceImage: 1}}, 1)
	if s.PendingFiles != nil || s.Mode() != ModeDocument {
		t.Fatalf("recognized content should replace the batch")
	}
	snap := s.Snapshot()
	snap.Content[0].Text = "changed"
	if s.CurrentContent[0].Text != "[Image 1] a" {
		t.Fatalf("snapshot aliases session content")
	}
	if snap.FileName != "1 images" {
		t.Fatalf("FileName = %q", snap.FileName)
	}
}
