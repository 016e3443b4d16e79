package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestContentItem_PreservesUnknownFields(t *testing.T) {
	in := `{"text":"Hello","id":"para-3","tag":"p","index":3,"is_table":false,"row":null}`
	var item ContentItem
	if err := json.Unmarshal([]byte(in), &item); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if item.Text != "Hello" || item.ID != "para-3" {
		t.Fatalf("unexpected item: %+v", item)
	}
	if _, ok := item.Extra["tag"]; !ok {
		t.Fatalf("expected tag in Extra, got %v", item.Extra)
	}

	out, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal round trip: %v", err)
	}
	for _, key := range []string{"text", "id", "tag", "index", "is_table", "row"} {
		if _, ok := back[key]; !ok {
			t.Errorf("round trip dropped %q: %s", key, out)
		}
	}
	if _, ok := back["source_image"]; ok {
		t.Errorf("zero source_image should be omitted: %s", out)
	}
}

func TestContentItem_SourceImageEncoded(t *testing.T) {
	out, err := json.Marshal(ContentItem{Text: "[Image 2] hi", SourceImage: 2})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(out), `"source_image":2`) {
		t.Fatalf("missing source_image: %s", out)
	}
}

func TestContentItem_NumericID(t *testing.T) {
	var item ContentItem
	if err := json.Unmarshal([]byte(`{"text":"x","id":7}`), &item); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if item.ID != "7" {
		t.Fatalf("ID = %q, want 7", item.ID)
	}
}

func TestTranslatedItem_ExtraDoesNotShadowKnownFields(t *testing.T) {
	item := TranslatedItem{
		Paragraph:   1,
		Text:        "a",
		Translation: "b",
		Extra:       map[string]json.RawMessage{"translation": json.RawMessage(`"stale"`), "tag": json.RawMessage(`"h1"`)},
	}
	out, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back TranslatedItem
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Translation != "b" {
		t.Fatalf("Translation = %q, want b", back.Translation)
	}
	if string(back.Extra["tag"]) != `"h1"` {
		t.Fatalf("tag lost: %v", back.Extra)
	}
}

func TestNumberTranslations(t *testing.T) {
	items := []TranslatedItem{{Translation: "a"}, {Paragraph: 9, Translation: "b"}, {Translation: "c"}}
	NumberTranslations(items)
	want := []int{1, 9, 3}
	for i, w := range want {
		if items[i].Paragraph != w {
			t.Errorf("items[%d].Paragraph = %d, want %d", i, items[i].Paragraph, w)
		}
	}
}

func TestParseImageMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ImageMode
		wantErr bool
	}{
		{"segment", ModeSegment, false},
		{" WHOLE ", ModeWhole, false},
		{"tile", "", true},
	}
	for _, tt := range tests {
		got, err := ParseImageMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseImageMode(%q) = (%q, %v)", tt.in, got, err)
		}
	}
}

func TestParseExportFormat(t *testing.T) {
	f, err := ParseExportFormat("DOCX")
	if err != nil || f != FormatDOCX || f.Extension() != "docx" || f.Label() != "Word" {
		t.Fatalf("ParseExportFormat(DOCX) = (%q, %v)", f, err)
	}
	if _, err := ParseExportFormat("pdf"); err == nil {
		t.Fatalf("expected error for pdf")
	}
}

func TestCloneContent_Independent(t *testing.T) {
	src := []ContentItem{{Text: "a", Extra: map[string]json.RawMessage{"tag": json.RawMessage(`"p"`)}}}
	dst := CloneContent(src)
	dst[0].Text = "b"
	dst[0].Extra["tag"] = json.RawMessage(`"h1"`)
	if src[0].Text != "a" || string(src[0].Extra["tag"]) != `"p"` {
		t.Fatalf("clone shares state with source: %+v", src[0])
	}
	if CloneContent(nil) != nil {
		t.Fatalf("CloneContent(nil) should stay nil")
	}
}
