package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/oukeidos/panetrans/internal/clock"
	"github.com/oukeidos/panetrans/internal/intake"
	"github.com/oukeidos/panetrans/internal/status"
)

func TestPage_EscapesPlainText(t *testing.T) {
	var c clock.Fake
	v := newTestView(&c)
	_ = v.RenderPlain(Original, []string{`<script>alert("x")</script>`})

	var buf bytes.Buffer
	if err := v.Page(&buf, PageState{Button: Button{Enabled: true, Label: "Translate"}}); err != nil {
		t.Fatalf("Page: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, `<script>alert`) {
		t.Fatalf("text was injected unescaped")
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Fatalf("escaped text missing:\n%s", out)
	}
}

func TestPage_InjectsFormattedMarkup(t *testing.T) {
	var c clock.Fake
	v := newTestView(&c)
	_ = v.RenderFormatted(Translated, `<p id="t1" class="translatable">Hallo</p>`)

	var buf bytes.Buffer
	if err := v.Page(&buf, PageState{}); err != nil {
		t.Fatalf("Page: %v", err)
	}
	if !strings.Contains(buf.String(), `<div class="document-preview"><p id="t1" class="translatable">Hallo</p></div>`) {
		t.Fatalf("formatted markup not injected:\n%s", buf.String())
	}
}

func TestPage_Chrome(t *testing.T) {
	var c clock.Fake
	v := newTestView(&c)
	_ = v.RenderPlain(Original, []string{"a"})
	_ = v.RenderPlain(Translated, []string{"b"})
	c.Advance(SettleDelay)

	var buf bytes.Buffer
	err := v.Page(&buf, PageState{
		FileLabel:     "2 images selected",
		Status:        status.Message{Text: "added 1 image(s), 2 total", Kind: status.KindSuccess, Visible: true},
		Previews:      []intake.Preview{{Index: 1, Caption: "Image 1"}, {Index: 2, Caption: "Image 2"}},
		Button:        Button{Enabled: false, Label: "Translating..."},
		ExportVisible: true,
		ModePrompt:    true,
	})
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`class="status-message status-success"`,
		`data-action="remove_image" data-index="2"`,
		`id="translateBtn" data-action="translate" disabled`,
		`id="exportActions"`,
		`id="translateModeModal"`,
		`data-paragraph="1"`,
		`min-height:`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestPage_ScriptUsesTemplateHighlightClass(t *testing.T) {
	var c clock.Fake
	v := newTestView(&c)
	_ = v.RenderPlain(Original, []string{"one"})
	v.Hover(ParagraphKey(1))

	var buf bytes.Buffer
	if err := v.Page(&buf, PageState{}); err != nil {
		t.Fatalf("Page: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `class="text-item highlighted"`) {
		t.Fatalf("hovered block not marked:\n%s", out)
	}
	if !strings.Contains(out, `classList.toggle('highlighted', on)`) {
		t.Fatalf("page script toggles a different class than the template")
	}
	if strings.Contains(out, `toggle('highlight',`) {
		t.Fatalf("stale highlight class in page script")
	}
}
