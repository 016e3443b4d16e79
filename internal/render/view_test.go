package render

import (
	"sync"
	"testing"
	"time"

	"github.com/oukeidos/panetrans/internal/clock"
)

// fixedMeasurer reports one pixel per byte so heights are easy to predict.
type fixedMeasurer struct{}

func (fixedMeasurer) Height(text string, _ int) int { return len(text) }

func syncDebouncer(f func()) { f() }

func newTestView(c *clock.Fake) *View {
	return NewView(WithClock(c.AfterFunc), WithDebouncer(syncDebouncer), WithMeasurer(fixedMeasurer{}))
}

func TestRenderPlain_NumbersBlocksAndLinksPanels(t *testing.T) {
	var c clock.Fake
	v := newTestView(&c)
	_ = v.RenderPlain(Original, []string{"one", "two", "three"})
	_ = v.RenderPlain(Translated, []string{"eins", "zwei", "drei"})

	st := v.Snapshot()
	if len(st.Original.Blocks) != 3 || len(st.Translated.Blocks) != 3 {
		t.Fatalf("got %d/%d blocks, want 3/3", len(st.Original.Blocks), len(st.Translated.Blocks))
	}
	for i := 0; i < 3; i++ {
		if st.Original.Blocks[i].Paragraph != i+1 || st.Translated.Blocks[i].Paragraph != i+1 {
			t.Fatalf("block %d numbered %d/%d", i, st.Original.Blocks[i].Paragraph, st.Translated.Blocks[i].Paragraph)
		}
	}

	v.Hover(ParagraphKey(2))
	st = v.Snapshot()
	for i := 0; i < 3; i++ {
		want := i == 1
		if st.Original.Blocks[i].Highlighted != want || st.Translated.Blocks[i].Highlighted != want {
			t.Fatalf("block %d highlight = %v/%v, want %v", i+1,
				st.Original.Blocks[i].Highlighted, st.Translated.Blocks[i].Highlighted, want)
		}
	}

	v.Leave()
	if v.Highlighted() != "" {
		t.Fatalf("Leave() should clear highlight")
	}
}

func TestSyncHeights_AfterSettleDelay(t *testing.T) {
	var c clock.Fake
	v := newTestView(&c)
	_ = v.RenderPlain(Original, []string{"short", "a much longer original"})
	_ = v.RenderPlain(Translated, []string{"a longer translation", "tiny", "unpaired"})

	if v.Snapshot().Original.Blocks[0].MinHeight != 0 {
		t.Fatalf("heights synced before the layout settled")
	}
	c.Advance(SettleDelay)

	st := v.Snapshot()
	wantPairs := []int{len("a longer translation"), len("a much longer original")}
	for i, want := range wantPairs {
		if st.Original.Blocks[i].MinHeight != want || st.Translated.Blocks[i].MinHeight != want {
			t.Errorf("pair %d heights = %d/%d, want %d", i+1,
				st.Original.Blocks[i].MinHeight, st.Translated.Blocks[i].MinHeight, want)
		}
	}
	if st.Translated.Blocks[2].MinHeight != 0 {
		t.Errorf("unpaired block should not get a min height")
	}
}

func TestSyncHeights_RendersCoalesce(t *testing.T) {
	var c clock.Fake
	v := newTestView(&c)
	var mu sync.Mutex
	changes := 0
	v.OnChange(func(ch Change) {
		if ch == ChangeLayout {
			mu.Lock()
			changes++
			mu.Unlock()
		}
	})

	_ = v.RenderPlain(Original, []string{"a"})
	_ = v.RenderPlain(Translated, []string{"b"})
	c.Advance(SettleDelay)

	mu.Lock()
	defer mu.Unlock()
	if changes != 1 {
		t.Fatalf("got %d syncs, want 1", changes)
	}
}

func TestClick_ScrollsBothPanelsAndClearsHighlight(t *testing.T) {
	var c clock.Fake
	v := newTestView(&c)
	_ = v.RenderPlain(Original, []string{"one", "two"})
	_ = v.RenderPlain(Translated, []string{"eins"})
	c.Advance(SettleDelay)
	var changes []Change
	v.OnChange(func(ch Change) { changes = append(changes, ch) })

	targets := v.Click(ParagraphKey(1))
	if len(targets) != 2 {
		t.Fatalf("got %d targets, want 2", len(targets))
	}
	for _, tg := range targets {
		if tg.Behavior != "smooth" || tg.Block != "center" || tg.Key != "1" {
			t.Fatalf("unexpected target %+v", tg)
		}
	}
	if got := v.Click(ParagraphKey(2)); len(got) != 1 || got[0].Panel != Original {
		t.Fatalf("paragraph 2 only exists in the original panel, got %+v", got)
	}

	c.Advance(HighlightHold - time.Millisecond)
	if v.Highlighted() != "2" {
		t.Fatalf("highlight cleared early")
	}
	c.Advance(time.Millisecond)
	if v.Highlighted() != "" {
		t.Fatalf("highlight should clear after %s", HighlightHold)
	}
	if len(changes) != 1 || changes[0] != ChangeHighlight {
		t.Fatalf("changes = %v, want one ChangeHighlight", changes)
	}
}

func TestClick_LaterHoverSurvivesClear(t *testing.T) {
	var c clock.Fake
	v := newTestView(&c)
	_ = v.RenderPlain(Original, []string{"one", "two"})
	v.Click("1")
	v.Hover("2")
	c.Advance(HighlightHold)
	if v.Highlighted() != "2" {
		t.Fatalf("clearing a click highlight must not drop a newer hover")
	}
}

func TestResize_Debounced(t *testing.T) {
	var c clock.Fake
	synced := make(chan struct{}, 4)
	v := NewView(WithClock(c.AfterFunc), WithMeasurer(fixedMeasurer{}))
	v.OnChange(func(Change) { synced <- struct{}{} })

	for _, w := range []int{100, 120, 140} {
		v.Resize(w)
	}
	select {
	case <-synced:
	case <-time.After(2 * time.Second):
		t.Fatalf("resize never triggered a height sync")
	}
	select {
	case <-synced:
		t.Fatalf("burst of resizes should sync once")
	case <-time.After(2 * ResizeDebounce):
	}
	if v.Snapshot().Width != 140 {
		t.Fatalf("Width = %d, want 140", v.Snapshot().Width)
	}
}

func TestSetBlockText(t *testing.T) {
	var c clock.Fake
	v := newTestView(&c)
	_ = v.RenderPlain(Translated, []string{"a", "b"})
	if err := v.SetBlockText(Translated, 2, "B"); err != nil {
		t.Fatalf("SetBlockText: %v", err)
	}
	if got := v.Snapshot().Translated.Blocks[1].Text; got != "B" {
		t.Fatalf("text = %q", got)
	}
	if err := v.SetBlockText(Translated, 3, "C"); err == nil {
		t.Fatalf("expected error for missing paragraph")
	}
}

func TestRenderPlain_UnknownPanel(t *testing.T) {
	v := NewView()
	if err := v.RenderPlain("sidebar", nil); err == nil {
		t.Fatalf("expected error for unknown panel")
	}
}
