// Package render builds the dual-pane original/translated view. It keeps a
// model of both panels (plain numbered blocks or backend-supplied formatted
// HTML), the hover/click linkage between them and the pairwise height
// equalization, and serializes the result as HTML or terminal columns.
package render

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/bep/debounce"

	"github.com/oukeidos/panetrans/internal/clock"
	"github.com/oukeidos/panetrans/internal/logger"
)

const (
	// HighlightHold is how long a click highlight stays before clearing.
	HighlightHold = 2 * time.Second
	// SettleDelay postpones height sync after a render.
	SettleDelay = 50 * time.Millisecond
	// ResizeDebounce coalesces resize events before re-syncing heights.
	ResizeDebounce = 200 * time.Millisecond
	// DefaultWidth is the assumed viewport width in character cells.
	DefaultWidth = 160
)

type PanelID string

const (
	Original   PanelID = "original"
	Translated PanelID = "translated"
)

// Label is the caption shown on every block of the panel.
func (p PanelID) Label() string {
	if p == Translated {
		return "Translation"
	}
	return "Original"
}

func (p PanelID) valid() bool {
	return p == Original || p == Translated
}

// ParagraphKey is the linkage key of a plain block.
func ParagraphKey(n int) string {
	return strconv.Itoa(n)
}

// Block is one numbered item in a plain panel.
type Block struct {
	Paragraph   int    `json:"paragraph"`
	Text        string `json:"text"`
	Highlighted bool   `json:"highlighted"`
	MinHeight   int    `json:"min_height"`
}

// ScrollTarget asks a panel to bring an item into view.
type ScrollTarget struct {
	Panel    PanelID `json:"panel"`
	Key      string  `json:"key"`
	Behavior string  `json:"behavior"`
	Block    string  `json:"block"`
}

type panel struct {
	id     PanelID
	blocks []Block
	doc    *formattedDoc
}

func (p *panel) has(key string) bool {
	if p.doc != nil {
		return p.doc.has(key)
	}
	for _, b := range p.blocks {
		if ParagraphKey(b.Paragraph) == key {
			return true
		}
	}
	return false
}

// View is the two-panel display. All methods are safe for concurrent use;
// timer callbacks run on their own goroutines.
type View struct {
	mu         sync.Mutex
	panels     map[PanelID]*panel
	highlight  string
	width      int
	measurer   Measurer
	afterFunc  clock.AfterFunc
	debounced  func(func())
	stopSettle func() bool
	stopClear  func() bool
	onChange   func(Change)
}

// Option configures a View.
type Option func(*View)

// WithClock replaces the timer used for settle and highlight delays.
func WithClock(afterFunc clock.AfterFunc) Option {
	return func(v *View) { v.afterFunc = afterFunc }
}

// WithDebouncer replaces the resize debouncer.
func WithDebouncer(d func(func())) Option {
	return func(v *View) { v.debounced = d }
}

// WithMeasurer replaces the block height estimator.
func WithMeasurer(m Measurer) Option {
	return func(v *View) { v.measurer = m }
}

// NewView returns an empty view.
func NewView(opts ...Option) *View {
	v := &View{
		panels: map[PanelID]*panel{
			Original:   {id: Original},
			Translated: {id: Translated},
		},
		width:     DefaultWidth,
		measurer:  DefaultMeasurer(),
		afterFunc: clock.Real,
		debounced: debounce.New(ResizeDebounce),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Change tells an OnChange callback what a timer-driven update touched.
type Change int

const (
	// ChangeLayout means block heights were re-synced.
	ChangeLayout Change = iota
	// ChangeHighlight means a click highlight expired.
	ChangeHighlight
)

// OnChange registers a callback fired after timer-driven changes.
func (v *View) OnChange(fn func(Change)) {
	v.mu.Lock()
	v.onChange = fn
	v.mu.Unlock()
}

func (v *View) notify(ch Change) {
	v.mu.Lock()
	fn := v.onChange
	v.mu.Unlock()
	if fn != nil {
		fn(ch)
	}
}

// RenderPlain replaces a panel with one block per text, numbered 1..N.
func (v *View) RenderPlain(id PanelID, texts []string) error {
	if !id.valid() {
		return fmt.Errorf("unknown panel %q", id)
	}
	blocks := make([]Block, len(texts))
	for i, t := range texts {
		blocks[i] = Block{Paragraph: i + 1, Text: t}
	}

	v.mu.Lock()
	p := v.panels[id]
	p.blocks = blocks
	p.doc = nil
	v.scheduleSettleLocked()
	v.mu.Unlock()
	return nil
}

// RenderFormatted injects backend HTML into a panel and indexes its
// translatable elements by id.
func (v *View) RenderFormatted(id PanelID, src string) error {
	if !id.valid() {
		return fmt.Errorf("unknown panel %q", id)
	}
	doc, err := parseFormatted(src)
	if err != nil {
		return err
	}

	v.mu.Lock()
	p := v.panels[id]
	p.blocks = nil
	p.doc = doc
	v.scheduleSettleLocked()
	v.mu.Unlock()
	return nil
}

// Clear empties a panel.
func (v *View) Clear(id PanelID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if p, ok := v.panels[id]; ok {
		p.blocks = nil
		p.doc = nil
	}
}

// Reset empties both panels and drops any highlight.
func (v *View) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, p := range v.panels {
		p.blocks = nil
		p.doc = nil
	}
	v.highlight = ""
}

// SetBlockText replaces the text of plain block n.
func (v *View) SetBlockText(id PanelID, n int, text string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	p, ok := v.panels[id]
	if !ok {
		return fmt.Errorf("unknown panel %q", id)
	}
	if n < 1 || n > len(p.blocks) {
		return fmt.Errorf("paragraph %d not in %s panel", n, id)
	}
	p.blocks[n-1].Text = text
	v.scheduleSettleLocked()
	return nil
}

// SetElementText replaces the content of a formatted element.
func (v *View) SetElementText(id PanelID, elementID, text string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	p, ok := v.panels[id]
	if !ok || p.doc == nil {
		return fmt.Errorf("%s panel is not formatted", id)
	}
	return p.doc.setText(elementID, text)
}

// IsFormatted reports whether a panel holds backend HTML.
func (v *View) IsFormatted(id PanelID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	p, ok := v.panels[id]
	return ok && p.doc != nil
}

// Hover highlights the item sharing key in both panels.
func (v *View) Hover(key string) {
	v.mu.Lock()
	v.highlight = key
	v.mu.Unlock()
}

// Leave clears any highlight.
func (v *View) Leave() {
	v.mu.Lock()
	v.highlight = ""
	v.mu.Unlock()
}

// Highlighted returns the current highlight key.
func (v *View) Highlighted() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.highlight
}

// Click scrolls both panels to key and highlights it for HighlightHold.
func (v *View) Click(key string) []ScrollTarget {
	v.mu.Lock()
	defer v.mu.Unlock()

	var targets []ScrollTarget
	for _, id := range []PanelID{Original, Translated} {
		if v.panels[id].has(key) {
			targets = append(targets, ScrollTarget{Panel: id, Key: key, Behavior: "smooth", Block: "center"})
		}
	}

	v.highlight = key
	if v.stopClear != nil {
		v.stopClear()
	}
	v.stopClear = v.afterFunc(HighlightHold, func() {
		v.mu.Lock()
		cleared := v.highlight == key
		if cleared {
			v.highlight = ""
		}
		v.mu.Unlock()
		if cleared {
			v.notify(ChangeHighlight)
		}
	})
	return targets
}

// Resize records a new viewport width and re-syncs heights once resizing
// settles.
func (v *View) Resize(width int) {
	if width <= 0 {
		return
	}
	v.mu.Lock()
	v.width = width
	d := v.debounced
	v.mu.Unlock()

	d(func() {
		v.SyncHeights()
		v.notify(ChangeLayout)
	})
}

func (v *View) scheduleSettleLocked() {
	if v.stopSettle != nil {
		v.stopSettle()
	}
	v.stopSettle = v.afterFunc(SettleDelay, func() {
		v.SyncHeights()
		v.notify(ChangeLayout)
	})
}

// SyncHeights gives each pair of plain blocks with the same paragraph number
// the height of the taller one. Unpaired blocks are reset.
func (v *View) SyncHeights() {
	v.mu.Lock()
	defer v.mu.Unlock()

	orig, trans := v.panels[Original], v.panels[Translated]
	for i := range orig.blocks {
		orig.blocks[i].MinHeight = 0
	}
	for i := range trans.blocks {
		trans.blocks[i].MinHeight = 0
	}

	cols := v.panelColumns()
	byParagraph := make(map[int]int, len(trans.blocks))
	for i, b := range trans.blocks {
		byParagraph[b.Paragraph] = i
	}
	for i := range orig.blocks {
		j, ok := byParagraph[orig.blocks[i].Paragraph]
		if !ok {
			continue
		}
		h := max(
			v.measurer.Height(orig.blocks[i].Text, cols),
			v.measurer.Height(trans.blocks[j].Text, cols),
		)
		orig.blocks[i].MinHeight = h
		trans.blocks[j].MinHeight = h
	}
	logger.Debug("Heights synced", "pairs", min(len(orig.blocks), len(trans.blocks)), "columns", cols)
}

func (v *View) panelColumns() int {
	return max(v.width/2-4, 10)
}

// TranslatedHTML returns the formatted translated panel's markup without
// transient highlight styling. ok is false in plain mode.
func (v *View) TranslatedHTML() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	p := v.panels[Translated]
	if p.doc == nil {
		return "", false
	}
	out, err := p.doc.render("")
	if err != nil {
		logger.Warn("Failed to serialize translated panel", "error", err)
		return "", false
	}
	return out, true
}

// PanelState is a read-only copy of one panel.
type PanelState struct {
	ID        PanelID  `json:"id"`
	Label     string   `json:"label"`
	Formatted bool     `json:"formatted"`
	Blocks    []Block  `json:"blocks,omitempty"`
	Markup    string   `json:"markup,omitempty"`
	Keys      []string `json:"keys"`
}

// Empty reports whether the panel has nothing to show.
func (p PanelState) Empty() bool {
	return !p.Formatted && len(p.Blocks) == 0
}

// State is a read-only copy of the whole view.
type State struct {
	Original   PanelState `json:"original"`
	Translated PanelState `json:"translated"`
	Highlight  string     `json:"highlight"`
	Width      int        `json:"width"`
}

// Snapshot copies the view, applying the current highlight.
func (v *View) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return State{
		Original:   v.panelStateLocked(Original),
		Translated: v.panelStateLocked(Translated),
		Highlight:  v.highlight,
		Width:      v.width,
	}
}

func (v *View) panelStateLocked(id PanelID) PanelState {
	p := v.panels[id]
	st := PanelState{ID: id, Label: id.Label()}
	if p.doc != nil {
		st.Formatted = true
		st.Keys = append([]string(nil), p.doc.order...)
		markup, err := p.doc.render(v.highlight)
		if err != nil {
			logger.Warn("Failed to serialize panel", "panel", string(id), "error", err)
		}
		st.Markup = markup
		return st
	}
	st.Blocks = make([]Block, len(p.blocks))
	st.Keys = make([]string, len(p.blocks))
	for i, b := range p.blocks {
		key := ParagraphKey(b.Paragraph)
		b.Highlighted = v.highlight != "" && key == v.highlight
		st.Blocks[i] = b
		st.Keys[i] = key
	}
	return st
}

// Item is one linkable unit of a panel, in display order.
type Item struct {
	Key  string
	Text string
}

// Items lists a panel's units for text output.
func (v *View) Items(id PanelID) []Item {
	v.mu.Lock()
	defer v.mu.Unlock()
	p, ok := v.panels[id]
	if !ok {
		return nil
	}
	if p.doc != nil {
		return p.doc.items()
	}
	out := make([]Item, len(p.blocks))
	for i, b := range p.blocks {
		out[i] = Item{Key: ParagraphKey(b.Paragraph), Text: b.Text}
	}
	return out
}
