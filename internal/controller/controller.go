// Package controller owns the session and drives the upload, translate and
// export pipelines against the backend, updating the view and status banner
// as it goes.
package controller

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/oukeidos/panetrans/internal/aimodel"
	"github.com/oukeidos/panetrans/internal/apperrors"
	"github.com/oukeidos/panetrans/internal/backend"
	"github.com/oukeidos/panetrans/internal/intake"
	"github.com/oukeidos/panetrans/internal/language"
	"github.com/oukeidos/panetrans/internal/logger"
	"github.com/oukeidos/panetrans/internal/models"
	"github.com/oukeidos/panetrans/internal/render"
	"github.com/oukeidos/panetrans/internal/session"
	"github.com/oukeidos/panetrans/internal/status"
)

// ButtonLabel is the translate button's idle label.
const ButtonLabel = "Translate"

var (
	// ErrBusy is returned when an upload, translation or export is already
	// in flight.
	ErrBusy = apperrors.New(apperrors.KindBusy, "another operation is still running", nil)
	// ErrModeRequired is returned by Translate while images are pending; the
	// mode prompt is opened and SelectTranslateMode continues the flow.
	ErrModeRequired = errors.New("choose an image translation mode")
	// ErrNothingToExport is returned by Export before any translation exists.
	ErrNothingToExport = errors.New("no translated content to export")
	// ErrNoContent is returned when there is nothing to translate.
	ErrNoContent = errors.New("nothing to translate")
	// ErrRecognitionFailed is returned when no image in a batch yielded text.
	ErrRecognitionFailed = errors.New("all images failed recognition")
)

// Downloader receives exported files.
type Downloader interface {
	Save(name string, data []byte) (string, error)
}

// Controller is the single owner of session state. Operations are
// single-flight: a second upload, translation or export while one is running
// fails with ErrBusy.
type Controller struct {
	backend  backend.Backend
	view     *render.View
	board    *status.Board
	download Downloader
	log      *slog.Logger

	mu            sync.Mutex
	state         *session.State
	busy          bool
	button        render.Button
	fileLabel     string
	previews      []intake.Preview
	previewFiles  []intake.File
	modal         *intake.Preview
	exportVisible bool
	modePrompt    bool
	targetLang    string
	aiModel       string
	lastExport    *ExportResult
	onChange      func()
}

// Option configures a Controller.
type Option func(*Controller)

func WithView(v *render.View) Option {
	return func(c *Controller) { c.view = v }
}

func WithBoard(b *status.Board) Option {
	return func(c *Controller) { c.board = b }
}

func WithDownloader(d Downloader) Option {
	return func(c *Controller) { c.download = d }
}

// WithTargetLang sets the initial target language. Invalid codes are
// ignored; callers validate configuration first.
func WithTargetLang(code string) Option {
	return func(c *Controller) {
		if lang, ok := language.GetLanguage(code); ok {
			c.targetLang = lang.Code
		}
	}
}

// WithModel sets the initial AI model.
func WithModel(key string) Option {
	return func(c *Controller) {
		if m, ok := aimodel.Lookup(key); ok {
			c.aiModel = m.Key
		}
	}
}

// WithImageMode sets the default image translation mode.
func WithImageMode(mode models.ImageMode) Option {
	return func(c *Controller) { c.state.ImageMode = mode }
}

// New returns a controller with an empty session.
func New(b backend.Backend, opts ...Option) *Controller {
	c := &Controller{
		backend:    b,
		log:        logger.Component("controller"),
		state:      session.New(),
		button:     render.Button{Enabled: false, Label: ButtonLabel},
		targetLang: language.DefaultTarget,
		aiModel:    aimodel.Default,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.view == nil {
		c.view = render.NewView()
	}
	if c.board == nil {
		c.board = status.NewBoard()
	}
	return c
}

// View returns the dual-pane view.
func (c *Controller) View() *render.View { return c.view }

// Board returns the status banner.
func (c *Controller) Board() *status.Board { return c.board }

// OnChange registers a callback fired after every state change.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Controller) changed() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (c *Controller) show(text string, kind status.Kind) {
	c.board.Show(text, kind)
	c.changed()
}

// begin marks an operation in flight and disables the translate button. The
// returned end must be deferred; it re-enables the button and resets its
// label on every exit path, panics included.
func (c *Controller) begin(label string) (end func(), err error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.busy = true
	c.button = render.Button{Enabled: false, Label: label}
	c.mu.Unlock()
	c.changed()

	return func() {
		c.mu.Lock()
		c.busy = false
		c.button = render.Button{Enabled: c.canTranslateLocked(), Label: ButtonLabel}
		c.mu.Unlock()
		c.changed()
	}, nil
}

func (c *Controller) setButtonLabel(label string) {
	c.mu.Lock()
	c.button.Label = label
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) canTranslateLocked() bool {
	return len(c.state.PendingFiles) > 0 || len(c.state.CurrentContent) > 0
}

// Busy reports whether an operation is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// TranslateButton returns the translate button state.
func (c *Controller) TranslateButton() render.Button {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.button
}

// SetTargetLang changes the target language for later translations.
func (c *Controller) SetTargetLang(code string) error {
	lang, ok := language.GetLanguage(code)
	if !ok {
		return apperrors.BadRequest(fmt.Sprintf("unsupported target language %q", code))
	}
	c.mu.Lock()
	c.targetLang = lang.Code
	c.mu.Unlock()
	return nil
}

// SetModel changes the AI model for later translations.
func (c *Controller) SetModel(key string) error {
	m, ok := aimodel.Lookup(key)
	if !ok {
		return apperrors.BadRequest(fmt.Sprintf("unsupported AI model %q", key))
	}
	c.mu.Lock()
	c.aiModel = m.Key
	c.mu.Unlock()
	return nil
}

func (c *Controller) settings() (target, model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.targetLang, c.aiModel
}

// Snapshot is a read-only copy of the controller for the preview server and
// CLI summaries.
type Snapshot struct {
	Session       session.Snapshot `json:"session"`
	View          render.State     `json:"view"`
	Status        status.Message   `json:"status"`
	Button        render.Button    `json:"button"`
	FileLabel     string           `json:"file_label"`
	Previews      []intake.Preview `json:"previews"`
	Modal         *intake.Preview  `json:"modal,omitempty"`
	ExportVisible bool             `json:"export_visible"`
	ModePrompt    bool             `json:"mode_prompt"`
	Busy          bool             `json:"busy"`
	TargetLang    string           `json:"target_lang"`
	AIModel       string           `json:"ai_model"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	snap := Snapshot{
		Session:       c.state.Snapshot(),
		Button:        c.button,
		FileLabel:     c.fileLabel,
		Previews:      append([]intake.Preview(nil), c.previews...),
		ExportVisible: c.exportVisible,
		ModePrompt:    c.modePrompt,
		Busy:          c.busy,
		TargetLang:    c.targetLang,
		AIModel:       c.aiModel,
	}
	if c.modal != nil {
		m := *c.modal
		snap.Modal = &m
	}
	c.mu.Unlock()

	snap.View = c.view.Snapshot()
	snap.Status = c.board.Current()
	return snap
}

// PageState collects the page chrome around the two panels.
func (c *Controller) PageState() render.PageState {
	snap := c.Snapshot()
	st := render.PageState{
		FileLabel:     snap.FileLabel,
		Status:        snap.Status,
		Previews:      snap.Previews,
		Modal:         snap.Modal,
		Button:        snap.Button,
		ExportVisible: snap.ExportVisible,
		ModePrompt:    snap.ModePrompt,
	}
	for _, l := range language.GetSupportedLanguages() {
		st.Languages = append(st.Languages, render.Choice{Value: l.Code, Label: l.Name, Selected: l.Code == snap.TargetLang})
	}
	for _, m := range aimodel.All() {
		st.Models = append(st.Models, render.Choice{Value: m.Key, Label: m.Name, Selected: m.Key == snap.AIModel})
	}
	return st
}

// Page writes the full HTML page.
func (c *Controller) Page(w io.Writer) error {
	return c.view.Page(w, c.PageState())
}

// PreviewImage returns the bytes behind preview n (1-based).
func (c *Controller) PreviewImage(n int) (string, []byte, error) {
	c.mu.Lock()
	if n < 1 || n > len(c.previewFiles) {
		c.mu.Unlock()
		return "", nil, apperrors.BadRequest(fmt.Sprintf("no preview %d", n))
	}
	f := c.previewFiles[n-1]
	c.mu.Unlock()

	data, err := intake.ReadAll(f)
	if err != nil {
		return "", nil, err
	}
	return f.Name(), data, nil
}
