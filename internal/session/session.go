// Package session holds the single active document or image batch.
package session

import (
	"fmt"

	"github.com/oukeidos/panetrans/internal/intake"
	"github.com/oukeidos/panetrans/internal/models"
)

// DefaultFileName is used for exports before any file is loaded.
const DefaultFileName = "translation"

// Mode is the pipeline that currently owns the state.
type Mode int

const (
	ModeEmpty Mode = iota
	ModeDocument
	ModeImageBatch
)

func (m Mode) String() string {
	switch m {
	case ModeDocument:
		return "document"
	case ModeImageBatch:
		return "image-batch"
	default:
		return "empty"
	}
}

// State is the process-wide session. It is not safe for concurrent use; the
// controller serializes access.
type State struct {
	CurrentContent    []models.ContentItem    // nil = none
	TranslatedContent []models.TranslatedItem // nil = none
	CurrentFileName   string
	OriginalHTML      *string
	TranslatedHTML    *string
	HasFormat         bool
	PendingFiles      []intake.File // nil = none
	ImageMode         models.ImageMode
	// WholeImage marks content made of image placeholders rather than
	// recognized text.
	WholeImage bool
}

// New returns an empty session.
func New() *State {
	return &State{
		CurrentFileName: DefaultFileName,
		ImageMode:       models.ModeSegment,
	}
}

// LoadDocument hands the state to the document pipeline. Pending images are
// dropped and any previous translation is cleared. A formatted flag without
// HTML is downgraded to plain.
func (s *State) LoadDocument(fileName string, content []models.ContentItem, hasFormat bool, html *string) {
	s.PendingFiles = nil
	s.WholeImage = false
	s.CurrentContent = content
	if s.CurrentContent == nil {
		s.CurrentContent = []models.ContentItem{}
	}
	s.TranslatedContent = nil
	s.TranslatedHTML = nil
	s.CurrentFileName = intake.StripExt(fileName)
	s.HasFormat = hasFormat && html != nil
	s.OriginalHTML = nil
	if s.HasFormat {
		h := *html
		s.OriginalHTML = &h
	}
}

// AppendImages adds images to the pending batch. Document-derived state is
// cleared so only the batch owns the session.
func (s *State) AppendImages(files []intake.File) int {
	if len(files) == 0 {
		return len(s.PendingFiles)
	}
	if s.PendingFiles == nil {
		s.clearDocument()
	}
	s.PendingFiles = append(s.PendingFiles, files...)
	return len(s.PendingFiles)
}

func (s *State) clearDocument() {
	s.WholeImage = false
	s.CurrentContent = nil
	s.TranslatedContent = nil
	s.TranslatedHTML = nil
	s.OriginalHTML = nil
	s.HasFormat = false
}

// RemoveImage drops exactly one pending image (0-based). Removing the last
// image clears the batch.
func (s *State) RemoveImage(i int) error {
	if i < 0 || i >= len(s.PendingFiles) {
		return fmt.Errorf("image index %d out of range (have %d)", i, len(s.PendingFiles))
	}
	s.PendingFiles = append(s.PendingFiles[:i:i], s.PendingFiles[i+1:]...)
	if len(s.PendingFiles) == 0 {
		s.PendingFiles = nil
	}
	return nil
}

// ClearPending drops the pending batch.
func (s *State) ClearPending() {
	s.PendingFiles = nil
}

// LoadRecognized installs content merged from an image batch. The batch is
// consumed.
func (s *State) LoadRecognized(content []models.ContentItem, imageCount int) {
	s.PendingFiles = nil
	s.WholeImage = false
	s.CurrentContent = content
	s.CurrentFileName = fmt.Sprintf("%d images", imageCount)
	s.HasFormat = false
	s.OriginalHTML = nil
	s.TranslatedContent = nil
	s.TranslatedHTML = nil
}

// LoadWholeImage installs the result of whole-image translation: one
// placeholder original per image paired with its translation.
func (s *State) LoadWholeImage(items []models.TranslatedItem) {
	content := make([]models.ContentItem, len(items))
	for i, it := range items {
		content[i] = models.ContentItem{Paragraph: it.Paragraph, Text: it.Text, SourceImage: it.SourceImage}
	}
	s.CurrentContent = content
	s.TranslatedContent = items
	s.WholeImage = true
	s.CurrentFileName = fmt.Sprintf("%d images", len(items))
	s.HasFormat = false
	s.OriginalHTML = nil
	s.TranslatedHTML = nil
	s.PendingFiles = nil
}

// SetTranslation stores a successful paragraph translation.
func (s *State) SetTranslation(items []models.TranslatedItem, translatedHTML *string) {
	if items == nil {
		items = []models.TranslatedItem{}
	}
	models.NumberTranslations(items)
	s.TranslatedContent = items
	s.TranslatedHTML = nil
	if s.HasFormat && translatedHTML != nil {
		h := *translatedHTML
		s.TranslatedHTML = &h
	}
}

// Mode derives which pipeline owns the state.
func (s *State) Mode() Mode {
	switch {
	case len(s.PendingFiles) > 0:
		return ModeImageBatch
	case s.CurrentContent != nil:
		return ModeDocument
	default:
		return ModeEmpty
	}
}

// HasTranslation reports whether there is something to export.
func (s *State) HasTranslation() bool {
	return len(s.TranslatedContent) > 0
}

// Snapshot is a read-only copy of the state.
type Snapshot struct {
	Mode              string                  `json:"mode"`
	FileName          string                  `json:"file_name"`
	HasFormat         bool                    `json:"has_format"`
	ImageMode         models.ImageMode        `json:"image_mode"`
	PendingImages     []string                `json:"pending_images"`
	Content           []models.ContentItem    `json:"content"`
	TranslatedContent []models.TranslatedItem `json:"translated_content"`
}

// Snapshot deep-copies the state for readers outside the controller.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Mode:              s.Mode().String(),
		FileName:          s.CurrentFileName,
		HasFormat:         s.HasFormat,
		ImageMode:         s.ImageMode,
		Content:           models.CloneContent(s.CurrentContent),
		TranslatedContent: models.CloneTranslated(s.TranslatedContent),
	}
	for _, f := range s.PendingFiles {
		snap.PendingImages = append(snap.PendingImages, f.Name())
	}
	return snap
}
