package controller

import (
	"context"
	"fmt"

	"github.com/oukeidos/panetrans/internal/apperrors"
	"github.com/oukeidos/panetrans/internal/intake"
	"github.com/oukeidos/panetrans/internal/models"
	"github.com/oukeidos/panetrans/internal/render"
	"github.com/oukeidos/panetrans/internal/status"
)

// HandleFile uploads a single document. On success the session is replaced
// wholesale; on failure the displayed file name is cleared.
func (c *Controller) HandleFile(ctx context.Context, f intake.File) error {
	end, err := c.begin("Parsing...")
	if err != nil {
		return err
	}
	defer end()

	// A document selection replaces any pending image batch, even when the
	// upload below fails.
	c.mu.Lock()
	c.state.ClearPending()
	c.previews = nil
	c.previewFiles = nil
	c.modal = nil
	c.modePrompt = false
	c.fileLabel = f.Name()
	c.mu.Unlock()
	c.show("parsing file...", status.KindInfo)

	resp, err := c.backend.Upload(ctx, f)
	if err != nil {
		c.mu.Lock()
		c.fileLabel = ""
		c.mu.Unlock()
		c.log.Warn("Document upload failed", "file", f.Name(), "error", err)
		c.show(failureMessage("file parsing failed", "upload failed", err), status.KindError)
		return err
	}

	c.mu.Lock()
	c.state.LoadDocument(f.Name(), resp.Content, resp.HasFormat, resp.HTMLContent)
	content := models.CloneContent(c.state.CurrentContent)
	var html string
	formatted := c.state.HasFormat
	if formatted {
		html = *c.state.OriginalHTML
	}
	c.previews = nil
	c.previewFiles = nil
	c.modal = nil
	c.modePrompt = false
	c.exportVisible = false
	c.mu.Unlock()

	c.view.Reset()
	c.renderOriginal(content, formatted, html)

	c.log.Info("Document parsed", "file", f.Name(), "paragraphs", len(content), "formatted", formatted)
	c.show(fmt.Sprintf("parsed %d paragraph(s)", len(content)), status.KindSuccess)
	return nil
}

// renderOriginal prefers formatted HTML and falls back to numbered blocks.
func (c *Controller) renderOriginal(content []models.ContentItem, formatted bool, html string) {
	if formatted {
		err := c.view.RenderFormatted(render.Original, html)
		if err == nil {
			return
		}
		c.log.Warn("Falling back to plain rendering", "panel", "original", "error", err)
	}
	_ = c.view.RenderPlain(render.Original, models.Texts(content))
}

// failureMessage prefixes a status line the way the user sees it: backend
// rejections and transport failures read differently.
func failureMessage(backendPrefix, transportPrefix string, err error) string {
	prefix := backendPrefix
	if apperrors.IsTransport(err) {
		prefix = transportPrefix
	}
	return prefix + ": " + apperrors.PublicMessage(err)
}
