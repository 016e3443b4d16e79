package controller

import (
	"context"
	"fmt"

	"github.com/oukeidos/panetrans/internal/apperrors"
	"github.com/oukeidos/panetrans/internal/backend"
	"github.com/oukeidos/panetrans/internal/intake"
	"github.com/oukeidos/panetrans/internal/language"
	"github.com/oukeidos/panetrans/internal/models"
	"github.com/oukeidos/panetrans/internal/render"
	"github.com/oukeidos/panetrans/internal/status"
)

// Translate starts translation. With images pending it only opens the mode
// prompt and returns ErrModeRequired; otherwise the loaded content is
// translated immediately.
func (c *Controller) Translate(ctx context.Context) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	if len(c.state.PendingFiles) > 0 {
		c.modePrompt = true
		c.mu.Unlock()
		c.changed()
		return ErrModeRequired
	}
	hasContent := len(c.state.CurrentContent) > 0
	c.mu.Unlock()

	if !hasContent {
		return ErrNoContent
	}
	return c.TranslateContent(ctx)
}

// ModePrompt reports whether the image mode prompt is open.
func (c *Controller) ModePrompt() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modePrompt
}

// SelectTranslateMode closes the prompt and translates the pending images
// in the chosen mode.
func (c *Controller) SelectTranslateMode(ctx context.Context, mode models.ImageMode) error {
	c.mu.Lock()
	c.modePrompt = false
	c.state.ImageMode = mode
	pending := len(c.state.PendingFiles)
	c.mu.Unlock()
	c.changed()

	if pending == 0 {
		return ErrNoContent
	}
	switch mode {
	case models.ModeSegment:
		return c.translateSegments(ctx)
	case models.ModeWhole:
		return c.translateWholeImages(ctx)
	default:
		return apperrors.BadRequest(fmt.Sprintf("unknown image mode %q", mode))
	}
}

func (c *Controller) pendingFiles() []intake.File {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]intake.File(nil), c.state.PendingFiles...)
}

// translateSegments recognizes the pending images, then translates the
// merged paragraphs if recognition produced any.
func (c *Controller) translateSegments(ctx context.Context) error {
	end, err := c.begin("Recognizing...")
	if err != nil {
		return err
	}
	defer end()

	files := c.pendingFiles()
	_, err = c.recognize(ctx, files)
	c.mu.Lock()
	c.state.ClearPending()
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.setButtonLabel("Translating...")
	return c.translateContent(ctx)
}

// WholeImageText is the placeholder original for whole-image item n.
func WholeImageText(n int) string {
	return fmt.Sprintf("[Image %d original]", n)
}

// FailedTranslation is the placeholder stored when an image fails.
func FailedTranslation(msg string) string {
	return fmt.Sprintf("[Translation failed: %s]", msg)
}

// translateWholeImages sends every pending image to the model, in order.
// Each image yields exactly one item; failures become placeholder text.
func (c *Controller) translateWholeImages(ctx context.Context) error {
	end, err := c.begin("Translating images...")
	if err != nil {
		return err
	}
	defer end()

	files := c.pendingFiles()
	target, model := c.settings()
	c.show(fmt.Sprintf("translating %d image(s)...", len(files)), status.KindInfo)

	items := make([]models.TranslatedItem, 0, len(files))
	failed := 0
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			c.show("image translation cancelled", status.KindWarning)
			return err
		}
		pos := i + 1
		c.show(fmt.Sprintf("translating image %d/%d...", pos, len(files)), status.KindInfo)

		translation, err := c.translateImage(ctx, f, target, model)
		if err != nil {
			failed++
			c.log.Warn("Whole-image translation failed", "image", pos, "file", f.Name(), "error", apperrors.PublicMessage(err))
			translation = FailedTranslation(apperrors.PublicMessage(err))
		}
		items = append(items, models.TranslatedItem{
			Paragraph:   pos,
			Text:        WholeImageText(pos),
			Translation: translation,
			SourceImage: pos,
		})
	}

	c.mu.Lock()
	c.state.LoadWholeImage(items)
	c.fileLabel = fmt.Sprintf("%d image(s) translated", len(items))
	c.exportVisible = true
	c.mu.Unlock()

	c.view.Reset()
	_ = c.view.RenderPlain(render.Original, textsOf(items))
	_ = c.view.RenderPlain(render.Translated, models.Translations(items))

	c.log.Info("Whole-image batch translated", "images", len(items), "failed", failed)
	c.show(fmt.Sprintf("translated %d image(s)", len(items)), status.KindSuccess)
	return nil
}

func (c *Controller) translateImage(ctx context.Context, f intake.File, target, model string) (string, error) {
	payload, err := intake.ReadBase64(f)
	if err != nil {
		return "", apperrors.New(apperrors.KindBadRequest, err.Error(), err)
	}
	return c.backend.TranslateImage(ctx, backend.ImageRequest{
		ImageBase64: payload,
		TargetLang:  target,
		AIModel:     model,
	})
}

func textsOf(items []models.TranslatedItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

// TranslateContent translates the loaded content in one request. On failure
// the previous translation, if any, is kept.
func (c *Controller) TranslateContent(ctx context.Context) error {
	end, err := c.begin("Translating...")
	if err != nil {
		return err
	}
	defer end()
	return c.translateContent(ctx)
}

func (c *Controller) translateContent(ctx context.Context) error {
	c.mu.Lock()
	content := models.CloneContent(c.state.CurrentContent)
	var html *string
	if c.state.HasFormat && c.state.OriginalHTML != nil {
		h := *c.state.OriginalHTML
		html = &h
	}
	target, model := c.targetLang, c.aiModel
	c.mu.Unlock()

	if len(content) == 0 {
		return ErrNoContent
	}
	c.show("translating, please wait...", status.KindInfo)

	resp, err := c.backend.Translate(ctx, backend.TranslateRequest{
		Content:     content,
		TargetLang:  target,
		SourceLang:  language.AutoDetect,
		HTMLContent: html,
		AIModel:     model,
	})
	if err != nil {
		c.log.Warn("Translation failed", "paragraphs", len(content), "error", err)
		c.show("translation failed: "+apperrors.PublicMessage(err), status.KindError)
		return err
	}

	c.mu.Lock()
	c.state.SetTranslation(resp.TranslatedContent, resp.TranslatedHTML)
	items := models.CloneTranslated(c.state.TranslatedContent)
	var translatedHTML string
	formatted := c.state.TranslatedHTML != nil
	if formatted {
		translatedHTML = *c.state.TranslatedHTML
	}
	c.exportVisible = true
	c.mu.Unlock()

	c.renderTranslated(items, formatted, translatedHTML)
	c.log.Info("Content translated", "paragraphs", len(items), "target", target, "model", model)
	c.show("translation complete, ready to export", status.KindSuccess)
	return nil
}

func (c *Controller) renderTranslated(items []models.TranslatedItem, formatted bool, html string) {
	if formatted {
		err := c.view.RenderFormatted(render.Translated, html)
		if err == nil {
			return
		}
		c.log.Warn("Falling back to plain rendering", "panel", "translated", "error", err)
	}
	_ = c.view.RenderPlain(render.Translated, models.Translations(items))
}

// RetranslateParagraph re-translates paragraph n (1-based) on its own and
// patches the translated panel in place.
func (c *Controller) RetranslateParagraph(ctx context.Context, n int) error {
	end, err := c.begin("Translating...")
	if err != nil {
		return err
	}
	defer end()

	c.mu.Lock()
	if !c.state.HasTranslation() || n < 1 || n > len(c.state.CurrentContent) {
		c.mu.Unlock()
		return apperrors.BadRequest(fmt.Sprintf("paragraph %d has no translation to refresh", n))
	}
	if c.state.WholeImage {
		c.mu.Unlock()
		return apperrors.BadRequest("whole-image translations have no source text to retranslate")
	}
	item := c.state.CurrentContent[n-1]
	target := c.targetLang
	c.mu.Unlock()

	translation, err := c.backend.TranslateSingle(ctx, backend.SingleRequest{
		Text:       item.Text,
		TargetLang: target,
		SourceLang: language.AutoDetect,
	})
	if err != nil {
		c.show(failureMessage("translation failed", "translation failed", err), status.KindError)
		return err
	}

	c.mu.Lock()
	found := false
	for i := range c.state.TranslatedContent {
		if c.state.TranslatedContent[i].Paragraph == n {
			c.state.TranslatedContent[i].Translation = translation
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return apperrors.BadRequest(fmt.Sprintf("paragraph %d has no translation to refresh", n))
	}

	if c.view.IsFormatted(render.Translated) && item.ID != "" {
		if err := c.view.SetElementText(render.Translated, item.ID, translation); err != nil {
			return err
		}
		if html, ok := c.view.TranslatedHTML(); ok {
			c.mu.Lock()
			c.state.TranslatedHTML = &html
			c.mu.Unlock()
		}
	} else if err := c.view.SetBlockText(render.Translated, n, translation); err != nil {
		return err
	}

	c.show(fmt.Sprintf("paragraph %d re-translated", n), status.KindSuccess)
	return nil
}
