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

// RecognitionResult summarizes one recognition batch.
type RecognitionResult struct {
	Succeeded int `json:"succeeded"`
	Total     int `json:"total"`
	Segments  int `json:"segments"`
}

// HandleFiles routes a new selection: a lone document is parsed right away,
// images are appended to the pending batch.
func (c *Controller) HandleFiles(ctx context.Context, files []intake.File) error {
	cl := intake.Classify(files)
	if cl.Document != nil {
		return c.HandleFile(ctx, cl.Document)
	}
	if cl.Warning != "" {
		c.show(cl.Warning, status.KindWarning)
	}
	if cl.Err != nil {
		c.show(cl.Err.Error(), status.KindError)
		return cl.Err
	}
	if len(cl.Images) == 0 {
		return nil
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	first := len(c.state.PendingFiles) == 0
	total := c.state.AppendImages(cl.Images)
	pending := append([]intake.File(nil), c.state.PendingFiles...)
	if first {
		c.exportVisible = false
	}
	c.fileLabel = fmt.Sprintf("%d image(s) selected", total)
	c.button = render.Button{Enabled: true, Label: ButtonLabel}
	c.mu.Unlock()

	if first {
		c.view.Reset()
	}
	c.setPreviews(pending)
	c.log.Info("Images selected", "added", len(cl.Images), "pending", total)

	if first {
		c.show(fmt.Sprintf("selected %d image(s), click Translate to recognize and translate", total), status.KindSuccess)
	} else {
		c.show(fmt.Sprintf("added %d image(s), %d total", len(cl.Images), total), status.KindSuccess)
	}
	return nil
}

func (c *Controller) setPreviews(files []intake.File) {
	previews := intake.DescribeImages(files)
	c.mu.Lock()
	c.previews = previews
	c.previewFiles = files
	c.modal = nil
	c.mu.Unlock()
}

// RemoveImage drops pending image i (0-based) and renumbers the previews.
func (c *Controller) RemoveImage(i int) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	if err := c.state.RemoveImage(i); err != nil {
		c.mu.Unlock()
		return apperrors.BadRequest(err.Error())
	}
	remaining := len(c.state.PendingFiles)
	pending := append([]intake.File(nil), c.state.PendingFiles...)
	if remaining == 0 {
		c.fileLabel = ""
	} else {
		c.fileLabel = fmt.Sprintf("%d image(s) selected", remaining)
	}
	c.button.Enabled = c.canTranslateLocked()
	c.mu.Unlock()

	c.setPreviews(pending)
	if remaining == 0 {
		c.show("all images removed", status.KindInfo)
	} else {
		c.show(fmt.Sprintf("image removed, %d remaining", remaining), status.KindSuccess)
	}
	return nil
}

// OpenPreview shows preview n (1-based) enlarged.
func (c *Controller) OpenPreview(n int) error {
	c.mu.Lock()
	if n < 1 || n > len(c.previews) {
		c.mu.Unlock()
		return apperrors.BadRequest(fmt.Sprintf("no preview %d", n))
	}
	p := c.previews[n-1]
	c.modal = &p
	c.mu.Unlock()
	c.changed()
	return nil
}

// ClosePreview hides the enlarged preview.
func (c *Controller) ClosePreview() {
	c.mu.Lock()
	c.modal = nil
	c.mu.Unlock()
	c.changed()
}

// UploadAndRecognizeImages uploads each image for text recognition, strictly
// in order, and merges the results into one content list.
func (c *Controller) UploadAndRecognizeImages(ctx context.Context, files []intake.File) (RecognitionResult, error) {
	end, err := c.begin("Recognizing...")
	if err != nil {
		return RecognitionResult{}, err
	}
	defer end()
	return c.recognize(ctx, files)
}

// recognize is an ordered fold over files. A failed image is logged and
// skipped; its neighbours keep their positions in the tags.
func (c *Controller) recognize(ctx context.Context, files []intake.File) (RecognitionResult, error) {
	res := RecognitionResult{Total: len(files)}
	c.mu.Lock()
	c.fileLabel = fmt.Sprintf("recognizing %d image(s)...", len(files))
	c.mu.Unlock()
	c.show(fmt.Sprintf("recognizing %d image(s)...", len(files)), status.KindInfo)

	var merged []models.ContentItem
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			c.show("recognition cancelled", status.KindWarning)
			return res, err
		}
		pos := i + 1
		c.show(fmt.Sprintf("recognizing image %d/%d...", pos, len(files)), status.KindInfo)

		resp, err := c.backend.Upload(ctx, f)
		if err != nil {
			c.log.Warn("Image recognition failed", "image", pos, "file", f.Name(), "error", apperrors.PublicMessage(err))
			continue
		}
		for _, item := range resp.Content {
			item.Text = fmt.Sprintf("[Image %d] %s", pos, item.Text)
			item.SourceImage = pos
			merged = append(merged, item)
		}
		res.Succeeded++
	}
	res.Segments = len(merged)

	if len(merged) == 0 {
		c.mu.Lock()
		c.fileLabel = ""
		c.previews = nil
		c.previewFiles = nil
		c.modal = nil
		c.mu.Unlock()
		c.log.Warn("Image batch yielded no text", "images", res.Total)
		c.show(ErrRecognitionFailed.Error(), status.KindError)
		return res, ErrRecognitionFailed
	}

	c.mu.Lock()
	c.state.LoadRecognized(merged, len(files))
	c.fileLabel = fmt.Sprintf("%d image(s) recognized", len(files))
	c.exportVisible = false
	c.mu.Unlock()

	c.view.Clear(render.Translated)
	if err := c.view.RenderPlain(render.Original, models.Texts(merged)); err != nil {
		return res, err
	}
	c.log.Info("Image batch recognized", "succeeded", res.Succeeded, "total", res.Total, "segments", res.Segments)
	c.show(fmt.Sprintf("recognized %d/%d image(s), %d segment(s)", res.Succeeded, res.Total, res.Segments), status.KindSuccess)
	return res, nil
}
