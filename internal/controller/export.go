package controller

import (
	"context"
	"fmt"

	"github.com/oukeidos/panetrans/internal/apperrors"
	"github.com/oukeidos/panetrans/internal/backend"
	"github.com/oukeidos/panetrans/internal/models"
	"github.com/oukeidos/panetrans/internal/status"
)

// ExportResult describes a finished export.
type ExportResult struct {
	Name        string `json:"name"`
	Path        string `json:"path,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Size        int    `json:"size"`
	data        []byte
}

// Data returns the exported bytes.
func (r *ExportResult) Data() []byte { return r.data }

// ExportFileName builds "<base>_<mode>.<ext>" where mode is "bilingual" or
// "translation".
func ExportFileName(base string, format models.ExportFormat, bilingual bool) string {
	mode := "translation"
	if bilingual {
		mode = "bilingual"
	}
	return fmt.Sprintf("%s_%s.%s", base, mode, format.Extension())
}

func modeText(bilingual bool) string {
	if bilingual {
		return "bilingual"
	}
	return "translation"
}

// Export asks the backend for a document built from the current translation
// and hands it to the downloader. Nothing is sent when there is no
// translation yet.
func (c *Controller) Export(ctx context.Context, format models.ExportFormat, bilingual bool) (*ExportResult, error) {
	c.mu.Lock()
	if !c.state.HasTranslation() {
		c.mu.Unlock()
		c.show(ErrNothingToExport.Error(), status.KindError)
		return nil, ErrNothingToExport
	}
	c.mu.Unlock()

	end, err := c.begin("Exporting...")
	if err != nil {
		return nil, err
	}
	defer end()

	c.mu.Lock()
	req := backend.ExportRequest{
		Content:   models.CloneTranslated(c.state.TranslatedContent),
		Format:    format,
		Filename:  c.state.CurrentFileName,
		HasFormat: c.state.HasFormat,
		Bilingual: bilingual,
	}
	if bilingual {
		req.OriginalContent = models.CloneContent(c.state.CurrentContent)
	}
	c.mu.Unlock()

	if req.HasFormat {
		if html, ok := c.view.TranslatedHTML(); ok {
			req.TranslatedHTML = &html
		}
	}

	c.show(fmt.Sprintf("generating %s %s file...", modeText(bilingual), format.Label()), status.KindInfo)
	file, err := c.backend.Export(ctx, req)
	if err != nil {
		c.log.Warn("Export failed", "format", string(format), "bilingual", bilingual, "error", err)
		c.show(failureMessage("export failed", "export failed", err), status.KindError)
		return nil, err
	}

	result := &ExportResult{
		Name:        ExportFileName(req.Filename, format, bilingual),
		ContentType: file.ContentType,
		Size:        len(file.Data),
		data:        file.Data,
	}
	if c.download != nil {
		path, err := c.download.Save(result.Name, file.Data)
		if err != nil {
			c.show("export failed: "+apperrors.PublicMessage(err), status.KindError)
			return nil, err
		}
		result.Path = path
	}

	c.mu.Lock()
	c.lastExport = result
	c.mu.Unlock()

	c.log.Info("Export saved", "file", result.Name, "bytes", result.Size)
	c.show(fmt.Sprintf("%s %s file exported", modeText(bilingual), format.Label()), status.KindSuccess)
	return result, nil
}

// LastExport returns the most recent export if its name matches.
func (c *Controller) LastExport(name string) (*ExportResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastExport == nil || c.lastExport.Name != name {
		return nil, false
	}
	return c.lastExport, true
}
