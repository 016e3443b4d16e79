package controller

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/oukeidos/panetrans/internal/apperrors"
	"github.com/oukeidos/panetrans/internal/intake"
	"github.com/oukeidos/panetrans/internal/models"
	"github.com/oukeidos/panetrans/internal/render"
)

// Command is one user action. Only the fields the action reads are set.
type Command struct {
	Action     string        `json:"action"`
	Files      []intake.File `json:"-"`
	Index      int           `json:"index"` // preview number, 1-based
	Key        string        `json:"key"`
	Mode       string        `json:"mode"`
	Format     string        `json:"format"`
	Bilingual  bool          `json:"bilingual"`
	Width      int           `json:"width"`
	Paragraph  int           `json:"paragraph"`
	TargetLang string        `json:"target_lang"`
	AIModel    string        `json:"ai_model"`
}

// Result carries whatever an action produced for the caller.
type Result struct {
	Scroll      []render.ScrollTarget `json:"scroll,omitempty"`
	HoldMS      int64                 `json:"hold_ms,omitempty"`
	Export      *ExportResult         `json:"export,omitempty"`
	Recognition *RecognitionResult    `json:"recognition,omitempty"`
	ModePrompt  bool                  `json:"mode_prompt,omitempty"`
}

// Pointer actions (hover, leave, click) update the view without firing
// OnChange; the page highlights and scrolls locally.
type handler func(ctx context.Context, c *Controller, cmd Command) (Result, error)

var actions = map[string]handler{
	"select_files": func(ctx context.Context, c *Controller, cmd Command) (Result, error) {
		return Result{}, c.HandleFiles(ctx, cmd.Files)
	},
	"remove_image": func(_ context.Context, c *Controller, cmd Command) (Result, error) {
		return Result{}, c.RemoveImage(cmd.Index - 1)
	},
	"open_preview": func(_ context.Context, c *Controller, cmd Command) (Result, error) {
		return Result{}, c.OpenPreview(cmd.Index)
	},
	"close_preview": func(_ context.Context, c *Controller, _ Command) (Result, error) {
		c.ClosePreview()
		return Result{}, nil
	},
	"translate": func(ctx context.Context, c *Controller, cmd Command) (Result, error) {
		if err := c.applySettings(cmd); err != nil {
			return Result{}, err
		}
		err := c.Translate(ctx)
		if errors.Is(err, ErrModeRequired) {
			return Result{ModePrompt: true}, nil
		}
		return Result{}, err
	},
	"select_mode": func(ctx context.Context, c *Controller, cmd Command) (Result, error) {
		if err := c.applySettings(cmd); err != nil {
			return Result{}, err
		}
		mode, err := models.ParseImageMode(cmd.Mode)
		if err != nil {
			return Result{}, apperrors.BadRequest(err.Error())
		}
		return Result{}, c.SelectTranslateMode(ctx, mode)
	},
	"export": func(ctx context.Context, c *Controller, cmd Command) (Result, error) {
		format, err := models.ParseExportFormat(cmd.Format)
		if err != nil {
			return Result{}, apperrors.BadRequest(err.Error())
		}
		res, err := c.Export(ctx, format, cmd.Bilingual)
		return Result{Export: res}, err
	},
	"hover": func(_ context.Context, c *Controller, cmd Command) (Result, error) {
		c.view.Hover(cmd.Key)
		return Result{}, nil
	},
	"leave": func(_ context.Context, c *Controller, _ Command) (Result, error) {
		c.view.Leave()
		return Result{}, nil
	},
	"click": func(_ context.Context, c *Controller, cmd Command) (Result, error) {
		targets := c.view.Click(cmd.Key)
		return Result{Scroll: targets, HoldMS: render.HighlightHold.Milliseconds()}, nil
	},
	"resize": func(_ context.Context, c *Controller, cmd Command) (Result, error) {
		c.view.Resize(cmd.Width)
		return Result{}, nil
	},
	"retranslate": func(ctx context.Context, c *Controller, cmd Command) (Result, error) {
		if err := c.applySettings(cmd); err != nil {
			return Result{}, err
		}
		return Result{}, c.RetranslateParagraph(ctx, cmd.Paragraph)
	},
}

func (c *Controller) applySettings(cmd Command) error {
	if cmd.TargetLang != "" {
		if err := c.SetTargetLang(cmd.TargetLang); err != nil {
			return err
		}
	}
	if cmd.AIModel != "" {
		if err := c.SetModel(cmd.AIModel); err != nil {
			return err
		}
	}
	return nil
}

// Dispatch runs the handler registered for cmd.Action.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	h, ok := actions[cmd.Action]
	if !ok {
		return Result{}, apperrors.BadRequest(fmt.Sprintf("unknown action %q", cmd.Action))
	}
	c.log.Debug("Dispatch", "action", cmd.Action)
	return h(ctx, c, cmd)
}

// Actions lists the registered action names.
func Actions() []string {
	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
