package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oukeidos/panetrans/internal/config"
	"github.com/oukeidos/panetrans/internal/controller"
	"github.com/oukeidos/panetrans/internal/files"
	"github.com/oukeidos/panetrans/internal/intake"
	"github.com/oukeidos/panetrans/internal/logger"
	"github.com/oukeidos/panetrans/internal/models"
	"github.com/oukeidos/panetrans/internal/render"
	"github.com/oukeidos/panetrans/internal/status"
	"golang.org/x/term"
)

var (
	isTerminal = term.IsTerminal
	termSize   = term.GetSize
)

// newController builds a controller for cfg whose status banner is mirrored
// to the log. stop waits for the mirror to drain.
func newController(cfg config.Config) (*controller.Controller, func()) {
	ctrl := controller.New(newBackend(cfg),
		controller.WithTargetLang(cfg.TargetLang),
		controller.WithModel(cfg.AIModel),
		controller.WithImageMode(cfg.Mode()),
		controller.WithDownloader(files.DirDownloader{Dir: cfg.OutputDir}),
	)

	updates, cancel := ctrl.Board().Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range updates {
			logStatus(msg)
		}
	}()
	return ctrl, func() {
		cancel()
		<-done
	}
}

func logStatus(msg status.Message) {
	if !msg.Visible || msg.Text == "" {
		return
	}
	switch msg.Kind {
	case status.KindError:
		logger.Error(msg.Text)
	case status.KindWarning:
		logger.Warn(msg.Text)
	case status.KindSuccess:
		logger.Info(msg.Text)
	default:
		logger.Debug(msg.Text)
	}
}

// inputFiles checks that every path is a readable regular file within the
// upload limit.
func inputFiles(paths []string) ([]intake.File, error) {
	out := make([]intake.File, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot read input %s: %w", p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("input %s is a directory", p)
		}
		if info.Size() > intake.MaxFileBytes {
			return nil, fmt.Errorf("input %s exceeds the %d MB upload limit", p, intake.MaxFileBytes>>20)
		}
		out = append(out, intake.LocalFile(p))
	}
	return out, nil
}

// translateLoaded translates whatever HandleFiles loaded, choosing mode when
// the selection was a batch of images.
func translateLoaded(ctx context.Context, ctrl *controller.Controller, mode models.ImageMode) error {
	err := ctrl.Translate(ctx)
	if errors.Is(err, controller.ErrModeRequired) {
		return ctrl.SelectTranslateMode(ctx, mode)
	}
	return err
}

func parseFormats(values []string) ([]models.ExportFormat, error) {
	var out []models.ExportFormat
	seen := make(map[models.ExportFormat]bool)
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			f, err := models.ParseExportFormat(part)
			if err != nil {
				return nil, err
			}
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out, nil
}

// outputWidth is the terminal width of w, or render.DefaultWidth when w is
// not a terminal.
func outputWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !isTerminal(int(f.Fd())) {
		return render.DefaultWidth
	}
	width, _, err := termSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return render.DefaultWidth
	}
	return width
}

// writePage saves the dual-pane HTML page to path.
func writePage(ctrl *controller.Controller, path string, overwrite bool) error {
	if err := checkOverwrite(path, overwrite); err != nil {
		return err
	}
	if err := files.CheckOutputPath(path); err != nil {
		return err
	}
	var b strings.Builder
	if err := ctrl.Page(&b); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return files.AtomicWrite(path, []byte(b.String()), 0o644)
}

func checkOverwrite(path string, overwrite bool) error {
	if path == "" || overwrite {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists (use --yes to overwrite)", path)
	}
	return nil
}

func printSideBySide(w io.Writer, ctrl *controller.Controller) error {
	return ctrl.View().SideBySide(w, outputWidth(w))
}
