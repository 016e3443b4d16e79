package main

import (
	"fmt"
	"os"

	"github.com/oukeidos/panetrans/internal/backend"
	"github.com/oukeidos/panetrans/internal/cleanup"
	"github.com/oukeidos/panetrans/internal/config"
	"github.com/oukeidos/panetrans/internal/files"
	"github.com/oukeidos/panetrans/internal/httpclient"
	"github.com/oukeidos/panetrans/internal/logger"
	"github.com/oukeidos/panetrans/internal/version"
	"github.com/spf13/cobra"
)

// newBackend is swapped out in tests.
var newBackend = func(cfg config.Config) backend.Backend {
	return backend.NewClient(cfg.BackendURL, httpclient.NewClient(cfg.Timeout))
}

type rootOptions struct {
	cfg config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "panetrans",
		Short: "Side-by-side document and image translation",
		Long: `panetrans uploads documents and images to a translation backend,
shows the original and the translation side by side, and exports the result
as TXT or Word.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		SilenceUsage: true,
	}

	cmd.Version = version.Info()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetUsageTemplate(rootUsageTemplate)
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newTranslateCmd(opts),
		newUploadCmd(opts),
		newRetranslateCmd(opts),
		newServeCmd(opts),
		newLanguagesCmd(),
		newModelsCmd(),
		newAboutCmd(),
	)
	return cmd
}

// load resolves configuration and initializes logging. Flags win over the
// environment, which wins over the config file.
func (o *rootOptions) load(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg

	level := logger.LevelInfo
	if cfg.Debug {
		level = logger.LevelDebug
	}
	if cfg.LogFile == "" {
		logger.Init(level, nil)
		return nil
	}
	if err := files.CheckOutputPath(cfg.LogFile); err != nil {
		return err
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	cleanup.Register("log file", f.Close)
	logger.Init(level, f)
	return nil
}
