package main

import (
	"github.com/oukeidos/panetrans/internal/preview"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [file...]",
		Short: "Open the side-by-side view in a browser",
		Long: `Starts a local web page for selecting files, translating and exporting.
Files given on the command line are loaded before the server starts.`,
		Example: `  panetrans serve
  panetrans serve --addr 127.0.0.1:9000 scan1.png scan2.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args, root)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func runServe(cmd *cobra.Command, args []string, root *rootOptions) error {
	ctrl, stop := newController(root.cfg)
	defer stop()
	ctx := cmd.Context()

	if len(args) > 0 {
		inputs, err := inputFiles(args)
		if err != nil {
			return err
		}
		if err := ctrl.HandleFiles(ctx, inputs); err != nil {
			return err
		}
	}

	srv := preview.New(ctrl)
	return srv.ListenAndServe(ctx, root.cfg.PreviewAddr)
}
