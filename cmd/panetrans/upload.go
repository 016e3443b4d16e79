package main

import (
	"encoding/json"
	"fmt"

	"github.com/oukeidos/panetrans/internal/intake"
	"github.com/oukeidos/panetrans/internal/render"
	"github.com/spf13/cobra"
)

type uploadOptions struct {
	asJSON bool
}

func newUploadCmd(root *rootOptions) *cobra.Command {
	opts := uploadOptions{}
	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Parse a document or recognize text in images without translating",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, args, root, &opts)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the parsed session as JSON")
	return cmd
}

func runUpload(cmd *cobra.Command, args []string, root *rootOptions, opts *uploadOptions) error {
	inputs, err := inputFiles(args)
	if err != nil {
		return err
	}

	ctrl, stop := newController(root.cfg)
	defer stop()
	ctx := cmd.Context()

	if err := ctrl.HandleFiles(ctx, inputs); err != nil {
		return err
	}
	if cl := intake.Classify(inputs); cl.Document == nil {
		if _, err := ctrl.UploadAndRecognizeImages(ctx, cl.Images); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ctrl.Snapshot().Session)
	}
	for _, it := range ctrl.View().Items(render.Original) {
		fmt.Fprintf(out, "[%s] %s\n", it.Key, it.Text)
	}
	return nil
}
