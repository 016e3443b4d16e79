package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type translateOptions struct {
	exports   []string
	bilingual bool
	htmlPath  string
	yes       bool
}

func newTranslateCmd(root *rootOptions) *cobra.Command {
	opts := translateOptions{}
	cmd := &cobra.Command{
		Use:   "translate <file>...",
		Short: "Translate a document or a batch of images",
		Long: `Uploads the inputs, translates them and prints both panes side by side.

A single non-image file is parsed as a document. Image files are treated as a
batch and translated in the mode chosen with --mode (segment recognizes the
text first; whole sends each image to the model as is).`,
		Example: `  panetrans translate report.docx --target de --export docx --bilingual
  panetrans translate page1.png page2.png --mode whole --export txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, args, root, &opts)
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringSliceVar(&opts.exports, "export", nil, "Export formats after translating (txt, docx)")
	cmd.Flags().BoolVar(&opts.bilingual, "bilingual", false, "Export original and translation together")
	cmd.Flags().StringVar(&opts.htmlPath, "html", "", "Also save the side-by-side page to this HTML file")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Overwrite the HTML file without asking")
	return cmd
}

func runTranslate(cmd *cobra.Command, args []string, root *rootOptions, opts *translateOptions) error {
	formats, err := parseFormats(opts.exports)
	if err != nil {
		return err
	}
	if err := checkOverwrite(opts.htmlPath, opts.yes); err != nil {
		return err
	}
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
	if err := translateLoaded(ctx, ctrl, root.cfg.Mode()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := printSideBySide(out, ctrl); err != nil {
		return err
	}
	for _, f := range formats {
		res, err := ctrl.Export(ctx, f, opts.bilingual)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported: %s\n", res.Path)
	}
	if opts.htmlPath != "" {
		if err := writePage(ctrl, opts.htmlPath, opts.yes); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved page: %s\n", opts.htmlPath)
	}
	return nil
}
