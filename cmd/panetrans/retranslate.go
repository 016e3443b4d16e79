package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newRetranslateCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retranslate <file> <paragraph>...",
		Short: "Translate a document, then re-translate single paragraphs",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRetranslate(cmd, args, root)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func runRetranslate(cmd *cobra.Command, args []string, root *rootOptions) error {
	paragraphs := make([]int, 0, len(args)-1)
	for _, a := range args[1:] {
		n, err := strconv.Atoi(a)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid paragraph number %q", a)
		}
		paragraphs = append(paragraphs, n)
	}
	inputs, err := inputFiles(args[:1])
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
	for _, n := range paragraphs {
		if err := ctrl.RetranslateParagraph(ctx, n); err != nil {
			return err
		}
	}
	return printSideBySide(cmd.OutOrStdout(), ctrl)
}
