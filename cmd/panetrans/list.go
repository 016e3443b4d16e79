package main

import (
	"fmt"

	"github.com/oukeidos/panetrans/internal/aimodel"
	"github.com/oukeidos/panetrans/internal/language"
	"github.com/spf13/cobra"
)

func newLanguagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List supported target languages",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Supported Languages:")
			for _, l := range language.GetSupportedLanguages() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-6s %-22s %s\n", l.Code, language.EnglishName(l.Code), l.Name)
			}
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List AI models the backend accepts",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Available Models:")
			for _, m := range aimodel.All() {
				mark := " "
				if m.Key == aimodel.Default {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-10s %-14s %s\n", mark, m.Key, m.Name, m.Description)
			}
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
