package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dossier/internal/wizard/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect wizard configurations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check [path]",
		Short: "Validate a wizard configuration (the embedded default when no path is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			questions := 0
			for _, m := range cfg.Modules {
				questions += len(m.Questions)
				mode := "answers"
				if m.HasAssemblePrompt {
					mode = "assembled"
				}
				fmt.Fprintf(out, "  %-20s %2d questions (%d required) %s\n",
					m.ID, len(m.Questions), len(m.RequiredQuestions()), mode)
			}
			fmt.Fprintf(out, "configuration OK: %d modules, %d questions\n", len(cfg.Modules), questions)
			return nil
		},
	})
	return cmd
}
