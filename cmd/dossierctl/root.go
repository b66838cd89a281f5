package main

import (
	"context"

	"github.com/spf13/cobra"

	"dossier/internal/repositories"
)

// backend holds the database-facing operations so commands can run against fakes.
type backend struct {
	migrate  func(ctx context.Context) error
	accounts func(ctx context.Context) (repositories.AccountRepository, func(), error)
}

func newRootCmd(b backend) *cobra.Command {
	root := &cobra.Command{
		Use:   "dossierctl",
		Short: "Operator tool for the procurement dossier service",
		Long: `dossierctl runs maintenance tasks next to the dossier API.

Available commands:
  config check  - validate a wizard configuration file
  migrate       - create or update the database schema
  promote       - change the role of an account`,
		SilenceUsage: true,
	}
	root.AddCommand(newConfigCmd())
	root.AddCommand(newMigrateCmd(b))
	root.AddCommand(newPromoteCmd(b))
	return root
}
