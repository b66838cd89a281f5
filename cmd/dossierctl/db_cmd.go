package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var roles = map[string]bool{"admin": true, "buyer": true}

func newMigrateCmd(b backend) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := b.migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newPromoteCmd(b backend) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "promote <email>",
		Short: "Give an account a role (admin by default)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !roles[role] {
				return fmt.Errorf("unknown role %q", role)
			}
			email := strings.ToLower(strings.TrimSpace(args[0]))

			repo, closeFn, err := b.accounts(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			account, err := repo.FindByEmail(cmd.Context(), email)
			if err != nil {
				return err
			}
			if account == nil {
				return fmt.Errorf("no account with email %s", email)
			}
			if err := repo.UpdateRole(cmd.Context(), account.ID.String(), role); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", email, role)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "admin", "role to grant (admin or buyer)")
	return cmd
}
