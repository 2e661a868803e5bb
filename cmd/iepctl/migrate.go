package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/iep-hero-api/pkg/database"
)

func newMigrateCmd() *cobra.Command {
	var statusOnly bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, logr, db, err := environment()
			if err != nil {
				return err
			}
			defer db.Close()
			defer logr.Sync() //nolint:errcheck

			ctx := cmd.Context()
			if !statusOnly {
				if err := database.Migrate(ctx, db.DB, logr); err != nil {
					return err
				}
			}
			version, err := database.MigrationVersion(ctx, db.DB)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}
	cmd.Flags().BoolVar(&statusOnly, "status", false, "print the current schema version without migrating")
	return cmd
}
