package main

import (
	"fmt"

	"logiscore/internal/database"
	"logiscore/migrations"

	"github.com/spf13/cobra"
)

func newMigrateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer closeDB(db)

			applied, err := database.NewMigrationExecutor(db.DB).Run(cmd.Context(), migrations.FS)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "Schema is up to date")
				return nil
			}
			for _, m := range applied {
				fmt.Fprintf(out, "applied %s %s\n", m.Version, m.Title)
			}
			return nil
		},
	}
}
