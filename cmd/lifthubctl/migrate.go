package main

import (
	"database/sql"
	"fmt"

	"github.com/DioGolang/lifthub/configs"
	"github.com/DioGolang/lifthub/internal/infra/database"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the students and outbox tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cmd.Flags().GetString("config-dir")
			if err != nil {
				return err
			}
			config, err := configs.LoadConfig(dir)
			if err != nil {
				return err
			}
			if config.DBDriver != "postgres" {
				return fmt.Errorf("migrate needs DB_DRIVER=postgres, got %q", config.DBDriver)
			}

			db, err := sql.Open("postgres", config.PostgresDSN())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}
