package admin

import (
	"github.com/cloo-solutions/dupefinder/internal/database"
	"github.com/spf13/cobra"
)

// MigrateCmd returns the migrate command group
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}
	cmd.PersistentFlags().String("migrations", database.DefaultMigrationsPath, "Path to the migrations directory")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			path, _ := cmd.Flags().GetString("migrations")
			return database.RunMigrations(rt.cfg.DatabaseURL, path, rt.logger)
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			path, _ := cmd.Flags().GetString("migrations")
			steps, _ := cmd.Flags().GetInt("steps")
			return database.RollbackMigrations(rt.cfg.DatabaseURL, path, steps, rt.logger)
		},
	}
	down.Flags().Int("steps", 1, "Number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}
