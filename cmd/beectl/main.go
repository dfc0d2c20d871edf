// Command beectl administers a spelling bee database from the shell.
package main

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"spellingbee/internal/config"
	"spellingbee/internal/database"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "beectl",
		Short:         "Administer the spelling bee database",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		newMigrateCmd(),
		newCreateAdminCmd(),
		newExportCmd(),
		newImportCmd(),
		newSeedWordsCmd(),
		newLeaderboardCmd(),
	)
	return root
}

// openDB connects with the server's configuration and brings the schema up to date
func openDB() (*database.DB, error) {
	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var migrations fs.FS = database.Migrations
	if cfg.MigrationsPath != "" {
		migrations = os.DirFS(cfg.MigrationsPath)
	}
	if err := db.RunMigrations(migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations completed successfully")
			return nil
		},
	}
}
