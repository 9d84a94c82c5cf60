package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/storage/db"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|version]",
	Short:     "Manage the Postgres session schema",
	Long:      "Apply, roll back or report the embedded session-store migrations. DATABASE_URL (or --db-url) selects the database.",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "version"},
	RunE:      runMigrate,
}

var migrateDatabaseURL string

func init() {
	migrateCmd.Flags().StringVar(&migrateDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL)")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, args []string) error {
	action := "up"
	if len(args) == 1 {
		action = args[0]
	}
	url := migrateDatabaseURL
	if url == "" {
		url = config.Load().DatabaseURL
	}
	if url == "" {
		return fmt.Errorf("database URL is required (set DATABASE_URL or use --db-url)")
	}

	ctx := context.Background()
	sqlDB, err := db.Connect(ctx, url, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}
	defer sqlDB.Close()

	switch action {
	case "down":
		return db.RollbackMigration(ctx, sqlDB)
	case "version":
		v, err := db.MigrationVersion(ctx, sqlDB)
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	default:
		return db.RunMigrations(ctx, sqlDB)
	}
}
