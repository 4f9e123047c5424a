package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkachan/workua-toolkit/internal/config"
	"github.com/dkachan/workua-toolkit/internal/db"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the PostgreSQL resume store",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the resume schema if it does not exist",
	RunE: withStore(func(cmd *cobra.Command, store *db.DB) error {
		if err := store.Migrate(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Schema is up to date")
		return nil
	}),
}

var dbDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop the resume schema and all stored data",
	RunE: withStore(func(cmd *cobra.Command, store *db.DB) error {
		if err := store.Drop(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Schema dropped")
		return nil
	}),
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show resume store row counts",
	RunE: withStore(func(cmd *cobra.Command, store *db.DB) error {
		stats, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Total:       %d\n", stats.Total)
		fmt.Printf("Parsed:      %d\n", stats.Parsed)
		fmt.Printf("Processed:   %d\n", stats.Processed)
		fmt.Printf("Unprocessed: %d\n", stats.Unprocessed)
		return nil
	}),
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd, dbDropCmd, dbStatsCmd)
	rootCmd.AddCommand(dbCmd)
}

func withStore(fn func(cmd *cobra.Command, store *db.DB) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		store, err := db.Connect(cmd.Context(), settings.DB.URL())
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(cmd, store)
	}
}
