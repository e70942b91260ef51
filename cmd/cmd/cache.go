package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the local cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show what the cache holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.close()

		stats, err := app.store.Stats()
		if err != nil {
			return err
		}

		fmt.Printf("Pages:          %d\n", stats.Pages)
		fmt.Printf("Event searches: %d\n", stats.EventSearches)
		fmt.Printf("Drafts:         %d\n", stats.Drafts)
		fmt.Printf("Analytics:      %d\n", stats.Analytics)
		fmt.Printf("Database size:  %.1f KB\n", float64(stats.FileSizeBytes)/1024)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cache tables (drafts are kept)",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.close()

		if err := app.store.Clear(); err != nil {
			return err
		}
		fmt.Println("Cache cleared")
		return nil
	},
}

var cacheCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove expired rows",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.close()

		if err := app.store.CleanupExpired(); err != nil {
			return err
		}
		fmt.Println("Expired entries removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd, cacheCleanupCmd)
}
