package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"editoria/internal/config"
	"editoria/internal/scrape"
)

var scrapeDedupe bool

var scrapeCmd = &cobra.Command{
	Use:   "scrape [urls...]",
	Short: "Scrape event pages from ticketing sites",
	Long: `Fetches each URL, extracts the event data (structured JSON-LD first,
then site-specific selectors, then an OpenGraph fallback) and prints the
results as JSON. A broken page is skipped, not fatal.

With --dedupe the scraped batch goes through a model pass that merges
near-duplicates, normalizes dates and assigns categories.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.close()

		fetcher := scrape.NewFetcher(
			config.ParseDuration(app.cfg.Scraper.Timeout, 0),
			app.cfg.Scraper.UserAgent)
		scraper := scrape.NewScraper(fetcher, app.store)

		events := scraper.ScrapeAll(cmd.Context(), args)
		app.recordAnalytics("scrape.batch",
			fmt.Sprintf(`{"urls":%d,"extracted":%d}`, len(args), len(events)))

		var out any = events
		if scrapeDedupe {
			normalized, err := scrape.NewDeduplicator(app.orch).Deduplicate(cmd.Context(), events)
			if err != nil {
				return err
			}
			out = normalized
		}

		payload, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding events: %w", err)
		}
		fmt.Println(string(payload))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	scrapeCmd.Flags().BoolVar(&scrapeDedupe, "dedupe", false, "merge and normalize the batch with a model pass")
}
