package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"editoria/internal/scrape"
)

var (
	eventsUser    string
	eventsRefresh bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Discover upcoming events",
}

var eventsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search upcoming events matching a free-text query",
	Long: `Resolves a free-text query ("shows em recife em setembro") into a list
of normalized events via a model pass. Results are cached per user and
query; repeated searches are served from the cache until the entry
expires. --refresh drops the cached entry first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]

		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.close()

		if eventsRefresh {
			if err := app.store.InvalidateEventSearch(eventsUser, query); err != nil {
				return err
			}
		}

		search := scrape.NewEventSearch(app.orch, app.store)
		events, cached, err := search.Search(cmd.Context(), eventsUser, query)
		if err != nil {
			return err
		}
		app.recordAnalytics("events.search",
			fmt.Sprintf(`{"user":%q,"query":%q,"events":%d,"cached":%t}`,
				eventsUser, query, len(events), cached))

		payload, err := json.MarshalIndent(events, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding events: %w", err)
		}
		if cached {
			fmt.Fprintln(os.Stderr, "(cached result)")
		}
		fmt.Println(string(payload))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsSearchCmd)

	eventsCmd.PersistentFlags().StringVar(&eventsUser, "user", "local", "user the cached search belongs to")
	eventsSearchCmd.Flags().BoolVar(&eventsRefresh, "refresh", false, "drop the cached entry and search again")
}
