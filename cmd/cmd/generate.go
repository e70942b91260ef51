package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"editoria/internal/core"
	"editoria/internal/drafts"
	"editoria/internal/facts"
)

var (
	generateFile    string
	generateText    string
	generateEvent   string
	generateKeyword string
	generateSave    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a content draft from source material",
}

var generateArticleCmd = &cobra.Command{
	Use:   "article",
	Short: "Generate a news article from a press release or a scraped event",
	Long: `Generates a news article draft. Press-release text (--file/--text) first
goes through a fact-verification pass; generation aborts when no
verifiable facts come back. With --event the draft is written from a
normalized event JSON file produced by the scrape flow, whose fields
stand in for the verified facts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			source string
			event  *core.NormalizedEvent
			err    error
		)
		if generateEvent != "" {
			event, err = loadNormalizedEvent(generateEvent)
		} else {
			source, err = sourceMaterial()
		}
		if err != nil {
			return err
		}

		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.close()

		gate := facts.NewGate(app.orch)
		generator := drafts.NewArticleGenerator(app.orch, gate)

		var draft *core.ArticleDraft
		if event != nil {
			draft, err = generator.FromEvent(cmd.Context(), *event, generateKeyword)
		} else {
			draft, err = generator.FromPressRelease(cmd.Context(), source, generateKeyword)
		}
		if err != nil {
			return err
		}

		return emitDraft(app, draft.ID, core.ContentArticle, draft)
	},
}

var generateHistoriaCmd = &cobra.Command{
	Use:   "historia",
	Short: "Generate a long-form narrative piece about a topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := sourceMaterial()
		if err != nil {
			return err
		}

		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.close()

		draft, err := drafts.NewHistoriaGenerator(app.orch).Generate(cmd.Context(), source, generateKeyword)
		if err != nil {
			return err
		}

		return emitDraft(app, draft.ID, core.ContentHistoria, draft)
	},
}

var generateOrganizadorCmd = &cobra.Command{
	Use:   "organizador",
	Short: "Generate an event-organizer profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := sourceMaterial()
		if err != nil {
			return err
		}

		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.close()

		draft, err := drafts.NewOrganizerGenerator(app.orch).Generate(cmd.Context(), source)
		if err != nil {
			return err
		}

		return emitDraft(app, draft.ID, core.ContentOrganizador, draft)
	},
}

var generatePlaceCmd = &cobra.Command{
	Use:   "place",
	Short: "Generate a venue description",
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := sourceMaterial()
		if err != nil {
			return err
		}

		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.close()

		draft, err := drafts.NewPlaceGenerator(app.orch).Generate(cmd.Context(), source)
		if err != nil {
			return err
		}

		return emitDraft(app, draft.ID, core.ContentPlace, draft)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.AddCommand(generateArticleCmd, generateHistoriaCmd, generateOrganizadorCmd, generatePlaceCmd)

	generateCmd.PersistentFlags().StringVarP(&generateFile, "file", "f", "", "file with the source material")
	generateCmd.PersistentFlags().StringVarP(&generateText, "text", "t", "", "source material as inline text")
	generateCmd.PersistentFlags().StringVarP(&generateKeyword, "keyword", "k", "", "focus keyword for the draft")
	generateCmd.PersistentFlags().BoolVar(&generateSave, "save", true, "persist the draft in the local store")

	generateArticleCmd.Flags().StringVar(&generateEvent, "event", "", "JSON file with a normalized event to write about")
}

func sourceMaterial() (string, error) {
	if generateFile != "" {
		data, err := os.ReadFile(generateFile)
		if err != nil {
			return "", fmt.Errorf("reading source file: %w", err)
		}
		return string(data), nil
	}
	if strings.TrimSpace(generateText) != "" {
		return generateText, nil
	}
	return "", fmt.Errorf("provide source material with --file or --text")
}

// loadNormalizedEvent reads a normalized event, as emitted by the scrape
// flow, from a JSON file.
func loadNormalizedEvent(path string) (*core.NormalizedEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading event file: %w", err)
	}

	var event core.NormalizedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("parsing event file: %w", err)
	}
	if strings.TrimSpace(event.Name) == "" || strings.TrimSpace(event.Date) == "" {
		return nil, fmt.Errorf("event file must carry at least name and date")
	}
	return &event, nil
}

// emitDraft prints the draft JSON and optionally persists it for the
// publish flow.
func emitDraft(app *app, id string, kind core.ContentType, draft any) error {
	payload, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}

	if generateSave {
		if err := app.store.SaveDraft(id, kind, string(payload)); err != nil {
			return err
		}
	}
	app.recordAnalytics("generate."+string(kind), fmt.Sprintf(`{"draft_id":%q}`, id))

	fmt.Println(string(payload))
	return nil
}
