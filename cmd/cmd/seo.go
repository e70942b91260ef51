package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"editoria/internal/core"
	"editoria/internal/seo"
)

var seoKeyword string

var seoCmd = &cobra.Command{
	Use:   "seo <draft.json>",
	Short: "Score an article draft against the SEO rule battery",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading draft file: %w", err)
		}

		var draft core.ArticleDraft
		if err := json.Unmarshal(data, &draft); err != nil {
			return fmt.Errorf("decoding draft: %w", err)
		}

		keyword := draft.FocusKeyword
		if seoKeyword != "" {
			keyword = seoKeyword
		}

		analysis := seo.Analyze(seo.Input{
			Title:            draft.Title,
			ContentHTML:      draft.Body,
			FocusKeyword:     keyword,
			URLSlug:          draft.Slug,
			ImageAltText:     draft.ImageAltText,
			HasFeaturedImage: draft.ImageAltText != "",
		})

		fmt.Printf("Score: %d/100\n\n", analysis.Score)
		for _, check := range analysis.Checks {
			marker := map[core.SeoStatus]string{
				core.SeoPass:    "ok",
				core.SeoFail:    "FAIL",
				core.SeoNeutral: "--",
			}[check.Status]
			fmt.Printf("  [%-4s] %-26s %s\n", marker, check.Name, check.Feedback)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seoCmd)
	seoCmd.Flags().StringVarP(&seoKeyword, "keyword", "k", "", "override the draft's focus keyword")
}
