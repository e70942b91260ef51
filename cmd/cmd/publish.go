package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"editoria/internal/core"
	"editoria/internal/logger"
	"editoria/internal/wordpress"
)

var (
	publishFile   string
	publishStatus string
	publishImage  string
)

var publishCmd = &cobra.Command{
	Use:   "publish <draft-id>",
	Short: "Publish an article draft to the WordPress site",
	Long: `Sends an article draft to the configured WordPress site: resolves the
category and tags to term IDs (creating missing ones), optionally uploads
a featured image, and creates the post. Drafts are read from the local
store by ID, or from a JSON file with --file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.close()

		draft, err := loadArticleDraft(app, args)
		if err != nil {
			return err
		}

		wp := app.cfg.WordPress
		if wp.SiteURL == "" || wp.Username == "" || wp.Password == "" {
			return fmt.Errorf("wordpress.site_url, wordpress.username and wordpress.app_password must be configured")
		}
		client := wordpress.NewClient(wp.SiteURL, wp.Username, wp.Password)

		post, err := publishDraft(cmd.Context(), client, draft)
		if err != nil {
			return err
		}

		app.recordAnalytics("publish.post",
			fmt.Sprintf(`{"draft_id":%q,"post_id":%d}`, draft.ID, post.ID))
		fmt.Printf("Created post %d (%s): %s\n", post.ID, post.Status, post.Link)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().StringVarP(&publishFile, "file", "f", "", "publish a draft JSON file instead of a stored draft")
	publishCmd.Flags().StringVar(&publishStatus, "status", "draft", "post status (draft or publish)")
	publishCmd.Flags().StringVar(&publishImage, "image", "", "image file to upload as featured media")
}

func loadArticleDraft(app *app, args []string) (*core.ArticleDraft, error) {
	var payload []byte
	switch {
	case publishFile != "":
		data, err := os.ReadFile(publishFile)
		if err != nil {
			return nil, fmt.Errorf("reading draft file: %w", err)
		}
		payload = data
	case len(args) == 1:
		kind, stored, err := app.store.GetDraft(args[0])
		if err != nil {
			return nil, err
		}
		if kind != core.ContentArticle {
			return nil, fmt.Errorf("draft %s is a %s; only articles can be published", args[0], kind)
		}
		payload = []byte(stored)
	default:
		return nil, fmt.Errorf("provide a draft ID or --file")
	}

	var draft core.ArticleDraft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, fmt.Errorf("decoding draft: %w", err)
	}
	return &draft, nil
}

func publishDraft(ctx context.Context, client *wordpress.Client, draft *core.ArticleDraft) (*wordpress.Post, error) {
	post := wordpress.NewPost{
		Title:   draft.Title,
		Content: draft.Body,
		Excerpt: draft.MetaDescription,
		Slug:    draft.Slug,
		Status:  publishStatus,
	}

	if draft.Category != "" {
		term, err := client.EnsureTerm(ctx, "categories", draft.Category)
		if err != nil {
			return nil, fmt.Errorf("resolving category %q: %w", draft.Category, err)
		}
		post.Categories = []int{term.ID}
	}
	for _, tag := range draft.Tags {
		term, err := client.EnsureTerm(ctx, "tags", tag)
		if err != nil {
			return nil, fmt.Errorf("resolving tag %q: %w", tag, err)
		}
		post.Tags = append(post.Tags, term.ID)
	}

	if publishImage != "" {
		media, err := uploadFeaturedImage(ctx, client)
		if err != nil {
			return nil, err
		}
		post.FeaturedMedia = media.ID
		logger.Info("Uploaded featured image", "media_id", media.ID, "url", media.SourceURL)
	}

	return client.CreatePost(ctx, "posts", post)
}

func uploadFeaturedImage(ctx context.Context, client *wordpress.Client) (*wordpress.Media, error) {
	file, err := os.Open(publishImage)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer file.Close()

	contentType := "image/jpeg"
	switch strings.ToLower(filepath.Ext(publishImage)) {
	case ".png":
		contentType = "image/png"
	case ".webp":
		contentType = "image/webp"
	case ".gif":
		contentType = "image/gif"
	}

	return client.UploadMedia(ctx, filepath.Base(publishImage), contentType, file)
}
