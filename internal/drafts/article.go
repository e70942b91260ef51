package drafts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"editoria/internal/ai"
	"editoria/internal/core"
	"editoria/internal/jsonrepair"
)

// FactsExtractor is the fact-verification gate the article flow runs
// before the main generation pass.
type FactsExtractor interface {
	Extract(ctx context.Context, pressRelease string) (*core.ExtractedFacts, error)
}

// ArticleGenerator produces news-article drafts from press releases and
// from curated events.
type ArticleGenerator struct {
	gen  Generator
	gate FactsExtractor

	now   func() time.Time
	newID func() string
}

func NewArticleGenerator(gen Generator, gate FactsExtractor) *ArticleGenerator {
	return &ArticleGenerator{
		gen:   gen,
		gate:  gate,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

const articlePrompt = `Você é um redator de um portal de cultura e eventos de Recife.
Escreva uma matéria jornalística em português a partir do material abaixo.

FATOS VERIFICADOS (não contradiga nenhum deles; não invente datas, locais ou nomes além destes):
%s

Regras de estilo:
- Corpo em HTML com mais de %d palavras.
- A palavra-chave de foco "%s" deve aparecer nos primeiros parágrafos e em ao menos um subtítulo (h2/h3).
- Meta description entre %d e %d caracteres.
- Texto alternativo da imagem deve conter a palavra-chave.
- Exatamente 1 categoria e de %d a %d tags.
- Fontes somente como links HTML (<a href="...">); nunca use marcadores como [1].

Responda somente com JSON neste formato:
{
  "title": "...",
  "body": "<p>...</p>",
  "slug": "...",
  "tags": ["..."],
  "category": "...",
  "meta_description": "...",
  "focus_keyword": "...",
  "image_alt_text": "..."
}

MATERIAL DE ORIGEM:
%s`

type articleResponse struct {
	Title           string   `json:"title"`
	Body            string   `json:"body"`
	Slug            string   `json:"slug"`
	Tags            []string `json:"tags"`
	Category        string   `json:"category"`
	MetaDescription string   `json:"meta_description"`
	FocusKeyword    string   `json:"focus_keyword"`
	ImageAltText    string   `json:"image_alt_text"`
}

// FromPressRelease runs the full article flow: facts gate first, then the
// main generation pass with the verified facts embedded in the prompt.
// Without verified facts the flow aborts with ErrFactsUnverified.
func (g *ArticleGenerator) FromPressRelease(ctx context.Context, pressRelease, keyword string) (*core.ArticleDraft, error) {
	facts, err := g.gate.Extract(ctx, pressRelease)
	if err != nil {
		return nil, fmt.Errorf("fact verification: %w", err)
	}
	if facts == nil {
		return nil, ErrFactsUnverified
	}

	factsJSON, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding facts: %w", err)
	}

	prompt := fmt.Sprintf(articlePrompt,
		string(factsJSON),
		minArticleWords, keyword, metaMinLen, metaMaxLen, minTags, maxTags,
		pressRelease)

	draft, err := g.generate(ctx, prompt, keyword)
	if err != nil {
		return nil, err
	}

	// The gate's output wins over anything the main pass claims.
	draft.VerifiedFacts = facts
	return draft, nil
}

// FromEvent builds an article draft from an already-normalized event.
// The event fields play the role of verified facts.
func (g *ArticleGenerator) FromEvent(ctx context.Context, event core.NormalizedEvent, keyword string) (*core.ArticleDraft, error) {
	eventJSON, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding event: %w", err)
	}

	prompt := fmt.Sprintf(articlePrompt,
		string(eventJSON),
		minArticleWords, keyword, metaMinLen, metaMaxLen, minTags, maxTags,
		event.Description)

	draft, err := g.generate(ctx, prompt, keyword)
	if err != nil {
		return nil, err
	}

	draft.EventDetails = &core.EventDetails{
		Name:     event.Name,
		Date:     event.Date,
		Location: event.Location,
	}
	draft.SourceURLs = append(draft.SourceURLs, event.SourceURLs...)
	return draft, nil
}

func (g *ArticleGenerator) generate(ctx context.Context, prompt, keyword string) (*core.ArticleDraft, error) {
	result, err := g.gen.GenerateWithFallback(ctx, prompt, ai.Options{
		Temperature: 0.7,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("generating article: %w", err)
	}

	var resp articleResponse
	if err := jsonrepair.ParseInto(result.Text, &resp); err != nil {
		return nil, fmt.Errorf("parsing article response: %w", err)
	}

	draft := &core.ArticleDraft{
		ID:              g.newID(),
		Title:           strings.TrimSpace(resp.Title),
		Body:            stripCitationMarkers(resp.Body),
		Slug:            resp.Slug,
		Tags:            normalizeTags(resp.Tags, "article"),
		Category:        strings.TrimSpace(resp.Category),
		MetaDescription: strings.TrimSpace(resp.MetaDescription),
		FocusKeyword:    strings.TrimSpace(resp.FocusKeyword),
		ImageAltText:    strings.TrimSpace(resp.ImageAltText),
		SourceURLs:      result.Sources,
		Provider:        result.Provider,
		GeneratedAt:     g.now(),
	}
	if draft.Slug == "" {
		draft.Slug = slugify(draft.Title)
	}
	if draft.FocusKeyword == "" {
		draft.FocusKeyword = keyword
	}

	reportBodyLength(draft.Body, "article", minArticleWords)
	reportMetaLength(draft.MetaDescription, "article")
	return draft, nil
}
