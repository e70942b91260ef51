package drafts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"editoria/internal/ai"
	"editoria/internal/core"
	"editoria/internal/jsonrepair"
)

// HistoriaGenerator produces long-form narrative drafts about the
// cultural history of a place, tradition or movement.
type HistoriaGenerator struct {
	gen Generator

	now   func() time.Time
	newID func() string
}

func NewHistoriaGenerator(gen Generator) *HistoriaGenerator {
	return &HistoriaGenerator{gen: gen, now: time.Now, newID: uuid.NewString}
}

const historiaPrompt = `Você é um cronista de um portal de cultura de Recife.
Escreva uma história em tom narrativo, em português, sobre o tema abaixo.

Regras de estilo:
- Corpo em HTML com mais de %d palavras, tom narrativo e envolvente.
- A palavra-chave de foco "%s" deve aparecer no início do texto e em subtítulos.
- Meta description entre %d e %d caracteres.
- De %d a %d tags e exatamente 1 categoria.
- Fontes somente como links HTML; nunca use marcadores como [1].

Responda somente com JSON neste formato:
{
  "title": "...",
  "body": "<p>...</p>",
  "slug": "...",
  "tags": ["..."],
  "category": "...",
  "meta_description": "...",
  "focus_keyword": "..."
}

TEMA:
%s`

type historiaResponse struct {
	Title           string   `json:"title"`
	Body            string   `json:"body"`
	Slug            string   `json:"slug"`
	Tags            []string `json:"tags"`
	Category        string   `json:"category"`
	MetaDescription string   `json:"meta_description"`
	FocusKeyword    string   `json:"focus_keyword"`
}

func (g *HistoriaGenerator) Generate(ctx context.Context, topic, keyword string) (*core.HistoriaDraft, error) {
	prompt := fmt.Sprintf(historiaPrompt,
		minHistoriaWords, keyword, metaMinLen, metaMaxLen, minTags, maxTags, topic)

	result, err := g.gen.GenerateWithFallback(ctx, prompt, ai.Options{
		Temperature: 0.8,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("generating historia: %w", err)
	}

	var resp historiaResponse
	if err := jsonrepair.ParseInto(result.Text, &resp); err != nil {
		return nil, fmt.Errorf("parsing historia response: %w", err)
	}

	draft := &core.HistoriaDraft{
		ID:              g.newID(),
		Title:           strings.TrimSpace(resp.Title),
		Body:            stripCitationMarkers(resp.Body),
		Slug:            resp.Slug,
		Tags:            normalizeTags(resp.Tags, "historia"),
		Category:        strings.TrimSpace(resp.Category),
		MetaDescription: strings.TrimSpace(resp.MetaDescription),
		FocusKeyword:    strings.TrimSpace(resp.FocusKeyword),
		Provider:        result.Provider,
		GeneratedAt:     g.now(),
	}
	if draft.Slug == "" {
		draft.Slug = slugify(draft.Title)
	}
	if draft.FocusKeyword == "" {
		draft.FocusKeyword = keyword
	}

	reportBodyLength(draft.Body, "historia", minHistoriaWords)
	reportMetaLength(draft.MetaDescription, "historia")
	return draft, nil
}
