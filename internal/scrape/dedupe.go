package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"editoria/internal/ai"
	"editoria/internal/core"
	"editoria/internal/jsonrepair"
	"editoria/internal/logger"
)

// Generator is the slice of the AI orchestrator the deduplicator uses.
type Generator interface {
	GenerateWithFallback(ctx context.Context, prompt string, opts ai.Options) (*ai.FallbackResult, error)
}

// Deduplicator runs the batch pass that merges near-duplicate scraped
// events and normalizes their fields in a single LLM call.
type Deduplicator struct {
	gen   Generator
	newID func() string
}

func NewDeduplicator(gen Generator) *Deduplicator {
	return &Deduplicator{gen: gen, newID: uuid.NewString}
}

const dedupePrompt = `Você recebe eventos raspados de sites de venda de ingressos.
O mesmo evento pode aparecer mais de uma vez com pequenas variações de nome.

Tarefas:
1. Agrupe entradas que são o mesmo evento e una as listas de source_urls.
2. Normalize a data para "YYYY-MM-DD" ou "YYYY-MM-DD HH:MM:SS".
3. Classifique cada evento em exatamente uma categoria: %s.
4. Descarte entradas sem nome ou sem data aproveitável.

Responda somente com JSON neste formato:
{
  "events": [
    {
      "name": "...",
      "date": "YYYY-MM-DD HH:MM:SS",
      "location": "...",
      "category": "show",
      "description": "...",
      "image_url": "...",
      "source_urls": ["..."]
    }
  ]
}

EVENTOS RASPADOS:
%s`

type normalizedResponse struct {
	Events []struct {
		Name        string   `json:"name"`
		Date        string   `json:"date"`
		Location    string   `json:"location"`
		Category    string   `json:"category"`
		Description string   `json:"description"`
		ImageURL    string   `json:"image_url"`
		SourceURLs  []string `json:"source_urls"`
	} `json:"events"`
}

// Deduplicate merges and normalizes a batch of scraped events. An empty
// batch short-circuits without a model call.
func (d *Deduplicator) Deduplicate(ctx context.Context, events []core.ScrapedEvent) ([]core.NormalizedEvent, error) {
	if len(events) == 0 {
		return nil, nil
	}

	payload, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding scraped events: %w", err)
	}

	prompt := fmt.Sprintf(dedupePrompt, categoryList(), string(payload))
	result, err := d.gen.GenerateWithFallback(ctx, prompt, ai.Options{
		Temperature: 0.2,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("deduplicating events: %w", err)
	}

	var resp normalizedResponse
	if err := jsonrepair.ParseInto(result.Text, &resp); err != nil {
		return nil, fmt.Errorf("parsing deduplicated events: %w", err)
	}

	out := resp.toEvents(d.newID)

	logger.Info("Deduplicated scraped events",
		"input", len(events), "output", len(out), "provider", result.Provider)
	return out, nil
}

// toEvents converts a model response into normalized events, dropping
// entries without a usable name or date. The model was told to drop
// these; enforce it anyway.
func (r normalizedResponse) toEvents(newID func() string) []core.NormalizedEvent {
	var out []core.NormalizedEvent
	for _, e := range r.Events {
		name := strings.TrimSpace(e.Name)
		date := strings.TrimSpace(e.Date)
		if name == "" || date == "" {
			continue
		}
		out = append(out, core.NormalizedEvent{
			ID:          newID(),
			Name:        name,
			Date:        date,
			Location:    strings.TrimSpace(e.Location),
			Category:    parseCategory(e.Category),
			Description: strings.TrimSpace(e.Description),
			ImageURL:    e.ImageURL,
			SourceURLs:  e.SourceURLs,
		})
	}
	return out
}

func categoryList() string {
	names := make([]string, len(core.EventCategories))
	for i, c := range core.EventCategories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// parseCategory maps a model-reported category onto the fixed enum.
// Anything unrecognized lands in outros.
func parseCategory(s string) core.EventCategory {
	normalized := core.EventCategory(strings.ToLower(strings.TrimSpace(s)))
	for _, c := range core.EventCategories {
		if normalized == c {
			return c
		}
	}
	return core.CategoryOutros
}
