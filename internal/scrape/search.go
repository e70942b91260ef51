package scrape

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"editoria/internal/ai"
	"editoria/internal/core"
	"editoria/internal/jsonrepair"
	"editoria/internal/logger"
)

// SearchCache stores event-search results per (user, query). A nil
// entry means miss; expiry is the cache's concern.
type SearchCache interface {
	GetEventSearch(user, query string) (*core.EventCacheEntry, error)
	SaveEventSearch(user, query, payload string) error
}

// EventSearch answers free-text event queries with an LLM pass,
// serving repeated queries from the cache.
type EventSearch struct {
	gen   Generator
	cache SearchCache // Optional
	newID func() string
}

func NewEventSearch(gen Generator, cache SearchCache) *EventSearch {
	return &EventSearch{gen: gen, cache: cache, newID: uuid.NewString}
}

const searchPrompt = `Você pesquisa eventos culturais para um portal de Recife e região.
Liste eventos futuros que correspondam à busca abaixo.

Regras:
1. Normalize a data para "YYYY-MM-DD" ou "YYYY-MM-DD HH:MM:SS".
2. Classifique cada evento em exatamente uma categoria: %s.
3. Não invente eventos; omita entradas sem nome ou sem data.

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

BUSCA:
%s`

// Search resolves a query, cache first. The boolean reports whether the
// result came from the cache.
func (s *EventSearch) Search(ctx context.Context, user, query string) ([]core.NormalizedEvent, bool, error) {
	if events, ok := s.cached(user, query); ok {
		return events, true, nil
	}

	prompt := fmt.Sprintf(searchPrompt, categoryList(), query)
	result, err := s.gen.GenerateWithFallback(ctx, prompt, ai.Options{
		Temperature: 0.3,
		JSONMode:    true,
	})
	if err != nil {
		return nil, false, fmt.Errorf("searching events: %w", err)
	}

	var resp normalizedResponse
	if err := jsonrepair.ParseInto(result.Text, &resp); err != nil {
		return nil, false, fmt.Errorf("parsing event search response: %w", err)
	}

	events := resp.toEvents(s.newID)
	for i := range events {
		if len(events[i].SourceURLs) == 0 {
			events[i].SourceURLs = result.Sources
		}
	}

	s.save(user, query, events)
	logger.Info("Event search resolved",
		"user", user, "query", query, "events", len(events), "provider", result.Provider)
	return events, false, nil
}

func (s *EventSearch) cached(user, query string) ([]core.NormalizedEvent, bool) {
	if s.cache == nil {
		return nil, false
	}
	entry, err := s.cache.GetEventSearch(user, query)
	if err != nil || entry == nil {
		return nil, false
	}

	var events []core.NormalizedEvent
	if err := json.Unmarshal([]byte(entry.Payload), &events); err != nil {
		logger.Warn("Dropping unreadable cached search", "user", user, "query", query, "error", err.Error())
		return nil, false
	}
	return events, true
}

func (s *EventSearch) save(user, query string, events []core.NormalizedEvent) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(events)
	if err != nil {
		return
	}
	if err := s.cache.SaveEventSearch(user, query, string(payload)); err != nil {
		logger.Warn("Failed to cache event search", "user", user, "query", query, "error", err.Error())
	}
}
