// Package facts runs the fact-verification pass that precedes article
// generation. The gate pulls only facts literally stated in the source
// text; anything unstated comes back null. Non-contradiction between the
// gate output and the final article is a prompt contract enforced on the
// generation side, not checked programmatically here.
package facts

import (
	"context"
	"fmt"
	"strings"

	"editoria/internal/ai"
	"editoria/internal/core"
	"editoria/internal/jsonrepair"
)

// Generator is the slice of the AI orchestrator the gate needs.
type Generator interface {
	GenerateWithFallback(ctx context.Context, prompt string, opts ai.Options) (*ai.FallbackResult, error)
}

// Gate extracts verifiable facts from a press release.
type Gate struct {
	gen Generator
}

func NewGate(gen Generator) *Gate {
	return &Gate{gen: gen}
}

const extractPrompt = `Extraia os fatos verificáveis do texto abaixo.

Regras:
- Retorne APENAS o que o texto afirma literalmente.
- NÃO infira, NÃO complete e NÃO invente nenhum dado.
- Qualquer campo que o texto não afirme deve ser null.
- Listas sem itens confirmados devem ser vazias.

Responda somente com JSON neste formato:
{
  "event_name": "nome do evento ou null",
  "event_date": "data exatamente como escrita no texto ou null",
  "event_location": "local/cidade ou null",
  "organizers": ["entidades organizadoras citadas"],
  "key_people": ["artistas ou pessoas-chave citadas"]
}

Texto:
%s`

// Extract runs a single low-temperature extraction call over the press
// release. An empty model response means no facts, reported as (nil, nil);
// the caller decides whether that blocks generation.
func (g *Gate) Extract(ctx context.Context, pressRelease string) (*core.ExtractedFacts, error) {
	if strings.TrimSpace(pressRelease) == "" {
		return nil, nil
	}

	result, err := g.gen.GenerateWithFallback(ctx, fmt.Sprintf(extractPrompt, pressRelease), ai.Options{
		Temperature: 0.1,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("extracting facts: %w", err)
	}
	if strings.TrimSpace(result.Text) == "" {
		return nil, nil
	}

	var facts core.ExtractedFacts
	if err := jsonrepair.ParseInto(result.Text, &facts); err != nil {
		return nil, fmt.Errorf("parsing extracted facts: %w", err)
	}

	normalize(&facts)
	return &facts, nil
}

// normalize trims whitespace and drops empty entries; a whitespace-only
// field is the same as unstated.
func normalize(facts *core.ExtractedFacts) {
	facts.EventName = cleanField(facts.EventName)
	facts.EventDate = cleanField(facts.EventDate)
	facts.EventLocation = cleanField(facts.EventLocation)
	facts.Organizers = cleanList(facts.Organizers)
	facts.KeyPeople = cleanList(facts.KeyPeople)
}

func cleanField(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return nil
	}
	return &trimmed
}

func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
