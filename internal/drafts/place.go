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

// PlaceGenerator produces venue drafts under the same null-over-
// fabrication rule as organizer profiles.
type PlaceGenerator struct {
	gen Generator

	now   func() time.Time
	newID func() string
}

func NewPlaceGenerator(gen Generator) *PlaceGenerator {
	return &PlaceGenerator{gen: gen, now: time.Now, newID: uuid.NewString}
}

const placePrompt = `Você mantém o guia de locais e casas de show de um portal cultural de Recife.
Escreva a descrição do local abaixo em português.

Regras:
- Descrição em HTML, tom de guia cultural.
- Campos estruturados (endereço, website, instagram, telefone, horário de
  funcionamento) APENAS se confirmados pelo material; não confirmado = null.
- NUNCA invente endereço, contato ou horário.

Responda somente com JSON neste formato:
{
  "name": "...",
  "description": "<p>...</p>",
  "address": null,
  "website": null,
  "instagram": null,
  "phone": null,
  "opening_hours": null
}

LOCAL E MATERIAL DISPONÍVEL:
%s`

type placeResponse struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Address      *string `json:"address"`
	Website      *string `json:"website"`
	Instagram    *string `json:"instagram"`
	Phone        *string `json:"phone"`
	OpeningHours *string `json:"opening_hours"`
}

func (g *PlaceGenerator) Generate(ctx context.Context, material string) (*core.PlaceDraft, error) {
	result, err := g.gen.GenerateWithFallback(ctx, fmt.Sprintf(placePrompt, material), ai.Options{
		Temperature: 0.4,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("generating place description: %w", err)
	}

	var resp placeResponse
	if err := jsonrepair.ParseInto(result.Text, &resp); err != nil {
		return nil, fmt.Errorf("parsing place response: %w", err)
	}

	return &core.PlaceDraft{
		ID:           g.newID(),
		Name:         strings.TrimSpace(resp.Name),
		Description:  stripCitationMarkers(resp.Description),
		Address:      cleanOptional(resp.Address),
		Website:      cleanOptional(resp.Website),
		Instagram:    cleanOptional(resp.Instagram),
		Phone:        cleanOptional(resp.Phone),
		OpeningHours: cleanOptional(resp.OpeningHours),
		Provider:     result.Provider,
		GeneratedAt:  g.now(),
	}, nil
}
