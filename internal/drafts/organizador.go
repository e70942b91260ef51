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

// OrganizerGenerator produces organizer-profile drafts. Contact fields
// the model cannot confirm stay null; fabrication is a prompt violation
// and null-normalization catches the common evasions.
type OrganizerGenerator struct {
	gen Generator

	now   func() time.Time
	newID func() string
}

func NewOrganizerGenerator(gen Generator) *OrganizerGenerator {
	return &OrganizerGenerator{gen: gen, now: time.Now, newID: uuid.NewString}
}

const organizerPrompt = `Você mantém o cadastro de organizadores de eventos de um portal cultural de Recife.
Escreva o perfil do organizador abaixo em português.

Regras:
- Bio em HTML, tom informativo.
- Campos de contato (website, instagram, email, telefone, cidade) APENAS se
  confirmados pelo material; qualquer campo não confirmado deve ser null.
- NUNCA invente contatos, redes sociais ou endereços.

Responda somente com JSON neste formato:
{
  "name": "...",
  "bio": "<p>...</p>",
  "website": null,
  "instagram": null,
  "email": null,
  "phone": null,
  "city": null
}

ORGANIZADOR E MATERIAL DISPONÍVEL:
%s`

type organizerResponse struct {
	Name      string  `json:"name"`
	Bio       string  `json:"bio"`
	Website   *string `json:"website"`
	Instagram *string `json:"instagram"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	City      *string `json:"city"`
}

func (g *OrganizerGenerator) Generate(ctx context.Context, material string) (*core.OrganizerDraft, error) {
	result, err := g.gen.GenerateWithFallback(ctx, fmt.Sprintf(organizerPrompt, material), ai.Options{
		Temperature: 0.4,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("generating organizer profile: %w", err)
	}

	var resp organizerResponse
	if err := jsonrepair.ParseInto(result.Text, &resp); err != nil {
		return nil, fmt.Errorf("parsing organizer response: %w", err)
	}

	return &core.OrganizerDraft{
		ID:          g.newID(),
		Name:        strings.TrimSpace(resp.Name),
		Bio:         stripCitationMarkers(resp.Bio),
		Website:     cleanOptional(resp.Website),
		Instagram:   cleanOptional(resp.Instagram),
		Email:       cleanOptional(resp.Email),
		Phone:       cleanOptional(resp.Phone),
		City:        cleanOptional(resp.City),
		Provider:    result.Provider,
		GeneratedAt: g.now(),
	}, nil
}
