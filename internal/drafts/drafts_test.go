package drafts

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"editoria/internal/ai"
	"editoria/internal/core"
)

type stubGenerator struct {
	text    string
	err     error
	prompts []string
}

func (s *stubGenerator) GenerateWithFallback(ctx context.Context, prompt string, opts ai.Options) (*ai.FallbackResult, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return nil, s.err
	}
	return &ai.FallbackResult{Text: s.text, Provider: "stub", Sources: []string{"https://example.com/fonte"}}, nil
}

type stubGate struct {
	facts *core.ExtractedFacts
	err   error
	calls int
}

func (s *stubGate) Extract(ctx context.Context, pressRelease string) (*core.ExtractedFacts, error) {
	s.calls++
	return s.facts, s.err
}

func strPtr(s string) *string { return &s }

func fixedArticleGenerator(gen Generator, gate FactsExtractor) *ArticleGenerator {
	g := NewArticleGenerator(gen, gate)
	g.now = func() time.Time { return time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC) }
	g.newID = func() string { return "draft-1" }
	return g
}

const articleJSON = `{
	"title": "Festival de Inverno confirma programação",
	"body": "<p>O festival acontece em julho [1] com shows gratuitos.</p>",
	"slug": "",
	"tags": ["Festival", "festival", "música", "garanhuns", "inverno", "agenda", "extra"],
	"category": "festival",
	"meta_description": "Programação completa do festival.",
	"focus_keyword": "",
	"image_alt_text": "Palco do festival"
}`

func TestArticleFlowAbortsWithoutVerifiedFacts(t *testing.T) {
	gen := &stubGenerator{text: articleJSON}
	gate := &stubGate{facts: nil}

	_, err := fixedArticleGenerator(gen, gate).FromPressRelease(context.Background(), "texto vago", "festival")
	if !errors.Is(err, ErrFactsUnverified) {
		t.Fatalf("Expected ErrFactsUnverified, got %v", err)
	}
	if len(gen.prompts) != 0 {
		t.Errorf("Expected no generation call without verified facts, got %d", len(gen.prompts))
	}
}

func TestArticleFlowPropagatesGateFailure(t *testing.T) {
	gen := &stubGenerator{text: articleJSON}
	gate := &stubGate{err: errors.New("providers down")}

	_, err := fixedArticleGenerator(gen, gate).FromPressRelease(context.Background(), "texto", "festival")
	if err == nil {
		t.Fatal("Expected gate failure to propagate")
	}
	if len(gen.prompts) != 0 {
		t.Errorf("Expected no generation call after gate failure, got %d", len(gen.prompts))
	}
}

func TestArticleCarriesGateFactsUnchanged(t *testing.T) {
	facts := &core.ExtractedFacts{
		EventName: strPtr("Festival de Inverno"),
		EventDate: strPtr("12 de julho de 2026"),
	}
	gen := &stubGenerator{text: articleJSON}
	gate := &stubGate{facts: facts}

	draft, err := fixedArticleGenerator(gen, gate).FromPressRelease(context.Background(), "release", "festival")
	if err != nil {
		t.Fatalf("Expected article generation to succeed, got %v", err)
	}
	if draft.VerifiedFacts != facts {
		t.Error("Expected the gate's facts attached to the draft as-is")
	}
	if *draft.VerifiedFacts.EventDate != "12 de julho de 2026" {
		t.Errorf("Expected gate date preserved, got %s", *draft.VerifiedFacts.EventDate)
	}
}

func TestArticlePromptEmbedsFactsAndSource(t *testing.T) {
	gate := &stubGate{facts: &core.ExtractedFacts{EventName: strPtr("Sarau do Coque")}}
	gen := &stubGenerator{text: articleJSON}

	if _, err := fixedArticleGenerator(gen, gate).FromPressRelease(context.Background(), "release do sarau", "sarau"); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	prompt := gen.prompts[0]
	if !strings.Contains(prompt, "Sarau do Coque") {
		t.Error("Expected verified facts embedded in the prompt")
	}
	if !strings.Contains(prompt, "release do sarau") {
		t.Error("Expected the press release embedded in the prompt")
	}
}

func TestArticleStripsCitationMarkers(t *testing.T) {
	gate := &stubGate{facts: &core.ExtractedFacts{}}
	gen := &stubGenerator{text: articleJSON}

	draft, err := fixedArticleGenerator(gen, gate).FromPressRelease(context.Background(), "release", "festival")
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if strings.Contains(draft.Body, "[1]") {
		t.Errorf("Expected citation markers removed, got %q", draft.Body)
	}
}

func TestArticleNormalizesTagsAndSlug(t *testing.T) {
	gate := &stubGate{facts: &core.ExtractedFacts{}}
	gen := &stubGenerator{text: articleJSON}

	draft, err := fixedArticleGenerator(gen, gate).FromPressRelease(context.Background(), "release", "festival")
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if len(draft.Tags) != 5 {
		t.Errorf("Expected tags capped at 5, got %d (%v)", len(draft.Tags), draft.Tags)
	}
	for i, tag := range draft.Tags {
		if tag != strings.ToLower(tag) {
			t.Errorf("Expected lowercase tag at %d, got %s", i, tag)
		}
	}
	if draft.Slug != "festival-de-inverno-confirma-programacao" {
		t.Errorf("Expected slug derived from title with accents stripped, got %s", draft.Slug)
	}
	if draft.FocusKeyword != "festival" {
		t.Errorf("Expected empty keyword backfilled from request, got %s", draft.FocusKeyword)
	}
}

func TestArticleFromEventAttachesEventDetails(t *testing.T) {
	gen := &stubGenerator{text: articleJSON}
	event := core.NormalizedEvent{
		Name:       "Noite do Frevo",
		Date:       "2026-09-12 20:00:00",
		Location:   "Paço do Frevo",
		Category:   core.CategoryShow,
		SourceURLs: []string{"https://www.sympla.com.br/noite-do-frevo"},
	}

	draft, err := fixedArticleGenerator(gen, &stubGate{}).FromEvent(context.Background(), event, "frevo")
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if draft.EventDetails == nil || draft.EventDetails.Name != "Noite do Frevo" {
		t.Fatalf("Expected event details attached, got %+v", draft.EventDetails)
	}
	if draft.EventDetails.Date != "2026-09-12 20:00:00" {
		t.Errorf("Expected event date carried over, got %s", draft.EventDetails.Date)
	}
	found := false
	for _, u := range draft.SourceURLs {
		if u == "https://www.sympla.com.br/noite-do-frevo" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected event source URL merged into draft sources, got %v", draft.SourceURLs)
	}
}

func TestHistoriaGeneratesNarrativeDraft(t *testing.T) {
	gen := &stubGenerator{text: `{
		"title": "A história do frevo no Recife",
		"body": "<p>No começo do século XX...</p>",
		"tags": ["frevo", "recife", "carnaval"],
		"category": "cultural",
		"meta_description": "Do passo à patrimonialização.",
		"focus_keyword": "frevo"
	}`}

	g := NewHistoriaGenerator(gen)
	g.newID = func() string { return "historia-1" }

	draft, err := g.Generate(context.Background(), "origem do frevo", "frevo")
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if draft.Title != "A história do frevo no Recife" {
		t.Errorf("Unexpected title %s", draft.Title)
	}
	if draft.Slug != "a-historia-do-frevo-no-recife" {
		t.Errorf("Expected slug from title, got %s", draft.Slug)
	}
	if draft.Provider != "stub" {
		t.Errorf("Expected provider recorded, got %s", draft.Provider)
	}
}

func TestOrganizerNullFieldsStayNull(t *testing.T) {
	gen := &stubGenerator{text: `{
		"name": "Coletivo Massape",
		"bio": "<p>Coletivo de produtores da Zona Norte.</p>",
		"website": null,
		"instagram": "@massape",
		"email": "null",
		"phone": "  ",
		"city": "Recife"
	}`}

	g := NewOrganizerGenerator(gen)
	draft, err := g.Generate(context.Background(), "material sobre o coletivo")
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if draft.Website != nil {
		t.Errorf("Expected nil website, got %q", *draft.Website)
	}
	if draft.Email != nil {
		t.Errorf("Expected literal \"null\" email normalized to nil, got %q", *draft.Email)
	}
	if draft.Phone != nil {
		t.Errorf("Expected whitespace phone normalized to nil, got %q", *draft.Phone)
	}
	if draft.Instagram == nil || *draft.Instagram != "@massape" {
		t.Errorf("Expected instagram preserved, got %v", draft.Instagram)
	}
	if draft.City == nil || *draft.City != "Recife" {
		t.Errorf("Expected city preserved, got %v", draft.City)
	}
}

func TestPlaceNullFieldsStayNull(t *testing.T) {
	gen := &stubGenerator{text: `{
		"name": "Terça Negra",
		"description": "<p>Pátio de São Pedro.</p>",
		"address": "Pátio de São Pedro, Recife",
		"website": null,
		"instagram": null,
		"phone": null,
		"opening_hours": null
	}`}

	g := NewPlaceGenerator(gen)
	draft, err := g.Generate(context.Background(), "material sobre o local")
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if draft.Address == nil || *draft.Address != "Pátio de São Pedro, Recife" {
		t.Errorf("Expected address preserved, got %v", draft.Address)
	}
	if draft.Website != nil || draft.Phone != nil || draft.OpeningHours != nil {
		t.Error("Expected unconfirmed fields to stay nil")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"São João no Sertão", "sao-joao-no-sertao"},
		{"Carnaval 2026: Galo da Madrugada", "carnaval-2026-galo-da-madrugada"},
		{"  espaços   extras  ", "espacos-extras"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
