// Package drafts turns source material into typed content drafts. Each
// content type has its own generator with its own prompt and rules; all
// of them call the AI orchestrator and parse the response through
// jsonrepair into the matching core struct.
package drafts

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"editoria/internal/ai"
	"editoria/internal/logger"
)

// ErrFactsUnverified means the fact-verification pass produced nothing
// usable, so article generation must not proceed.
var ErrFactsUnverified = errors.New("facts could not be verified from the source text")

// Generator is the slice of the AI orchestrator the draft generators use.
type Generator interface {
	GenerateWithFallback(ctx context.Context, prompt string, opts ai.Options) (*ai.FallbackResult, error)
}

const (
	minArticleWords  = 600
	minHistoriaWords = 800
	minTags          = 3
	maxTags          = 5
	metaMinLen       = 120
	metaMaxLen       = 155
)

var (
	citationMarker = regexp.MustCompile(`\[\d+\]`)
	htmlTag        = regexp.MustCompile(`<[^>]+>`)
	nonSlugChars   = regexp.MustCompile(`[^a-z0-9]+`)
)

// stripCitationMarkers removes numeric citation markers left over from
// search-grounded generation. Sources belong in HTML anchors, not [1].
func stripCitationMarkers(s string) string {
	return citationMarker.ReplaceAllString(s, "")
}

// wordCount counts words in HTML content, tags excluded.
func wordCount(html string) int {
	return len(strings.Fields(htmlTag.ReplaceAllString(html, " ")))
}

// slugify builds a URL slug from a title. Accented characters common in
// Portuguese are transliterated before stripping.
func slugify(title string) string {
	replacer := strings.NewReplacer(
		"á", "a", "à", "a", "ã", "a", "â", "a",
		"é", "e", "ê", "e", "í", "i",
		"ó", "o", "õ", "o", "ô", "o",
		"ú", "u", "ü", "u", "ç", "c",
	)
	s := replacer.Replace(strings.ToLower(title))
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// normalizeTags trims, dedupes and caps the tag list at the maximum.
// Too few tags is reported but not padded; the editor decides.
func normalizeTags(tags []string, draftKind string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) > maxTags {
		out = out[:maxTags]
	}
	if len(out) < minTags {
		logger.Warn("Draft has fewer tags than expected",
			"kind", draftKind, "tags", len(out), "min", minTags)
	}
	return out
}

// reportMetaLength logs when the meta description falls outside the
// search-snippet sweet spot. The value is kept as generated.
func reportMetaLength(meta, draftKind string) {
	n := len([]rune(meta))
	if n < metaMinLen || n > metaMaxLen {
		logger.Warn("Meta description length out of range",
			"kind", draftKind, "length", n, "min", metaMinLen, "max", metaMaxLen)
	}
}

// reportBodyLength logs when the body comes up short of the target.
func reportBodyLength(html, draftKind string, minWords int) {
	if n := wordCount(html); n < minWords {
		logger.Warn("Draft body shorter than target",
			"kind", draftKind, "words", n, "min", minWords)
	}
}

// cleanOptional normalizes a nullable model field: whitespace and the
// literal string "null" both mean absent.
func cleanOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return nil
	}
	return &trimmed
}
