// Package seo scores a draft against a fixed battery of on-page rules.
// Analyze is pure: same input, same score, no persistence.
package seo

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"editoria/internal/core"
)

// Input is everything the scorer looks at. HasFeaturedImage matters for
// the alt-text check, which fails outright when no featured image exists.
type Input struct {
	Title            string
	ContentHTML      string
	FocusKeyword     string
	URLSlug          string
	ImageAltText     string
	HasFeaturedImage bool
}

// Category weights sum to 100. The score is the weighted sum of each
// category's pass ratio, with neutral checks excluded from the ratio.
var weights = map[core.SeoCategory]float64{
	core.SeoBasic:      50,
	core.SeoAdditional: 20,
	core.SeoTitle:      15,
	core.SeoContent:    15,
}

const (
	minWordCount       = 600
	maxSlugLength      = 75
	densityFloor       = 0.5
	densityCeiling     = 2.5
	longParagraphWords = 150
	longParagraphShare = 0.25
)

// Analyze evaluates every check and derives the weighted score. An empty
// focus keyword short-circuits to score 0 with a single failing check.
func Analyze(in Input) core.SeoAnalysis {
	keyword := strings.TrimSpace(in.FocusKeyword)
	if keyword == "" {
		return core.SeoAnalysis{
			Score: 0,
			Checks: []core.SeoCheck{{
				Name:     "focus_keyword_set",
				Category: core.SeoBasic,
				Status:   core.SeoFail,
				Feedback: "Define a focus keyword before scoring",
			}},
		}
	}

	page := parseContent(in.ContentHTML)
	kw := newMatcher(keyword)

	checks := []core.SeoCheck{
		checkKeywordInTitle(kw, in.Title),
		checkKeywordInSlug(kw, in.URLSlug),
		checkKeywordEarly(kw, page),
		checkKeywordInBody(kw, page),
		checkWordCount(page),
		checkKeywordInSubheading(kw, page),
		checkAltText(kw, in),
		checkDensity(kw, page),
		checkSlugLength(in.URLSlug),
		checkExternalLink(page),
		checkInternalLink(page),
		checkKeywordNearTitleStart(kw, in.Title),
		checkTitleDigit(in.Title),
		checkSubheadingCount(page),
		checkParagraphLength(page),
		checkEmbeddedMedia(page),
	}

	return core.SeoAnalysis{Score: score(checks), Checks: checks}
}

// score computes the weighted sum of per-category pass ratios, rounded
// to the nearest integer. A category with only neutral checks counts as
// fully passing.
func score(checks []core.SeoCheck) int {
	passed := make(map[core.SeoCategory]int)
	scored := make(map[core.SeoCategory]int)
	for _, c := range checks {
		switch c.Status {
		case core.SeoPass:
			passed[c.Category]++
			scored[c.Category]++
		case core.SeoFail:
			scored[c.Category]++
		}
	}

	var total float64
	for category, weight := range weights {
		if scored[category] == 0 {
			total += weight
			continue
		}
		total += weight * float64(passed[category]) / float64(scored[category])
	}

	s := int(total + 0.5)
	if s > 100 {
		s = 100
	}
	return s
}

// matcher does case-insensitive, word-boundary keyword matching. A
// keyword appearing inside a longer word does not count. A multi-word
// keyword matches when every word is present; the words need not be
// adjacent, so "shows recife" matches "Shows Imperdíveis no Recife".
// Density counting stays phrase-exact.
type matcher struct {
	phrase *regexp.Regexp
	words  []*regexp.Regexp
}

func newMatcher(keyword string) matcher {
	m := matcher{phrase: wordBoundary(keyword)}
	for _, w := range strings.Fields(keyword) {
		m.words = append(m.words, wordBoundary(w))
	}
	return m
}

func wordBoundary(s string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(strings.ToLower(s)) + `\b`)
}

// in reports whether every keyword word appears in the text.
func (m matcher) in(text string) bool {
	for _, w := range m.words {
		if !w.MatchString(text) {
			return false
		}
	}
	return len(m.words) > 0
}

// anyIn reports whether at least one keyword word appears in the text.
func (m matcher) anyIn(text string) bool {
	for _, w := range m.words {
		if w.MatchString(text) {
			return true
		}
	}
	return false
}

// count counts exact-phrase occurrences.
func (m matcher) count(text string) int { return len(m.phrase.FindAllStringIndex(text, -1)) }

// inSlug matches against the slug with separators normalized to spaces.
func (m matcher) inSlug(slug string) bool {
	normalized := strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	return m.in(normalized)
}

// pageContent is the parsed view of the draft body.
type pageContent struct {
	text        string   // Plain text of the body
	words       []string // Whitespace-split words of text
	headings    []string // Text of h2..h6 elements
	paragraphs  []string // Text of p elements
	externalURL int      // Count of absolute http(s) links
	internalURL int      // Count of relative links
	media       int      // Count of img/iframe/video/audio/embed elements
}

func parseContent(html string) pageContent {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		text := strings.TrimSpace(html)
		return pageContent{text: text, words: strings.Fields(text)}
	}

	var page pageContent
	page.text = strings.TrimSpace(doc.Text())
	page.words = strings.Fields(page.text)

	doc.Find("h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		page.headings = append(page.headings, strings.TrimSpace(s.Text()))
	})
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			page.paragraphs = append(page.paragraphs, t)
		}
	})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		switch {
		case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
			page.externalURL++
		case href != "" && !strings.HasPrefix(href, "#"):
			page.internalURL++
		}
	})
	page.media = doc.Find("img, iframe, video, audio, embed").Length()

	return page
}

// firstTenth returns the opening 10% of the body by word count, at least
// one word when any exist.
func (p pageContent) firstTenth() string {
	if len(p.words) == 0 {
		return ""
	}
	n := len(p.words) / 10
	if n < 1 {
		n = 1
	}
	return strings.Join(p.words[:n], " ")
}

func checkKeywordInTitle(kw matcher, title string) core.SeoCheck {
	return boolCheck("keyword_in_title", core.SeoBasic, kw.in(title),
		"Focus keyword appears in the title",
		"Add the focus keyword to the title")
}

func checkKeywordInSlug(kw matcher, slug string) core.SeoCheck {
	return boolCheck("keyword_in_slug", core.SeoBasic, kw.inSlug(slug),
		"Focus keyword appears in the URL slug",
		"Include the focus keyword in the URL slug")
}

func checkKeywordEarly(kw matcher, page pageContent) core.SeoCheck {
	return boolCheck("keyword_in_intro", core.SeoBasic, kw.in(page.firstTenth()),
		"Focus keyword appears in the opening of the content",
		"Use the focus keyword within the first 10% of the content")
}

func checkKeywordInBody(kw matcher, page pageContent) core.SeoCheck {
	return boolCheck("keyword_in_content", core.SeoBasic, kw.in(page.text),
		"Focus keyword appears in the content",
		"Use the focus keyword in the content body")
}

func checkWordCount(page pageContent) core.SeoCheck {
	n := len(page.words)
	return boolCheck("content_length", core.SeoBasic, n >= minWordCount,
		fmt.Sprintf("Content has %d words", n),
		fmt.Sprintf("Content has %d words, aim for at least %d", n, minWordCount))
}

func checkKeywordInSubheading(kw matcher, page pageContent) core.SeoCheck {
	found := false
	for _, h := range page.headings {
		if kw.in(h) {
			found = true
			break
		}
	}
	return boolCheck("keyword_in_subheading", core.SeoAdditional, found,
		"Focus keyword appears in a subheading",
		"Use the focus keyword in at least one subheading")
}

func checkAltText(kw matcher, in Input) core.SeoCheck {
	if !in.HasFeaturedImage {
		return core.SeoCheck{
			Name:     "image_alt_keyword",
			Category: core.SeoAdditional,
			Status:   core.SeoFail,
			Feedback: "Set a featured image with the focus keyword in its alt text",
		}
	}
	return boolCheck("image_alt_keyword", core.SeoAdditional, kw.in(in.ImageAltText),
		"Featured image alt text contains the focus keyword",
		"Add the focus keyword to the featured image alt text")
}

func checkDensity(kw matcher, page pageContent) core.SeoCheck {
	words := len(page.words)
	if words == 0 {
		return core.SeoCheck{
			Name:     "keyword_density",
			Category: core.SeoAdditional,
			Status:   core.SeoFail,
			Feedback: "Content is empty",
		}
	}
	density := float64(kw.count(page.text)) / float64(words) * 100
	ok := density > densityFloor && density < densityCeiling
	return boolCheck("keyword_density", core.SeoAdditional, ok,
		fmt.Sprintf("Keyword density is %.2f%%", density),
		fmt.Sprintf("Keyword density is %.2f%%, keep it between %.1f%% and %.1f%%",
			density, densityFloor, densityCeiling))
}

func checkSlugLength(slug string) core.SeoCheck {
	return boolCheck("slug_length", core.SeoAdditional, len(slug) > 0 && len(slug) < maxSlugLength,
		"URL slug is a good length",
		fmt.Sprintf("Keep the URL slug under %d characters", maxSlugLength))
}

func checkExternalLink(page pageContent) core.SeoCheck {
	return boolCheck("external_link", core.SeoAdditional, page.externalURL >= 1,
		"Content links to an external source",
		"Link to at least one external source")
}

func checkInternalLink(page pageContent) core.SeoCheck {
	return boolCheck("internal_link", core.SeoAdditional, page.internalURL >= 1,
		"Content links to other pages on the site",
		"Add at least one internal link")
}

func checkKeywordNearTitleStart(kw matcher, title string) core.SeoCheck {
	words := strings.Fields(title)
	half := (len(words) + 1) / 2
	return boolCheck("keyword_near_title_start", core.SeoTitle,
		kw.anyIn(strings.Join(words[:half], " ")),
		"Focus keyword appears near the start of the title",
		"Move the focus keyword toward the start of the title")
}

// checkTitleDigit is a suggestion, not a requirement: a missing number
// reads as neutral rather than a failure.
func checkTitleDigit(title string) core.SeoCheck {
	if strings.ContainsAny(title, "0123456789") {
		return core.SeoCheck{
			Name:     "title_number",
			Category: core.SeoTitle,
			Status:   core.SeoPass,
			Feedback: "Title contains a number",
		}
	}
	return core.SeoCheck{
		Name:     "title_number",
		Category: core.SeoTitle,
		Status:   core.SeoNeutral,
		Feedback: "Consider adding a number to the title",
	}
}

func checkSubheadingCount(page pageContent) core.SeoCheck {
	return boolCheck("subheading_count", core.SeoContent, len(page.headings) >= 2,
		fmt.Sprintf("Content has %d subheadings", len(page.headings)),
		"Break the content up with at least 2 subheadings")
}

func checkParagraphLength(page pageContent) core.SeoCheck {
	if len(page.paragraphs) == 0 {
		return core.SeoCheck{
			Name:     "paragraph_length",
			Category: core.SeoContent,
			Status:   core.SeoFail,
			Feedback: "Content has no paragraphs",
		}
	}
	long := 0
	for _, p := range page.paragraphs {
		if len(strings.Fields(p)) > longParagraphWords {
			long++
		}
	}
	share := float64(long) / float64(len(page.paragraphs))
	return boolCheck("paragraph_length", core.SeoContent, share <= longParagraphShare,
		"Paragraphs are a readable length",
		fmt.Sprintf("%d of %d paragraphs are over %d words, shorten them",
			long, len(page.paragraphs), longParagraphWords))
}

// checkEmbeddedMedia is a suggestion like the title number.
func checkEmbeddedMedia(page pageContent) core.SeoCheck {
	if page.media >= 1 {
		return core.SeoCheck{
			Name:     "embedded_media",
			Category: core.SeoContent,
			Status:   core.SeoPass,
			Feedback: "Content embeds media",
		}
	}
	return core.SeoCheck{
		Name:     "embedded_media",
		Category: core.SeoContent,
		Status:   core.SeoNeutral,
		Feedback: "Consider embedding an image or video",
	}
}

func boolCheck(name string, category core.SeoCategory, ok bool, passMsg, failMsg string) core.SeoCheck {
	status := core.SeoFail
	feedback := failMsg
	if ok {
		status = core.SeoPass
		feedback = passMsg
	}
	return core.SeoCheck{Name: name, Category: category, Status: status, Feedback: feedback}
}
