package scrape

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"editoria/internal/core"
)

// ErrUnsupportedSite means no extraction strategy produced at least a
// title for the page.
var ErrUnsupportedSite = errors.New("page has no recognizable event data")

// Extract pulls a raw event from an event-page HTML document. Strategies
// run in order of reliability: JSON-LD structured data, then selectors
// for known ticketing sites, then a generic OpenGraph fallback.
func Extract(html, pageURL string) (*core.ScrapedEvent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing page %s: %w", pageURL, err)
	}

	if event := fromJSONLD(doc, pageURL); event != nil {
		return event, nil
	}
	if event := fromSiteSelectors(doc, pageURL); event != nil {
		return event, nil
	}
	if event := fromOpenGraph(doc, pageURL); event != nil {
		return event, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedSite, pageURL)
}

// jsonLDEvent is the slice of the schema.org Event type the extractor
// reads. Location and organizer can be objects or bare strings.
type jsonLDEvent struct {
	Type      json.RawMessage `json:"@type"`
	Graph     []jsonLDEvent   `json:"@graph"`
	Name      string          `json:"name"`
	StartDate string          `json:"startDate"`
	Location  json.RawMessage `json:"location"`
	Image     json.RawMessage `json:"image"`
	Desc      string          `json:"description"`
}

func fromJSONLD(doc *goquery.Document, pageURL string) *core.ScrapedEvent {
	var found *core.ScrapedEvent

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var node jsonLDEvent
		if err := json.Unmarshal([]byte(s.Text()), &node); err != nil {
			// Some sites put a bare array at the top level.
			var nodes []jsonLDEvent
			if err := json.Unmarshal([]byte(s.Text()), &nodes); err != nil {
				return true
			}
			node.Graph = nodes
		}

		candidates := append([]jsonLDEvent{node}, node.Graph...)
		for _, c := range candidates {
			if !isEventType(c.Type) || c.Name == "" {
				continue
			}
			found = &core.ScrapedEvent{
				Title:           strings.TrimSpace(c.Name),
				RawDate:         strings.TrimSpace(c.StartDate),
				Location:        locationText(c.Location),
				DescriptionHTML: c.Desc,
				ImageURL:        imageText(c.Image),
				SourceURL:       pageURL,
			}
			return false
		}
		return true
	})

	return found
}

func isEventType(raw json.RawMessage) bool {
	var single string
	if json.Unmarshal(raw, &single) == nil {
		return strings.Contains(single, "Event")
	}
	var multi []string
	if json.Unmarshal(raw, &multi) == nil {
		for _, t := range multi {
			if strings.Contains(t, "Event") {
				return true
			}
		}
	}
	return false
}

// locationText reads a schema.org location that may be a string or a
// Place object with a name and address.
func locationText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var place struct {
		Name    string          `json:"name"`
		Address json.RawMessage `json:"address"`
	}
	if json.Unmarshal(raw, &place) != nil {
		return ""
	}
	parts := []string{strings.TrimSpace(place.Name)}
	var addr string
	if json.Unmarshal(place.Address, &addr) != nil {
		var structured struct {
			Locality string `json:"addressLocality"`
		}
		if json.Unmarshal(place.Address, &structured) == nil {
			addr = structured.Locality
		}
	}
	if addr = strings.TrimSpace(addr); addr != "" {
		parts = append(parts, addr)
	}
	return strings.Join(nonEmpty(parts), ", ")
}

func imageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
		return list[0]
	}
	var obj struct {
		URL string `json:"url"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.URL
	}
	return ""
}

func nonEmpty(parts []string) []string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// siteSelectors maps known ticketing hosts to their page structure.
type siteSelectors struct {
	title    string
	date     string
	location string
	image    string
}

var knownSites = map[string]siteSelectors{
	"sympla.com.br": {
		title:    "h1",
		date:     ".event-info time, [class*='date']",
		location: "[class*='location'], [class*='address']",
		image:    "meta[property='og:image']",
	},
	"shotgun.live": {
		title:    "h1",
		date:     "time, [class*='date']",
		location: "[class*='venue'], [class*='location']",
		image:    "meta[property='og:image']",
	},
}

func fromSiteSelectors(doc *goquery.Document, pageURL string) *core.ScrapedEvent {
	host := hostOf(pageURL)
	var sel siteSelectors
	found := false
	for site, s := range knownSites {
		if host == site || strings.HasSuffix(host, "."+site) {
			sel = s
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	title := strings.TrimSpace(doc.Find(sel.title).First().Text())
	if title == "" {
		return nil
	}

	image, _ := doc.Find(sel.image).Attr("content")
	return &core.ScrapedEvent{
		Title:     title,
		RawDate:   strings.TrimSpace(doc.Find(sel.date).First().Text()),
		Location:  strings.TrimSpace(doc.Find(sel.location).First().Text()),
		ImageURL:  image,
		SourceURL: pageURL,
	}
}

func fromOpenGraph(doc *goquery.Document, pageURL string) *core.ScrapedEvent {
	title, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	title = strings.TrimSpace(title)
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		return nil
	}

	desc, _ := doc.Find(`meta[property="og:description"]`).Attr("content")
	image, _ := doc.Find(`meta[property="og:image"]`).Attr("content")
	return &core.ScrapedEvent{
		Title:           title,
		DescriptionHTML: strings.TrimSpace(desc),
		ImageURL:        image,
		SourceURL:       pageURL,
	}
}

func hostOf(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
