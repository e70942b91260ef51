package scrape

import (
	"context"
	"time"

	"editoria/internal/core"
	"editoria/internal/logger"
)

// PageCache stores fetched HTML so repeated scrapes of the same URL skip
// the network. A nil entry means miss.
type PageCache interface {
	GetPage(url string) (*core.CachedPage, error)
	PutPage(page core.CachedPage) error
}

// Scraper runs the fetch+extract flow over batches of URLs.
type Scraper struct {
	fetcher *Fetcher
	cache   PageCache // Optional
	now     func() time.Time
}

func NewScraper(fetcher *Fetcher, cache PageCache) *Scraper {
	return &Scraper{fetcher: fetcher, cache: cache, now: time.Now}
}

// ScrapeOne fetches and extracts a single event page, going through the
// page cache when one is configured.
func (s *Scraper) ScrapeOne(ctx context.Context, url string) (*core.ScrapedEvent, error) {
	html, err := s.pageHTML(ctx, url)
	if err != nil {
		return nil, err
	}
	return Extract(html, url)
}

// ScrapeAll processes every URL, isolating failures: one broken page
// logs a warning and the batch moves on.
func (s *Scraper) ScrapeAll(ctx context.Context, urls []string) []core.ScrapedEvent {
	var events []core.ScrapedEvent
	for i, url := range urls {
		if ctx.Err() != nil {
			logger.Warn("Scrape batch cancelled", "remaining", len(urls)-i)
			break
		}
		event, err := s.ScrapeOne(ctx, url)
		if err != nil {
			logger.Warn("Skipping page", "url", url, "error", err.Error())
			continue
		}
		events = append(events, *event)
	}
	return events
}

func (s *Scraper) pageHTML(ctx context.Context, url string) (string, error) {
	if s.cache != nil {
		if page, err := s.cache.GetPage(url); err == nil && page != nil {
			logger.Debug("Page cache hit", "url", url)
			return page.HTML, nil
		}
	}

	html, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.PutPage(core.CachedPage{URL: url, HTML: html, DateFetched: s.now()}); err != nil {
			logger.Warn("Failed to cache page", "url", url, "error", err.Error())
		}
	}
	return html, nil
}
