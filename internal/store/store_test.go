package store

import (
	"testing"
	"time"

	"editoria/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), DefaultPageTTL, DefaultEventTTL)
	if err != nil {
		t.Fatalf("Expected store to open, got %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPageCacheRoundTrip(t *testing.T) {
	s := newTestStore(t)

	page := core.CachedPage{
		URL:         "https://www.sympla.com.br/evento",
		HTML:        "<html><body>evento</body></html>",
		DateFetched: time.Now().UTC(),
	}
	if err := s.PutPage(page); err != nil {
		t.Fatalf("Expected put to succeed, got %v", err)
	}

	got, err := s.GetPage(page.URL)
	if err != nil {
		t.Fatalf("Expected get to succeed, got %v", err)
	}
	if got == nil {
		t.Fatal("Expected cache hit, got miss")
	}
	if got.HTML != page.HTML {
		t.Errorf("Expected HTML round-tripped, got %q", got.HTML)
	}

	miss, err := s.GetPage("https://outra.url/")
	if err != nil {
		t.Fatalf("Expected clean miss, got %v", err)
	}
	if miss != nil {
		t.Errorf("Expected nil for unknown URL, got %+v", miss)
	}
}

func TestExpiredPageIsAMiss(t *testing.T) {
	s := newTestStore(t)

	if err := s.PutPage(core.CachedPage{
		URL:         "https://example.com/velho",
		HTML:        "<html></html>",
		DateFetched: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("Expected put to succeed, got %v", err)
	}

	// Jump the clock past the page TTL.
	s.now = func() time.Time { return time.Now().Add(DefaultPageTTL + time.Minute) }

	got, err := s.GetPage("https://example.com/velho")
	if err != nil {
		t.Fatalf("Expected clean miss, got %v", err)
	}
	if got != nil {
		t.Error("Expected expired page to read as a miss")
	}
}

func TestEventSearchHitCountIncrements(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveEventSearch("ana", "shows em recife", `{"events":[]}`); err != nil {
		t.Fatalf("Expected save to succeed, got %v", err)
	}

	first, err := s.GetEventSearch("ana", "shows em recife")
	if err != nil {
		t.Fatalf("Expected first read to succeed, got %v", err)
	}
	if first == nil {
		t.Fatal("Expected cache hit")
	}
	if first.HitCount != 1 {
		t.Errorf("Expected hit count 1 after first read, got %d", first.HitCount)
	}

	second, err := s.GetEventSearch("ana", "shows em recife")
	if err != nil {
		t.Fatalf("Expected second read to succeed, got %v", err)
	}
	if second.HitCount != 2 {
		t.Errorf("Expected hit count 2 after second read, got %d", second.HitCount)
	}
}

func TestExpiredEventSearchIsAMiss(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveEventSearch("ana", "festivais", `{"events":[]}`); err != nil {
		t.Fatalf("Expected save to succeed, got %v", err)
	}

	s.now = func() time.Time { return time.Now().Add(DefaultEventTTL + time.Minute) }

	got, err := s.GetEventSearch("ana", "festivais")
	if err != nil {
		t.Fatalf("Expected clean miss, got %v", err)
	}
	if got != nil {
		t.Error("Expected expired entry to read as a miss")
	}
}

func TestSaveEventSearchUpsertsAndResetsHitCount(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveEventSearch("ana", "teatro", `{"v":1}`); err != nil {
		t.Fatalf("Expected save to succeed, got %v", err)
	}
	if _, err := s.GetEventSearch("ana", "teatro"); err != nil {
		t.Fatalf("Expected read to succeed, got %v", err)
	}

	// Re-saving the same (user, query) replaces the row.
	if err := s.SaveEventSearch("ana", "teatro", `{"v":2}`); err != nil {
		t.Fatalf("Expected re-save to succeed, got %v", err)
	}

	got, err := s.GetEventSearch("ana", "teatro")
	if err != nil {
		t.Fatalf("Expected read to succeed, got %v", err)
	}
	if got.Payload != `{"v":2}` {
		t.Errorf("Expected refreshed payload, got %s", got.Payload)
	}
	if got.HitCount != 1 {
		t.Errorf("Expected hit count reset by upsert, got %d", got.HitCount)
	}
}

func TestInvalidateEventSearch(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveEventSearch("ana", "festas", `{}`); err != nil {
		t.Fatalf("Expected save to succeed, got %v", err)
	}
	if err := s.InvalidateEventSearch("ana", "festas"); err != nil {
		t.Fatalf("Expected invalidation to succeed, got %v", err)
	}

	got, err := s.GetEventSearch("ana", "festas")
	if err != nil {
		t.Fatalf("Expected clean miss, got %v", err)
	}
	if got != nil {
		t.Error("Expected invalidated entry to read as a miss")
	}
}

func TestDraftRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveDraft("draft-1", core.ContentArticle, `{"title":"Matéria"}`); err != nil {
		t.Fatalf("Expected save to succeed, got %v", err)
	}

	kind, payload, err := s.GetDraft("draft-1")
	if err != nil {
		t.Fatalf("Expected get to succeed, got %v", err)
	}
	if kind != core.ContentArticle {
		t.Errorf("Expected kind article, got %s", kind)
	}
	if payload != `{"title":"Matéria"}` {
		t.Errorf("Expected payload round-tripped, got %s", payload)
	}

	drafts, err := s.ListDrafts(10)
	if err != nil {
		t.Fatalf("Expected listing to succeed, got %v", err)
	}
	if len(drafts) != 1 || drafts[0].ID != "draft-1" {
		t.Errorf("Unexpected draft listing %+v", drafts)
	}

	if _, _, err := s.GetDraft("inexistente"); err == nil {
		t.Error("Expected error for unknown draft")
	}
}

func TestStatsAndClear(t *testing.T) {
	s := newTestStore(t)

	s.PutPage(core.CachedPage{URL: "https://a", HTML: "x", DateFetched: time.Now().UTC()})
	s.SaveEventSearch("ana", "q", "{}")
	s.SaveDraft("d1", core.ContentHistoria, "{}")
	s.RecordAnalytics("generate.historia", `{"draft":"d1"}`)

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Expected stats, got %v", err)
	}
	if stats.Pages != 1 || stats.EventSearches != 1 || stats.Drafts != 1 || stats.Analytics != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Expected clear to succeed, got %v", err)
	}

	stats, err = s.Stats()
	if err != nil {
		t.Fatalf("Expected stats after clear, got %v", err)
	}
	if stats.Pages != 0 || stats.EventSearches != 0 || stats.Analytics != 0 {
		t.Errorf("Expected cache tables emptied, got %+v", stats)
	}
	if stats.Drafts != 1 {
		t.Errorf("Expected drafts to survive a cache clear, got %d", stats.Drafts)
	}
}

func TestCleanupExpiredRemovesDeadRows(t *testing.T) {
	s := newTestStore(t)

	s.PutPage(core.CachedPage{URL: "https://a", HTML: "x", DateFetched: time.Now().UTC()})
	s.SaveEventSearch("ana", "q", "{}")

	s.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	if err := s.CleanupExpired(); err != nil {
		t.Fatalf("Expected cleanup to succeed, got %v", err)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Expected stats, got %v", err)
	}
	if stats.Pages != 0 || stats.EventSearches != 0 {
		t.Errorf("Expected expired rows removed, got %+v", stats)
	}
}

func TestRecentAnalyticsNewestFirst(t *testing.T) {
	s := newTestStore(t)

	base := time.Now().UTC()
	s.now = func() time.Time { return base }
	s.RecordAnalytics("scrape.batch", `{"urls":3}`)
	s.now = func() time.Time { return base.Add(time.Minute) }
	s.RecordAnalytics("publish.post", `{"post":99}`)

	events, err := s.RecentAnalytics(10)
	if err != nil {
		t.Fatalf("Expected listing to succeed, got %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Kind != "publish.post" {
		t.Errorf("Expected newest event first, got %s", events[0].Kind)
	}
}
