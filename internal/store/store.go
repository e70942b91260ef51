// Package store is the local SQLite cache: fetched pages, event-search
// results, generated drafts and an append-only analytics log. Expiry is
// enforced on read; nothing runs in the background.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"editoria/internal/core"
)

const (
	// DefaultEventTTL is how long an event-search result stays servable.
	DefaultEventTTL = 4 * time.Hour
	// DefaultPageTTL is how long a fetched page stays servable.
	DefaultPageTTL = 24 * time.Hour
)

// Store wraps the SQLite database.
type Store struct {
	db   *sql.DB
	path string

	pageTTL  time.Duration
	eventTTL time.Duration
	now      func() time.Time
}

// NewStore opens (creating if needed) the database under dataDir.
func NewStore(dataDir string, pageTTL, eventTTL time.Duration) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	if pageTTL <= 0 {
		pageTTL = DefaultPageTTL
	}
	if eventTTL <= 0 {
		eventTTL = DefaultEventTTL
	}

	dbPath := filepath.Join(dataDir, "editoria.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath, pageTTL: pageTTL, eventTTL: eventTTL, now: time.Now}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS pages (
			url TEXT PRIMARY KEY,
			html TEXT,
			date_fetched DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS event_searches (
			user TEXT NOT NULL,
			query TEXT NOT NULL,
			payload TEXT,
			expires_at DATETIME,
			hit_count INTEGER NOT NULL DEFAULT 0,
			UNIQUE(user, query)
		);`,
		`CREATE TABLE IF NOT EXISTS drafts (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			payload TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS analytics (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			payload TEXT,
			created_at DATETIME
		);`,
	}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// PutPage stores (or replaces) a fetched page.
func (s *Store) PutPage(page core.CachedPage) error {
	_, err := sq.Insert("pages").Options("OR REPLACE").
		Columns("url", "html", "date_fetched").
		Values(page.URL, page.HTML, page.DateFetched.UTC()).
		RunWith(s.db).Exec()
	if err != nil {
		return fmt.Errorf("caching page: %w", err)
	}
	return nil
}

// GetPage returns a cached page younger than the page TTL, or nil on
// miss or expiry.
func (s *Store) GetPage(url string) (*core.CachedPage, error) {
	cutoff := s.now().UTC().Add(-s.pageTTL)
	row := sq.Select("url", "html", "date_fetched").
		From("pages").
		Where(sq.Eq{"url": url}).
		Where(sq.Gt{"date_fetched": cutoff}).
		RunWith(s.db).QueryRow()

	var page core.CachedPage
	err := row.Scan(&page.URL, &page.HTML, &page.DateFetched)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached page: %w", err)
	}
	return &page, nil
}

// SaveEventSearch upserts the result payload for a (user, query) pair,
// resetting the expiry and the hit counter.
func (s *Store) SaveEventSearch(user, query, payload string) error {
	expires := s.now().UTC().Add(s.eventTTL)
	_, err := sq.Insert("event_searches").Options("OR REPLACE").
		Columns("user", "query", "payload", "expires_at", "hit_count").
		Values(user, query, payload, expires, 0).
		RunWith(s.db).Exec()
	if err != nil {
		return fmt.Errorf("caching event search: %w", err)
	}
	return nil
}

// GetEventSearch returns the live entry for a (user, query) pair, or nil
// on miss or expiry. A hit increments the entry's hit counter.
func (s *Store) GetEventSearch(user, query string) (*core.EventCacheEntry, error) {
	row := sq.Select("user", "query", "payload", "expires_at", "hit_count").
		From("event_searches").
		Where(sq.Eq{"user": user, "query": query}).
		Where(sq.Gt{"expires_at": s.now().UTC()}).
		RunWith(s.db).QueryRow()

	var entry core.EventCacheEntry
	err := row.Scan(&entry.User, &entry.Query, &entry.Payload, &entry.ExpiresAt, &entry.HitCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading event search: %w", err)
	}

	_, err = sq.Update("event_searches").
		Set("hit_count", sq.Expr("hit_count + 1")).
		Where(sq.Eq{"user": user, "query": query}).
		RunWith(s.db).Exec()
	if err != nil {
		return nil, fmt.Errorf("counting cache hit: %w", err)
	}
	entry.HitCount++
	return &entry, nil
}

// InvalidateEventSearch drops the entry for a (user, query) pair.
func (s *Store) InvalidateEventSearch(user, query string) error {
	_, err := sq.Delete("event_searches").
		Where(sq.Eq{"user": user, "query": query}).
		RunWith(s.db).Exec()
	if err != nil {
		return fmt.Errorf("invalidating event search: %w", err)
	}
	return nil
}

// SaveDraft persists a generated draft for the publish flow.
func (s *Store) SaveDraft(id string, kind core.ContentType, payload string) error {
	_, err := sq.Insert("drafts").Options("OR REPLACE").
		Columns("id", "kind", "payload", "created_at").
		Values(id, string(kind), payload, s.now().UTC()).
		RunWith(s.db).Exec()
	if err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}
	return nil
}

// GetDraft returns a stored draft's kind and payload.
func (s *Store) GetDraft(id string) (core.ContentType, string, error) {
	row := sq.Select("kind", "payload").
		From("drafts").
		Where(sq.Eq{"id": id}).
		RunWith(s.db).QueryRow()

	var kind, payload string
	if err := row.Scan(&kind, &payload); err != nil {
		if err == sql.ErrNoRows {
			return "", "", fmt.Errorf("draft %s not found", id)
		}
		return "", "", fmt.Errorf("reading draft: %w", err)
	}
	return core.ContentType(kind), payload, nil
}

// DraftRecord is a stored draft row; the payload is the draft JSON.
type DraftRecord struct {
	ID        string
	Kind      core.ContentType
	Payload   string
	CreatedAt time.Time
}

// ListDrafts returns the most recent drafts, newest first.
func (s *Store) ListDrafts(limit int) ([]DraftRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := sq.Select("id", "kind", "payload", "created_at").
		From("drafts").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	defer rows.Close()

	var drafts []DraftRecord
	for rows.Next() {
		var d DraftRecord
		var kind string
		if err := rows.Scan(&d.ID, &kind, &d.Payload, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning draft: %w", err)
		}
		d.Kind = core.ContentType(kind)
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

// RecordAnalytics appends one operation event.
func (s *Store) RecordAnalytics(kind, payload string) error {
	_, err := sq.Insert("analytics").
		Columns("id", "kind", "payload", "created_at").
		Values(uuid.NewString(), kind, payload, s.now().UTC()).
		RunWith(s.db).Exec()
	if err != nil {
		return fmt.Errorf("recording analytics: %w", err)
	}
	return nil
}

// RecentAnalytics returns the latest analytics events, newest first.
func (s *Store) RecentAnalytics(limit int) ([]core.AnalyticsEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := sq.Select("id", "kind", "payload", "created_at").
		From("analytics").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("listing analytics: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]core.AnalyticsEvent, error) {
	var events []core.AnalyticsEvent
	for rows.Next() {
		var e core.AnalyticsEvent
		if err := rows.Scan(&e.ID, &e.Kind, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CacheStats summarizes what the store holds.
type CacheStats struct {
	Pages         int
	EventSearches int
	Drafts        int
	Analytics     int
	FileSizeBytes int64
}

// Stats counts rows per table and reports the database file size.
func (s *Store) Stats() (*CacheStats, error) {
	stats := &CacheStats{}
	counts := []struct {
		table string
		dest  *int
	}{
		{"pages", &stats.Pages},
		{"event_searches", &stats.EventSearches},
		{"drafts", &stats.Drafts},
		{"analytics", &stats.Analytics},
	}
	for _, c := range counts {
		row := sq.Select("COUNT(*)").From(c.table).RunWith(s.db).QueryRow()
		if err := row.Scan(c.dest); err != nil {
			return nil, fmt.Errorf("counting %s: %w", c.table, err)
		}
	}

	if info, err := os.Stat(s.path); err == nil {
		stats.FileSizeBytes = info.Size()
	}
	return stats, nil
}

// Clear empties every cache table. Drafts survive; they are work
// products, not cache.
func (s *Store) Clear() error {
	for _, table := range []string{"pages", "event_searches", "analytics"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// CleanupExpired removes rows past their TTL instead of waiting for the
// read-side checks to skip them.
func (s *Store) CleanupExpired() error {
	nowUTC := s.now().UTC()

	if _, err := sq.Delete("pages").
		Where(sq.LtOrEq{"date_fetched": nowUTC.Add(-s.pageTTL)}).
		RunWith(s.db).Exec(); err != nil {
		return fmt.Errorf("cleaning pages: %w", err)
	}
	if _, err := sq.Delete("event_searches").
		Where(sq.LtOrEq{"expires_at": nowUTC}).
		RunWith(s.db).Exec(); err != nil {
		return fmt.Errorf("cleaning event searches: %w", err)
	}
	return nil
}
