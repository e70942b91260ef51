package core

import "time"

// ContentType tags the kind of draft a generator produces.
type ContentType string

const (
	ContentArticle     ContentType = "article"
	ContentHistoria    ContentType = "historia"
	ContentOrganizador ContentType = "organizador"
	ContentPlace       ContentType = "place"
)

// ExtractedFacts holds the verifiable facts pulled from a press release
// before the main generation pass. All fields are nullable: a nil field
// means the source text never stated it. Once produced, the struct is
// treated as immutable and embedded into the final draft for traceability.
type ExtractedFacts struct {
	EventName     *string  `json:"event_name"`     // Name of the event, if stated
	EventDate     *string  `json:"event_date"`     // Date of the event, if stated
	EventLocation *string  `json:"event_location"` // Venue/city, if stated
	Organizers    []string `json:"organizers"`     // Organizing entities named in the text
	KeyPeople     []string `json:"key_people"`     // Artists/speakers named in the text
}

// EventDetails carries optional structured event data attached to an
// article draft (e.g. when the draft originates from a scraped event).
type EventDetails struct {
	Name      string `json:"name"`
	Date      string `json:"date"` // YYYY-MM-DD[ HH:MM:SS]
	Location  string `json:"location"`
	TicketURL string `json:"ticket_url,omitempty"`
}

// ArticleDraft is a news-article draft produced by the article generator.
type ArticleDraft struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Body            string          `json:"body"`             // HTML body
	Slug            string          `json:"slug"`             // URL slug
	Tags            []string        `json:"tags"`             // 3-5 tags
	Category        string          `json:"category"`         // Exactly one category
	MetaDescription string          `json:"meta_description"` // 120-155 chars
	FocusKeyword    string          `json:"focus_keyword"`
	ImageAltText    string          `json:"image_alt_text"`
	VerifiedFacts   *ExtractedFacts `json:"verified_facts,omitempty"`
	EventDetails    *EventDetails   `json:"event_details,omitempty"`
	SourceURLs      []string        `json:"source_urls,omitempty"`
	Provider        string          `json:"provider"` // Provider that produced the draft
	GeneratedAt     time.Time       `json:"generated_at"`
}

// HistoriaDraft is a long-form narrative draft.
type HistoriaDraft struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Body            string    `json:"body"` // HTML body, narrative tone
	Slug            string    `json:"slug"`
	Tags            []string  `json:"tags"`
	Category        string    `json:"category"`
	MetaDescription string    `json:"meta_description"`
	FocusKeyword    string    `json:"focus_keyword"`
	Provider        string    `json:"provider"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// OrganizerDraft is an organizer-profile draft. Contact fields are
// nullable: the model is instructed to return null for anything its
// research pass could not confirm, never to fabricate.
type OrganizerDraft struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Bio         string    `json:"bio"` // HTML
	Website     *string   `json:"website"`
	Instagram   *string   `json:"instagram"`
	Email       *string   `json:"email"`
	Phone       *string   `json:"phone"`
	City        *string   `json:"city"`
	Provider    string    `json:"provider"`
	GeneratedAt time.Time `json:"generated_at"`
}

// PlaceDraft describes a venue. Same null-over-fabrication rule as
// OrganizerDraft.
type PlaceDraft struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"` // HTML
	Address      *string   `json:"address"`
	Website      *string   `json:"website"`
	Instagram    *string   `json:"instagram"`
	Phone        *string   `json:"phone"`
	OpeningHours *string   `json:"opening_hours"`
	Provider     string    `json:"provider"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// ScrapedEvent holds the raw fields captured from a ticket-site page
// before any normalization.
type ScrapedEvent struct {
	Title           string `json:"title"`
	RawDate         string `json:"raw_date"` // Date string exactly as found
	Location        string `json:"location"`
	DescriptionHTML string `json:"description_html"`
	ImageURL        string `json:"image_url"`
	SourceURL       string `json:"source_url"`
}

// EventCategory is the fixed category enum assigned during batch
// normalization.
type EventCategory string

const (
	CategoryShow     EventCategory = "show"
	CategoryFestival EventCategory = "festival"
	CategoryTeatro   EventCategory = "teatro"
	CategoryFesta    EventCategory = "festa"
	CategoryCultural EventCategory = "cultural"
	CategoryOutros   EventCategory = "outros"
)

// EventCategories lists every valid normalized category.
var EventCategories = []EventCategory{
	CategoryShow, CategoryFestival, CategoryTeatro,
	CategoryFesta, CategoryCultural, CategoryOutros,
}

// NormalizedEvent is a deduplicated, standardized event produced by the
// LLM batch pass over scraped events.
type NormalizedEvent struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Date        string        `json:"date"` // YYYY-MM-DD[ HH:MM:SS]
	Location    string        `json:"location"`
	Category    EventCategory `json:"category"`
	Description string        `json:"description"`
	ImageURL    string        `json:"image_url"`
	SourceURLs  []string      `json:"source_urls"` // Merged near-duplicate sources
}

// SeoStatus is the outcome of a single SEO check.
type SeoStatus string

const (
	SeoPass    SeoStatus = "pass"
	SeoFail    SeoStatus = "fail"
	SeoNeutral SeoStatus = "neutral"
)

// SeoCategory groups checks for weighted scoring.
type SeoCategory string

const (
	SeoBasic      SeoCategory = "basic"
	SeoAdditional SeoCategory = "additional"
	SeoTitle      SeoCategory = "title"
	SeoContent    SeoCategory = "content"
)

// SeoCheck is one rule evaluation. Recomputed from current field values
// on every run; never persisted.
type SeoCheck struct {
	Name     string      `json:"name"`
	Category SeoCategory `json:"category"`
	Status   SeoStatus   `json:"status"`
	Feedback string      `json:"feedback"`
}

// SeoAnalysis is the derived score plus the full check list.
type SeoAnalysis struct {
	Score  int        `json:"score"` // 0-100
	Checks []SeoCheck `json:"checks"`
}

// EventCacheEntry is one cached event-search result. At most one live
// (non-expired) entry exists per (user, query) pair.
type EventCacheEntry struct {
	User      string    `json:"user"`
	Query     string    `json:"query"`
	Payload   string    `json:"payload"` // JSON payload of the search result
	ExpiresAt time.Time `json:"expires_at"`
	HitCount  int       `json:"hit_count"`
}

// AnalyticsEvent is one append-only operation record.
type AnalyticsEvent struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`    // e.g. "generate.article", "scrape.batch"
	Payload   string    `json:"payload"` // JSON details
	CreatedAt time.Time `json:"created_at"`
}

// CachedPage is a fetched HTML page kept for scraper input.
type CachedPage struct {
	URL         string    `json:"url"`
	HTML        string    `json:"html"`
	DateFetched time.Time `json:"date_fetched"`
}
