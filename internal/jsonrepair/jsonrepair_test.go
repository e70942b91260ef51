package jsonrepair

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseCleanJSONPassesThrough(t *testing.T) {
	doc, err := Parse(`{"title": "Festival de Inverno", "tags": ["musica", "recife"]}`)
	if err != nil {
		t.Fatalf("Expected clean JSON to parse, got %v", err)
	}

	var got struct {
		Title string   `json:"title"`
		Tags  []string `json:"tags"`
	}
	if err := json.Unmarshal(doc, &got); err != nil {
		t.Fatalf("Expected recovered document to unmarshal, got %v", err)
	}
	if got.Title != "Festival de Inverno" {
		t.Errorf("Expected title preserved, got %s", got.Title)
	}
	if len(got.Tags) != 2 {
		t.Errorf("Expected 2 tags, got %d", len(got.Tags))
	}
}

func TestParseStripsMarkdownFence(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"name\": \"show\"}\n```\nHope this helps!"

	var got map[string]string
	if err := ParseInto(raw, &got); err != nil {
		t.Fatalf("Expected fenced JSON to be recovered, got %v", err)
	}
	if got["name"] != "show" {
		t.Errorf("Expected name 'show', got %s", got["name"])
	}
}

func TestParseRemovesTrailingCommas(t *testing.T) {
	raw := `{"items": ["a", "b",], "count": 2,}`

	var got struct {
		Items []string `json:"items"`
		Count int      `json:"count"`
	}
	if err := ParseInto(raw, &got); err != nil {
		t.Fatalf("Expected trailing commas to be removed, got %v", err)
	}
	if len(got.Items) != 2 || got.Count != 2 {
		t.Errorf("Expected 2 items and count 2, got %v / %d", got.Items, got.Count)
	}
}

func TestParseKeepsCommasInsideStrings(t *testing.T) {
	raw := `{"text": "primeiro, segundo, }"}`

	var got map[string]string
	if err := ParseInto(raw, &got); err != nil {
		t.Fatalf("Expected string content untouched, got %v", err)
	}
	if got["text"] != "primeiro, segundo, }" {
		t.Errorf("Expected string value preserved, got %q", got["text"])
	}
}

func TestParseEscapesRawNewlinesInStrings(t *testing.T) {
	raw := "{\"body\": \"linha um\nlinha dois\"}"

	var got map[string]string
	if err := ParseInto(raw, &got); err != nil {
		t.Fatalf("Expected raw newline to be escaped, got %v", err)
	}
	if got["body"] != "linha um\nlinha dois" {
		t.Errorf("Expected newline round-tripped, got %q", got["body"])
	}
}

func TestParseEscapesBackticksInStrings(t *testing.T) {
	raw := "{\"snippet\": \"use `npm install` first\"}"

	var got map[string]string
	if err := ParseInto(raw, &got); err != nil {
		t.Fatalf("Expected backticks inside strings to survive, got %v", err)
	}
	if got["snippet"] != "use `npm install` first" {
		t.Errorf("Expected backticks preserved in value, got %q", got["snippet"])
	}
}

func TestParseExtractsObjectFromSurroundingProse(t *testing.T) {
	raw := `Sure! The extracted event is {"name": "Carnaval", "year": 2026} as requested.`

	var got struct {
		Name string `json:"name"`
		Year int    `json:"year"`
	}
	if err := ParseInto(raw, &got); err != nil {
		t.Fatalf("Expected embedded object to be extracted, got %v", err)
	}
	if got.Name != "Carnaval" || got.Year != 2026 {
		t.Errorf("Expected Carnaval/2026, got %s/%d", got.Name, got.Year)
	}
}

func TestParseExtractsTopLevelArray(t *testing.T) {
	raw := "```json\n[{\"id\": 1}, {\"id\": 2}]\n```"

	var got []struct {
		ID int `json:"id"`
	}
	if err := ParseInto(raw, &got); err != nil {
		t.Fatalf("Expected array to parse, got %v", err)
	}
	if len(got) != 2 || got[1].ID != 2 {
		t.Errorf("Expected two elements ending in id 2, got %v", got)
	}
}

func TestParseFailureCarriesPreviews(t *testing.T) {
	raw := "The model refused to answer entirely." + strings.Repeat(" padding", 100)

	_, err := Parse(raw)
	if err == nil {
		t.Fatal("Expected parse failure for prose with no JSON")
	}

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ParseError, got %T", err)
	}
	if perr.Original == "" {
		t.Error("Expected original preview to be populated")
	}
	if len(perr.Original) > 500 {
		t.Errorf("Expected original preview capped at 500 chars, got %d", len(perr.Original))
	}
	if len(perr.Cleaned) > 500 {
		t.Errorf("Expected cleaned preview capped at 500 chars, got %d", len(perr.Cleaned))
	}
}

func TestParseAggressiveFallbackBlanksBacktickSpans(t *testing.T) {
	// Unbalanced backtick usage that defeats the normal pipeline but
	// leaves a recoverable brace block.
	raw := "prefix {\"key\": \"value\", \"junk\": `bad span`} suffix"

	var got map[string]string
	if err := ParseInto(raw, &got); err != nil {
		t.Fatalf("Expected recovery via brace-block fallback, got %v", err)
	}
	if got["key"] != "value" {
		t.Errorf("Expected key preserved, got %q", got["key"])
	}
}
