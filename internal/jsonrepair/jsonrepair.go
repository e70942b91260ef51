// Package jsonrepair recovers JSON payloads from LLM output. Models wrap
// JSON in markdown fences, leave trailing commas, and emit template-literal
// backticks or raw newlines inside string values; the pipeline here repairs
// those one ordered step at a time before parsing.
//
// The repair is a best-effort heuristic, not a grammar: it is lossy, and
// the step order matters because later steps assume the cleanup performed
// by earlier ones.
package jsonrepair

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const previewLimit = 500

// ParseError reports that no valid JSON could be recovered. It carries
// truncated previews of the original and cleaned text for diagnostics.
type ParseError struct {
	Original string // First 500 chars of the raw model output
	Cleaned  string // First 500 chars after the repair pipeline
	Err      error  // Final json.Unmarshal failure
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to recover JSON from model output: %v (original: %q, cleaned: %q)",
		e.Err, e.Original, e.Cleaned)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse runs the repair pipeline over raw model output and returns the
// recovered JSON document.
func Parse(raw string) (json.RawMessage, error) {
	cleaned := raw
	for _, step := range pipeline {
		cleaned = step(cleaned)
	}

	if json.Valid([]byte(cleaned)) {
		return json.RawMessage(cleaned), nil
	}

	// Aggressive second pass over the original text: take the first {...}
	// block found anywhere, blank out backtick-delimited spans, strip
	// trailing commas, and retry once.
	aggressive := stripTrailingCommas(blankBacktickSpans(firstBraceBlock(raw)))
	if aggressive != "" && json.Valid([]byte(aggressive)) {
		return json.RawMessage(aggressive), nil
	}

	err := json.Unmarshal([]byte(cleaned), &struct{}{})
	return nil, &ParseError{
		Original: preview(raw),
		Cleaned:  preview(cleaned),
		Err:      err,
	}
}

// ParseInto parses repaired model output into v.
func ParseInto(raw string, v any) error {
	doc, err := Parse(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(doc, v); err != nil {
		return &ParseError{Original: preview(raw), Cleaned: preview(string(doc)), Err: err}
	}
	return nil
}

// pipeline is the ordered list of pure string transforms. Do not reorder:
// fence stripping must precede string-literal escaping, which must precede
// top-level extraction and trailing-comma removal.
var pipeline = []func(string) string{
	stripFences,
	stripControlChars,
	escapeBackticksInStrings,
	escapeWhitespaceInStrings,
	extractTopLevel,
	stripTrailingCommas,
}

var fenceRegex = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// stripFences removes triple-backtick code fences, with or without a json
// language tag, keeping the fenced content.
func stripFences(s string) string {
	if m := fenceRegex.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	// Unterminated fence: drop the markers and keep everything after.
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	return strings.ReplaceAll(s, "```", "")
}

// stripControlChars trims the text and removes ASCII control characters
// other than newline, carriage return and tab, which are handled later by
// escapeWhitespaceInStrings.
func stripControlChars(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// escapeBackticksInStrings replaces backticks inside quoted string
// literals with their unicode escape, so template-literal syntax leaking
// into values cannot terminate the string early.
func escapeBackticksInStrings(s string) string {
	return mapInsideStrings(s, func(r rune) (string, bool) {
		if r == '`' {
			return "\\u0060", true
		}
		return "", false
	})
}

// escapeWhitespaceInStrings escapes raw newlines, carriage returns and
// tabs inside quoted string literals.
func escapeWhitespaceInStrings(s string) string {
	return mapInsideStrings(s, func(r rune) (string, bool) {
		switch r {
		case '\n':
			return `\n`, true
		case '\r':
			return `\r`, true
		case '\t':
			return `\t`, true
		}
		return "", false
	})
}

// mapInsideStrings rewrites runes that appear inside double-quoted string
// literals. Escape sequences are honored so a \" does not end the string.
func mapInsideStrings(s string, replace func(rune) (string, bool)) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for _, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			default:
				if repl, ok := replace(r); ok {
					b.WriteString(repl)
					continue
				}
			}
		} else if r == '"' {
			inString = true
		}
		b.WriteRune(r)
	}
	return b.String()
}

// extractTopLevel returns the first balanced top-level {...} or [...]
// when the text still contains content outside it; otherwise the input
// unchanged.
func extractTopLevel(s string) string {
	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return s
	}

	open := rune(s[start])
	var close rune
	if open == '{' {
		close = '}'
	} else {
		close = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i, r := range s[start:] {
		switch {
		case escaped:
			escaped = false
		case inString && r == '\\':
			escaped = true
		case r == '"':
			inString = !inString
		case !inString && r == open:
			depth++
		case !inString && r == close:
			depth--
			if depth == 0 {
				return s[start : start+i+1]
			}
		}
	}
	return s[start:]
}

// stripTrailingCommas removes commas that immediately precede a closing
// brace or bracket, outside string literals.
func stripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	pendingComma := false // A comma (plus whitespace) is buffered, fate undecided
	var buf []rune

	flush := func() {
		for _, r := range buf {
			b.WriteRune(r)
		}
		buf = buf[:0]
		pendingComma = false
	}

	for _, r := range s {
		if inString {
			flush()
			b.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch {
		case r == '"':
			flush()
			b.WriteRune(r)
			inString = true
		case r == ',':
			flush()
			buf = append(buf, r)
			pendingComma = true
		case pendingComma && (r == ' ' || r == '\n' || r == '\r' || r == '\t'):
			buf = append(buf, r)
		case pendingComma && (r == '}' || r == ']'):
			// Drop the comma, keep the gathered whitespace and the closer.
			for _, w := range buf[1:] {
				b.WriteRune(w)
			}
			buf = buf[:0]
			pendingComma = false
			b.WriteRune(r)
		default:
			flush()
			b.WriteRune(r)
		}
	}
	flush()
	return b.String()
}

// firstBraceBlock slices from the first '{' to the last '}' of the text.
func firstBraceBlock(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}

var backtickSpanRegex = regexp.MustCompile("`[^`]*`")

// blankBacktickSpans replaces backtick-delimited spans with an empty
// JSON string so the surrounding structure stays parseable.
func blankBacktickSpans(s string) string {
	return backtickSpanRegex.ReplaceAllString(s, `""`)
}

func preview(s string) string {
	if len(s) > previewLimit {
		return s[:previewLimit]
	}
	return s
}
