package duet

import (
	"encoding/json"
	"strings"
)

// Normalize strips provider formatting from a text response that should
// contain JSON: a wrapping fenced code block (with or without a language
// tag) is removed and surrounding whitespace trimmed. Text without a
// fence passes through unchanged apart from trimming.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening fence line, tag and all.
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	// Drop the closing fence if present.
	if j := strings.LastIndex(s, "```"); j >= 0 {
		s = s[:j]
	}
	return strings.TrimSpace(s)
}

// Decode normalizes raw backend text and parses it into T. Parse failure
// returns a MalformedResponseError carrying the original raw text; a
// partial or default value is never returned silently.
func Decode[T any](raw string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(Normalize(raw)), &v); err != nil {
		return v, &MalformedResponseError{Raw: raw, Cause: err}
	}
	return v, nil
}
