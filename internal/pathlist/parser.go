// Package pathlist parses and validates delimiter-separated list variables
// such as PATH. It performs no I/O: existence checks are injected.
package pathlist

import (
	"strings"

	"wenv/internal/model"
)

// Parse splits raw on every occurrence of delim.
// Empty segments are kept, so "" yields a single empty entry and "a;;b"
// yields three entries.
func Parse(raw, delim string) []model.Entry {
	parts := splitAll(raw, delim)
	entries := make([]model.Entry, len(parts))
	for i, p := range parts {
		entries[i] = model.Entry{Index: i, Raw: p}
	}
	return entries
}

// Join is the inverse of Parse.
func Join(entries []model.Entry, delim string) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.Raw
	}
	return strings.Join(parts, delim)
}

func splitAll(raw, delim string) []string {
	// strings.Split with an empty separator splits into runes, which is not a
	// list at all. Treat it as "no delimiter".
	if delim == "" {
		return []string{raw}
	}
	return strings.Split(raw, delim)
}
