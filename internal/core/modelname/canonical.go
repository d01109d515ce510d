// Package modelname maps raw model identifiers to display names.
package modelname

import (
	"strings"
)

// DefaultDisplayName is used when no source can attribute a model.
const DefaultDisplayName = "Claude"

// SyntheticModel is the placeholder the accounting tool records for
// internally generated messages; it never names a real model.
const SyntheticModel = "<synthetic>"

// rule maps any of its substring patterns to one display name.
type rule struct {
	patterns []string
	display  string
}

// canonicalTable is evaluated in order. Longer version patterns must come
// before their prefixes: "sonnet-4-5" before "sonnet-4" before "sonnet",
// otherwise a 4.5 identifier would resolve to the plain 4 form.
var canonicalTable = []rule{
	{patterns: []string{"opus-4-1", "opus 4.1"}, display: "Opus 4.1"},
	{patterns: []string{"opus-4", "opus 4"}, display: "Opus 4"},
	{patterns: []string{"sonnet-4-5", "sonnet 4.5"}, display: "Sonnet 4.5"},
	{patterns: []string{"sonnet-4", "sonnet 4"}, display: "Sonnet 4"},
	{patterns: []string{"sonnet-3-5", "sonnet 3.5", "sonnet-20241022"}, display: "Sonnet 3.5"},
	{patterns: []string{"sonnet"}, display: "Sonnet"},
	{patterns: []string{"haiku"}, display: "Haiku"},
}

// Canonicalize resolves a raw model identifier to its display name.
// Unrecognized identifiers fall back to a cleaned, title-cased form of
// the raw string; an empty identifier yields the default label.
func Canonicalize(raw string) string {
	if raw == "" {
		return DefaultDisplayName
	}

	lower := strings.ToLower(raw)
	for _, r := range canonicalTable {
		for _, p := range r.patterns {
			if strings.Contains(lower, p) {
				return r.display
			}
		}
	}

	return titleCase(strings.ReplaceAll(strings.TrimPrefix(lower, "claude-"), "-", " "))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
