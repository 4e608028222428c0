package i18n

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// maxAcceptLanguageEntries bounds the work spent on a hostile header.
const maxAcceptLanguageEntries = 16

// ParseAcceptLanguage parses an Accept-Language header into locale tags,
// most preferred first. Weights only decide the order. Entries that fail to
// parse, wildcards and q=0 entries are dropped; an absent or unusable header
// yields an empty slice.
func ParseAcceptLanguage(header string) []language.Tag {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}

	type weighted struct {
		tag language.Tag
		q   float32
	}

	parts := strings.Split(header, ",")
	if len(parts) > maxAcceptLanguageEntries {
		parts = parts[:maxAcceptLanguageEntries]
	}

	entries := make([]weighted, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))

	for _, part := range parts {
		if isWildcard(part) {
			continue
		}

		tags, weights, err := language.ParseAcceptLanguage(part)
		if err != nil || len(tags) == 0 {
			continue
		}

		tag := tags[0]
		if tag.IsRoot() {
			continue
		}

		key := tag.String()
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		entries = append(entries, weighted{tag: tag, q: weights[0]})
	}

	slices.SortStableFunc(entries, func(a, b weighted) int {
		switch {
		case a.q > b.q:
			return -1
		case a.q < b.q:
			return 1
		default:
			return 0
		}
	})

	out := make([]language.Tag, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.tag)
	}

	return out
}

func isWildcard(entry string) bool {
	name, _, _ := strings.Cut(entry, ";")
	return strings.TrimSpace(name) == "*"
}
