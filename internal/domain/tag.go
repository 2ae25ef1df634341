package domain

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Tag is a label that can be attached to contacts and campaigns.
// Names are unique and case-sensitive: "VIP" and "vip" are different tags.
type Tag struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ContactCount int       `json:"contact_count"` // Computed on list; zero elsewhere
	CreatedAt    time.Time `json:"created_at"`
}

// NormalizeName trims surrounding whitespace and composes the text to NFC so
// that visually identical Arabic or accented input maps to one stored value.
// Case is preserved.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// NormalizeTagNames normalizes each name, drops empties and removes duplicates
// while keeping first-seen order.
func NormalizeTagNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = NormalizeName(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// SplitTagList parses a comma separated tag field such as "importer, new-leads".
func SplitTagList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return NormalizeTagNames(strings.Split(s, ","))
}

// TagNames returns the names of the given tags in order.
func TagNames(tags []*Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}
