// Package normalize maps raw feed entries into the canonical item record
// used by the rest of the pipeline.
package normalize

import (
	"strings"
	"time"

	"github.com/scipunch/aidigest/fetcher"
)

// NoSummary is substituted when a source provides no summary at all.
const NoSummary = "no summary available"

// Item is the canonical record for one feed entry. Published is always
// set and always UTC.
type Item struct {
	Title     string
	Link      string
	Published time.Time
	Summary   string
}

// Normalize converts a raw feed entry into a canonical Item. The second
// return value is false when the entry has no usable timestamp; such
// entries are skipped, not treated as errors.
//
// An explicit publish timestamp wins over a last-updated timestamp.
func Normalize(raw fetcher.Item) (Item, bool) {
	var published time.Time
	switch {
	case raw.Published != nil:
		published = *raw.Published
	case raw.Updated != nil:
		published = *raw.Updated
	default:
		return Item{}, false
	}

	summary := raw.Description
	if strings.TrimSpace(summary) == "" {
		summary = NoSummary
	} else {
		summary = stripMarkup(summary)
		if summary == "" {
			summary = NoSummary
		}
	}

	return Item{
		Title:     strings.TrimSpace(raw.Title),
		Link:      raw.Link,
		Published: published.UTC(),
		Summary:   summary,
	}, true
}

// stripMarkup performs a best-effort plain-text reduction: paragraph tags
// are dropped and the text is cut at the first remaining angle bracket.
// This is not HTML sanitization and makes no promise beyond readability.
func stripMarkup(s string) string {
	s = strings.ReplaceAll(s, "<p>", "")
	s = strings.ReplaceAll(s, "</p>", "")
	if before, _, found := strings.Cut(s, "<"); found {
		s = before
	}
	return strings.TrimSpace(s)
}
