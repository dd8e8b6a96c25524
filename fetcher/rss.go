package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

const defaultTimeout = 30 * time.Second

// RSSFetcher fetches syndication feeds using gofeed. It tolerates the
// common dialects (RSS, Atom, JSON feed) behind one parser.
type RSSFetcher struct {
	parser *gofeed.Parser
}

// NewRSSFetcher creates a new RSS fetcher with a bounded HTTP timeout
func NewRSSFetcher() *RSSFetcher {
	p := gofeed.NewParser()
	p.Client = &http.Client{Timeout: defaultTimeout}
	return &RSSFetcher{parser: p}
}

// Fetch retrieves and parses a feed from the given URL
func (f *RSSFetcher) Fetch(ctx context.Context, url string) (Feed, error) {
	var feed Feed

	parsed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return feed, fmt.Errorf("failed to parse feed at '%s' with %w", url, err)
	}

	feed.Title = parsed.Title
	feed.Items = make([]Item, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		desc := item.Description
		if desc == "" {
			desc = item.Content
		}
		feed.Items = append(feed.Items, Item{
			Title:       item.Title,
			Link:        item.Link,
			Description: desc,
			Published:   item.PublishedParsed,
			Updated:     item.UpdatedParsed,
		})
	}

	return feed, nil
}
