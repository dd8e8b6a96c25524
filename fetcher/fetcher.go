package fetcher

import (
	"context"
	"sync"
	"time"
)

// Feed represents a collection of raw items from one feed source
type Feed struct {
	Title string
	Items []Item
}

// Item is a single feed entry before normalization. Published and Updated
// are kept separate because sources disagree about which one they fill in;
// the normalizer decides which to trust.
type Item struct {
	Title       string
	Link        string
	Description string
	Published   *time.Time
	Updated     *time.Time
}

// Fetcher is an interface for fetching feeds from remote sources
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Feed, error)
}

// SourceResult is the outcome of fetching one source. A failed source
// carries its error here instead of propagating it; the caller decides
// how to report it.
type SourceResult struct {
	URL  string
	Feed Feed
	Err  error
}

// Failed returns true if the source could not be fetched or parsed.
func (r SourceResult) Failed() bool {
	return r.Err != nil
}

// FetchAll fetches every URL concurrently and returns one result per URL,
// in input order. A failing source never affects its siblings.
func FetchAll(ctx context.Context, f Fetcher, urls []string) []SourceResult {
	results := make([]SourceResult, len(urls))

	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			feed, err := f.Fetch(ctx, url)
			results[i] = SourceResult{URL: url, Feed: feed, Err: err}
		}(i, url)
	}
	wg.Wait()

	return results
}
