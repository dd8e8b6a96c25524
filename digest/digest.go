// Package digest composes the aggregation pipeline: fetch every source,
// normalize, filter to the recency window, rank, truncate, enrich. One
// Builder is constructed at startup and reused for every request.
package digest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/scipunch/aidigest/cache"
	"github.com/scipunch/aidigest/enrich"
	"github.com/scipunch/aidigest/fetcher"
	"github.com/scipunch/aidigest/filter"
	"github.com/scipunch/aidigest/normalize"
)

// ErrBadConfig marks configuration errors detected before any network
// activity. It is the only error Build ever returns; everything else is
// degraded locally.
var ErrBadConfig = errors.New("invalid digest configuration")

// Request describes one digest invocation
type Request struct {
	Sources    []string // ordered feed URLs
	WindowDays int
	TopN       int
}

func (r Request) validate() error {
	if len(r.Sources) == 0 {
		return fmt.Errorf("%w: no sources configured", ErrBadConfig)
	}
	if r.WindowDays <= 0 {
		return fmt.Errorf("%w: window_days must be positive, got %d", ErrBadConfig, r.WindowDays)
	}
	if r.TopN <= 0 {
		return fmt.Errorf("%w: top_n must be positive, got %d", ErrBadConfig, r.TopN)
	}
	return nil
}

// Fingerprint encodes a request into a deterministic cache key. Whether
// an enrichment provider is configured participates because it changes
// the output shape.
func Fingerprint(r Request, enriched bool) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(r.Sources, "\n")))
	h.Write([]byte("\nwindow=" + strconv.Itoa(r.WindowDays)))
	h.Write([]byte("\ntop=" + strconv.Itoa(r.TopN)))
	h.Write([]byte("\nenriched=" + strconv.FormatBool(enriched)))
	return hex.EncodeToString(h.Sum(nil))
}

// Rank orders items by publish time descending and truncates to topN.
// The sort is stable so coinciding timestamps keep their input order and
// results stay deterministic across runs.
func Rank(items []normalize.Item, topN int) []normalize.Item {
	ranked := make([]normalize.Item, len(items))
	copy(ranked, items)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Published.After(ranked[j].Published)
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// Builder owns the pipeline collaborators. Zero-value fields are not
// usable; construct with New.
type Builder struct {
	fetcher  fetcher.Fetcher
	enricher *enrich.Enricher
	cache    *cache.Cache[[]enrich.Item]
	filters  *filter.Pipeline
	ttl      time.Duration

	now func() time.Time // overridable in tests
}

func New(f fetcher.Fetcher, e *enrich.Enricher, c *cache.Cache[[]enrich.Item], filters *filter.Pipeline, ttl time.Duration) *Builder {
	return &Builder{
		fetcher:  f,
		enricher: e,
		cache:    c,
		filters:  filters,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Build returns the digest for the request, served from cache when a
// fresh entry exists. A single failing source or enrichment call never
// fails the build; only a bad configuration does, and that is detected
// before any fetch.
func (b *Builder) Build(ctx context.Context, req Request) ([]enrich.Item, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	key := Fingerprint(req, b.enricher.HasProvider())
	return b.cache.GetOrCompute(key, b.ttl, func() ([]enrich.Item, error) {
		return b.compute(ctx, req), nil
	})
}

func (b *Builder) compute(ctx context.Context, req Request) []enrich.Item {
	results := fetcher.FetchAll(ctx, b.fetcher, req.Sources)

	var items []normalize.Item
	skipped := 0
	for _, result := range results {
		if result.Failed() {
			slog.Warn("source unavailable", "url", result.URL, "error", result.Err)
			continue
		}
		for _, raw := range result.Feed.Items {
			item, ok := normalize.Normalize(raw)
			if !ok {
				skipped++
				slog.Debug("item skipped, no usable timestamp", "title", raw.Title, "url", raw.Link)
				continue
			}
			items = append(items, item)
		}
	}
	if skipped > 0 {
		slog.Debug("normalization skipped items", "count", skipped)
	}

	items = b.filters.Apply(items)

	cutoff := filter.Cutoff(b.now(), req.WindowDays)
	items = filter.Window(items, cutoff)

	ranked := Rank(items, req.TopN)
	slog.Info("digest computed",
		"sources", len(req.Sources),
		"candidates", len(items),
		"selected", len(ranked))

	return b.enricher.EnrichAll(ctx, ranked)
}
