// Package enrich attaches a short rationale to each digest item. A
// provider-backed agent generates the rationale when one is configured;
// every failure path degrades to a deterministic excerpt of the item's
// own summary instead of surfacing an error.
package enrich

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/scipunch/aidigest/agent"
	"github.com/scipunch/aidigest/normalize"
	"github.com/scipunch/aidigest/store"
)

// Source tells where an item's rationale came from
type Source string

const (
	Generated Source = "generated"
	Fallback  Source = "fallback"
)

// Item is a digest entry with its rationale attached
type Item struct {
	normalize.Item
	Rationale       string
	RationaleSource Source
}

const (
	// SummaryBudget caps the summary characters both sent to the
	// provider and kept in a fallback excerpt.
	SummaryBudget = 400

	ellipsis = "..."

	// DefaultCallInterval is the minimum spacing between consecutive
	// provider calls within one batch.
	DefaultCallInterval = 2 * time.Second

	// DefaultBatchBudget bounds the wall-clock time of one enrichment
	// batch; items past the deadline take the fallback path.
	DefaultBatchBudget = 2 * time.Minute
)

// Params configures an Enricher. Agent may be nil, in which case every
// item falls back to an excerpt.
type Params struct {
	Agent        agent.Agent
	Model        string       // store key component, usually the provider model name
	Store        *store.Store // optional persisted rationales
	CallInterval time.Duration
	BatchBudget  time.Duration
}

// Enricher produces rationales for ranked digest items
type Enricher struct {
	agent   agent.Agent
	model   string
	store   *store.Store
	limiter *rate.Limiter
	budget  time.Duration
}

func New(p Params) *Enricher {
	e := &Enricher{
		agent:  p.Agent,
		model:  p.Model,
		store:  p.Store,
		budget: p.BatchBudget,
	}
	if e.budget <= 0 {
		e.budget = DefaultBatchBudget
	}

	interval := p.CallInterval
	if interval <= 0 {
		interval = DefaultCallInterval
	}
	if e.agent != nil {
		e.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}

	return e
}

// HasProvider reports whether a generation backend is configured. The
// answer participates in the digest cache key because it changes output.
func (e *Enricher) HasProvider() bool {
	return e.agent != nil
}

// EnrichAll attaches a rationale to every item, in order. Provider calls
// share one pacing limiter and one time budget across the batch; once the
// budget is exhausted the remaining items degrade to excerpts.
func (e *Enricher) EnrichAll(ctx context.Context, items []normalize.Item) []Item {
	if e.agent != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.budget)
		defer cancel()
	}

	enriched := make([]Item, 0, len(items))
	for _, item := range items {
		enriched = append(enriched, e.enrich(ctx, item))
	}
	return enriched
}

func (e *Enricher) enrich(ctx context.Context, item normalize.Item) Item {
	if e.agent == nil {
		return e.fallback(item)
	}

	if e.store != nil {
		if cached, hit, err := e.store.Get(item.Link, e.model); err == nil && hit {
			slog.Debug("rationale store hit", "url", item.Link)
			return Item{Item: item, Rationale: cached, RationaleSource: Generated}
		}
	}

	if err := e.limiter.Wait(ctx); err != nil {
		slog.Debug("enrichment budget exhausted", "url", item.Link)
		return e.fallback(item)
	}

	rationale, err := e.agent.Process(ctx, item.Title, capSummary(item.Summary))
	if err != nil {
		slog.Warn("rationale generation failed, using excerpt", "url", item.Link, "error", err)
		return e.fallback(item)
	}
	rationale = strings.TrimSpace(rationale)
	if rationale == "" {
		slog.Warn("empty rationale from provider, using excerpt", "url", item.Link)
		return e.fallback(item)
	}

	if e.store != nil {
		if err := e.store.Put(item.Link, e.model, rationale); err != nil {
			slog.Warn("failed to persist rationale", "url", item.Link, "error", err)
		}
	}

	return Item{Item: item, Rationale: rationale, RationaleSource: Generated}
}

func (e *Enricher) fallback(item normalize.Item) Item {
	return Item{Item: item, Rationale: Excerpt(item.Summary), RationaleSource: Fallback}
}

// Excerpt derives a deterministic rationale from a summary: the full
// summary when it fits the budget, otherwise the first SummaryBudget
// characters cut back to the last sentence boundary and marked with an
// ellipsis.
func Excerpt(summary string) string {
	runes := []rune(summary)
	if len(runes) <= SummaryBudget {
		return summary
	}

	cut := string(runes[:SummaryBudget])
	if idx := strings.LastIndex(cut, "."); idx > 0 {
		cut = cut[:idx]
	}
	return cut + ellipsis
}

// capSummary bounds the summary characters submitted to the provider
func capSummary(summary string) string {
	runes := []rune(summary)
	if len(runes) <= SummaryBudget {
		return summary
	}
	return string(runes[:SummaryBudget])
}
