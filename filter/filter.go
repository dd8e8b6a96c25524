package filter

import (
	"log/slog"
	"regexp"
	"time"
	"unicode"

	"github.com/scipunch/aidigest/config"
	"github.com/scipunch/aidigest/normalize"
)

// Window retains items published at or after the cutoff. Pure; input
// order is preserved.
func Window(items []normalize.Item, cutoff time.Time) []normalize.Item {
	kept := make([]normalize.Item, 0, len(items))
	for _, item := range items {
		if !item.Published.Before(cutoff) {
			kept = append(kept, item)
		}
	}
	return kept
}

// Cutoff computes the start of the recency window: now minus windowDays.
func Cutoff(now time.Time, windowDays int) time.Time {
	return now.Add(-time.Duration(windowDays) * 24 * time.Hour)
}

// Pipeline applies every named filter from config to each item
type Pipeline struct {
	filters map[string]*compiledFilter
}

type compiledFilter struct {
	config          config.Filter
	excludePatterns []*regexp.Regexp
}

// NewPipeline compiles the configured filters. Invalid regex patterns are
// logged and skipped rather than failing the whole pipeline.
func NewPipeline(filtersConfig map[string]config.Filter) *Pipeline {
	compiled := make(map[string]*compiledFilter)

	for name, filterCfg := range filtersConfig {
		cf := &compiledFilter{
			config:          filterCfg,
			excludePatterns: make([]*regexp.Regexp, 0, len(filterCfg.ExcludePatterns)),
		}

		for _, pattern := range filterCfg.ExcludePatterns {
			re, err := regexp.Compile(pattern)
			if err != nil {
				slog.Warn("invalid regex pattern in filter", "filter", name, "pattern", pattern, "error", err)
				continue
			}
			cf.excludePatterns = append(cf.excludePatterns, re)
		}

		compiled[name] = cf
	}

	return &Pipeline{filters: compiled}
}

// ShouldInclude returns true if the item passes every configured filter;
// on rejection the second value names the filter and rule that matched.
func (p *Pipeline) ShouldInclude(item normalize.Item) (bool, string) {
	if p == nil || len(p.filters) == 0 {
		return true, ""
	}

	text := item.Title + " " + item.Summary

	for name, f := range p.filters {
		if f.config.MinLength > 0 && len(text) < f.config.MinLength {
			return false, name + ":min_length"
		}

		if f.config.MinWords > 0 && countWords(text) < f.config.MinWords {
			return false, name + ":min_words"
		}

		for i, pattern := range f.excludePatterns {
			if pattern.MatchString(text) {
				return false, name + ":exclude_pattern[" + f.config.ExcludePatterns[i] + "]"
			}
		}
	}

	return true, ""
}

// Apply filters a batch of items, keeping input order
func (p *Pipeline) Apply(items []normalize.Item) []normalize.Item {
	if p == nil || len(p.filters) == 0 {
		return items
	}

	kept := make([]normalize.Item, 0, len(items))
	for _, item := range items {
		include, reason := p.ShouldInclude(item)
		if !include {
			slog.Debug("item filtered out", "title", item.Title, "reason", reason, "url", item.Link)
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// countWords counts the number of words in text
func countWords(text string) int {
	words := 0
	inWord := false

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if !inWord {
				words++
				inWord = true
			}
		} else {
			inWord = false
		}
	}

	return words
}
