package normalize

import (
	"testing"
	"time"

	"github.com/scipunch/aidigest/fetcher"
)

var (
	published = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	updated   = time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)
)

func TestNormalize_PrefersPublishedOverUpdated(t *testing.T) {
	item, ok := Normalize(fetcher.Item{
		Title:       "Paper",
		Link:        "https://example.com/paper",
		Description: "An abstract",
		Published:   &published,
		Updated:     &updated,
	})
	if !ok {
		t.Fatal("expected item to normalize")
	}
	if !item.Published.Equal(published) {
		t.Errorf("expected published date %v, got %v", published, item.Published)
	}
}

func TestNormalize_FallsBackToUpdated(t *testing.T) {
	item, ok := Normalize(fetcher.Item{
		Title:   "Paper",
		Link:    "https://example.com/paper",
		Updated: &updated,
	})
	if !ok {
		t.Fatal("expected item to normalize")
	}
	if !item.Published.Equal(updated) {
		t.Errorf("expected updated date %v, got %v", updated, item.Published)
	}
}

func TestNormalize_DropsItemWithoutTimestamp(t *testing.T) {
	_, ok := Normalize(fetcher.Item{Title: "No dates here", Link: "https://example.com/x"})
	if ok {
		t.Error("expected item without any timestamp to be dropped")
	}
}

func TestNormalize_TimestampIsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	local := time.Date(2026, 8, 20, 17, 0, 0, 0, loc)

	item, ok := Normalize(fetcher.Item{Title: "t", Link: "l", Published: &local})
	if !ok {
		t.Fatal("expected item to normalize")
	}
	if item.Published.Location() != time.UTC {
		t.Errorf("expected UTC timestamp, got %v", item.Published.Location())
	}
	if !item.Published.Equal(local) {
		t.Error("UTC conversion must not change the instant")
	}
}

func TestNormalize_MissingSummaryUsesSentinel(t *testing.T) {
	for _, desc := range []string{"", "   "} {
		item, ok := Normalize(fetcher.Item{Title: "t", Link: "l", Description: desc, Published: &published})
		if !ok {
			t.Fatal("expected item to normalize")
		}
		if item.Summary != NoSummary {
			t.Errorf("expected sentinel summary for %q, got %q", desc, item.Summary)
		}
	}
}

func TestNormalize_MarkupOnlySummaryUsesSentinel(t *testing.T) {
	item, ok := Normalize(fetcher.Item{Title: "t", Link: "l", Description: "<div><span>", Published: &published})
	if !ok {
		t.Fatal("expected item to normalize")
	}
	if item.Summary != NoSummary {
		t.Errorf("expected sentinel when stripping leaves nothing, got %q", item.Summary)
	}
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "just words", "just words"},
		{"paragraph tags removed", "<p>hello</p> world", "hello world"},
		{"cut at first remaining tag", "intro text <a href=\"x\">link</a> tail", "intro text"},
		{"paragraphs then other markup", "<p>lead</p> more <em>stress</em>", "lead more"},
		{"whitespace trimmed", "  <p> padded </p>  ", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripMarkup(tt.in); got != tt.want {
				t.Errorf("stripMarkup(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
