package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/template"
	"time"

	"github.com/scipunch/aidigest/agent/rationale"
	"github.com/scipunch/aidigest/cache"
	"github.com/scipunch/aidigest/config"
	"github.com/scipunch/aidigest/digest"
	"github.com/scipunch/aidigest/enrich"
	"github.com/scipunch/aidigest/fetcher"
	"github.com/scipunch/aidigest/filter"
	"github.com/scipunch/aidigest/store"
)

const digestTemplate = `{{if not .Items}}No recent items. Try again later or widen the window.
{{else}}{{range $i, $item := .Items}}{{inc $i}}. {{$item.Title}}
   {{$item.Link}}
   published {{$item.Published.Format "2006-01-02"}}
   why it matters: {{$item.Rationale}}

{{end}}{{end}}`

func main() {
	if os.Getenv("DEBUG") != "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	var cfgPath string
	var windowDays, topN int
	var cleanStore bool
	flag.StringVar(&cfgPath, "config", config.DefaultPath(), "path to a TOML config")
	flag.IntVar(&windowDays, "window", 0, "recency window in days (overrides config)")
	flag.IntVar(&topN, "top", 0, "number of items to keep (overrides config)")
	flag.BoolVar(&cleanStore, "clean", false, "remove all stored rationales")
	flag.Parse()

	// Read config and create if default is missing
	conf, err := config.Read(cfgPath)
	if errors.Is(err, os.ErrNotExist) && cfgPath == config.DefaultPath() {
		if err := config.Write(cfgPath, conf); err != nil {
			log.Fatalf("failed to write default config with %s", err)
		}
	} else if err != nil {
		log.Fatalf("failed to read config with %s", err)
	}
	if windowDays > 0 {
		conf.WindowDays = windowDays
	}
	if topN > 0 {
		conf.TopN = topN
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional rationale store
	var rationaleStore *store.Store
	if conf.RationaleDB != "" {
		rationaleStore, err = store.Open(conf.RationaleDB)
		if err != nil {
			log.Fatalf("failed to open rationale store: %v", err)
		}
		defer rationaleStore.Close()

		if cleanStore {
			if err := rationaleStore.Clear(); err != nil {
				log.Fatalf("failed to clear rationale store: %v", err)
			}
			slog.Info("rationale store cleared")
			return
		}

		if stats, err := rationaleStore.Stats(); err != nil {
			slog.Warn("failed to get rationale store stats", "error", err)
		} else {
			slog.Info("rationale store opened", "entries", stats.Entries)
		}
	} else if cleanStore {
		log.Fatal("no rationale_db configured, nothing to clean")
	}

	// Load credentials; a missing or incomplete creds file just means no
	// generated rationales, never a startup failure.
	creds, err := config.ReadCredentials(config.DefaultCredentialsPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("failed to read credentials: %s", err)
	}

	enrichParams := enrich.Params{Store: rationaleStore}
	if creds.Gemini.IsValid() {
		agent, err := rationale.New(ctx, creds.Gemini)
		if err != nil {
			log.Fatalf("failed to initialize rationale agent: %s", err)
		}
		enrichParams.Agent = agent
		enrichParams.Model = agent.Model()
		slog.Info("rationale agent initialized", "model", agent.Model())
	} else {
		slog.Info("no Gemini credentials, rationales fall back to excerpts")
	}

	builder := digest.New(
		fetcher.NewRSSFetcher(),
		enrich.New(enrichParams),
		cache.New[[]enrich.Item](),
		filter.NewPipeline(conf.Filters),
		time.Duration(conf.CacheTTL),
	)

	items, err := builder.Build(ctx, digest.Request{
		Sources:    conf.Sources,
		WindowDays: conf.WindowDays,
		TopN:       conf.TopN,
	})
	if err != nil {
		log.Fatalf("failed to build digest: %s", err)
	}

	t := template.Must(template.New("digest").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		Parse(digestTemplate))
	if err := t.Execute(os.Stdout, struct{ Items []enrich.Item }{items}); err != nil {
		log.Fatalf("failed to render digest: %s", err)
	}
}
