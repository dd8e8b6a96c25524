package config

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/BurntSushi/toml"
)

const baseCfgPath = "aidigest/config.toml"

// Defaults applied when the config omits a value.
const (
	DefaultWindowDays = 7
	DefaultTopN       = 10
	DefaultCacheTTL   = 24 * time.Hour
)

type Config struct {
	Sources     []string          `toml:"sources"`      // ordered feed URLs
	WindowDays  int               `toml:"window_days"`  // recency window
	TopN        int               `toml:"top_n"`        // digest size
	CacheTTL    Duration          `toml:"cache_ttl"`    // digest memoization TTL
	RationaleDB string            `toml:"rationale_db"` // optional sqlite path for generated rationales, empty = off
	Filters     map[string]Filter `toml:"filters"`      // named content filters, all applied when present
}

// Filter defines rules for dropping low-quality feed items
type Filter struct {
	MinLength       int      `toml:"min_length"`       // minimum character count (0 = no limit)
	MinWords        int      `toml:"min_words"`        // minimum word count (0 = no limit)
	ExcludePatterns []string `toml:"exclude_patterns"` // regex patterns to exclude
}

// Duration wraps time.Duration so TOML values like "24h" decode directly.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func Read(path string) (Config, error) {
	conf := Default()
	dat, err := os.ReadFile(path)
	if err != nil {
		return conf, err
	}
	_, err = toml.Decode(string(dat), &conf)
	if err != nil {
		return conf, fmt.Errorf("failed to decode config at %s with %w", path, err)
	}
	return conf, nil
}

func Write(cfgPath string, cfg Config) error {
	blob, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config with %w", err)
	}
	basePath := path.Dir(cfgPath)
	err = os.MkdirAll(basePath, os.ModePerm)
	if err != nil {
		return fmt.Errorf("failed to create base config directory at '%s' with %w", basePath, err)
	}
	err = os.WriteFile(cfgPath, blob, 0644)
	if err != nil {
		return fmt.Errorf("failed to write into config file at '%s' with %w", cfgPath, err)
	}
	slog.Info("config written", "at", cfgPath)
	return nil
}

func Default() Config {
	return Config{
		Sources:    []string{},
		WindowDays: DefaultWindowDays,
		TopN:       DefaultTopN,
		CacheTTL:   Duration(DefaultCacheTTL),
	}
}

func DefaultPath() string {
	var xdgHome = os.Getenv("XDG_CONFIG_HOME")
	if xdgHome != "" {
		return path.Join(xdgHome, baseCfgPath)
	}

	var home = os.Getenv("HOME")
	if home != "" {
		return path.Join(home, ".config", baseCfgPath)
	}

	panic("unclear where to search for the config file")
}
