package sources

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/deusflow/ainews/internal/news"
)

const (
	DefaultHackerNewsAPI = "https://hacker-news.firebaseio.com/v0"
	defaultLimit         = 10
	defaultScanDepth     = 100
	defaultHotScore      = 200
	defaultHotRelevance  = 15
)

// Config is the on-disk list of upstreams, normally configs/sources.yaml.
type Config struct {
	HackerNews HackerNewsConfig `yaml:"hackerNews"`
	Feeds      []FeedConfig     `yaml:"feeds"`
	Pages      []PageConfig     `yaml:"pages"`
}

type HackerNewsConfig struct {
	Enabled      *bool  `yaml:"enabled"`
	Name         string `yaml:"name"`
	APIURL       string `yaml:"apiUrl"`
	Limit        int    `yaml:"limit"`
	ScanDepth    int    `yaml:"scanDepth"`
	HotScore     int    `yaml:"hotScore"`
	HotRelevance int    `yaml:"hotRelevance"`
}

// IsEnabled reports true unless the section says enabled: false.
func (c HackerNewsConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

func (c HackerNewsConfig) withDefaults() HackerNewsConfig {
	if c.Name == "" {
		c.Name = "Hacker News"
	}
	if c.APIURL == "" {
		c.APIURL = DefaultHackerNewsAPI
	}
	if c.Limit <= 0 {
		c.Limit = defaultLimit
	}
	if c.ScanDepth <= 0 {
		c.ScanDepth = defaultScanDepth
	}
	if c.HotScore <= 0 {
		c.HotScore = defaultHotScore
	}
	if c.HotRelevance <= 0 {
		c.HotRelevance = defaultHotRelevance
	}
	return c
}

type FeedConfig struct {
	Name         string `yaml:"name"`
	URL          string `yaml:"url"`
	Limit        int    `yaml:"limit"`
	HotRelevance int    `yaml:"hotRelevance"`
}

func (c FeedConfig) withDefaults() FeedConfig {
	if c.Name == "" {
		c.Name = hostName(c.URL)
	}
	if c.Limit <= 0 {
		c.Limit = defaultLimit
	}
	if c.HotRelevance <= 0 {
		c.HotRelevance = defaultHotRelevance
	}
	return c
}

type PageConfig struct {
	Name         string `yaml:"name"`
	URL          string `yaml:"url"`
	LinkSelector string `yaml:"linkSelector"`
	Limit        int    `yaml:"limit"`
	HotRelevance int    `yaml:"hotRelevance"`
}

func (c PageConfig) withDefaults() PageConfig {
	if c.Name == "" {
		c.Name = hostName(c.URL)
	}
	if c.Limit <= 0 {
		c.Limit = defaultLimit
	}
	if c.HotRelevance <= 0 {
		c.HotRelevance = defaultHotRelevance
	}
	return c
}

// DefaultConfig is Hacker News alone.
func DefaultConfig() Config {
	return Config{HackerNews: HackerNewsConfig{}.withDefaults()}
}

// LoadConfig reads a sources file. A missing file yields DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read sources config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse sources config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	cfg.HackerNews = cfg.HackerNews.withDefaults()
	return cfg, nil
}

func (c Config) Validate() error {
	for i, f := range c.Feeds {
		if !isHTTPURL(f.URL) {
			return fmt.Errorf("feeds[%d]: url %q must be an absolute http(s) URL", i, f.URL)
		}
	}
	for i, p := range c.Pages {
		if !isHTTPURL(p.URL) {
			return fmt.Errorf("pages[%d]: url %q must be an absolute http(s) URL", i, p.URL)
		}
	}
	return nil
}

// Build turns the config into sources in file order, Hacker News first.
func Build(cfg Config, deps Deps) ([]news.Source, error) {
	if deps.Classifier == nil {
		return nil, errors.New("sources: classifier is required")
	}

	var out []news.Source
	if cfg.HackerNews.IsEnabled() {
		out = append(out, NewHackerNews(cfg.HackerNews, deps))
	}
	for _, f := range cfg.Feeds {
		out = append(out, NewFeedSource(f, deps))
	}
	for _, p := range cfg.Pages {
		src, err := NewPageSource(p, deps)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func hostName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
