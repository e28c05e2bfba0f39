package crawler

import (
	"path/filepath"
	"time"

	"regdocs/config"
)

// DefaultSeeds are the regulation portals crawled on every run.
var DefaultSeeds = []string{
	"https://peraturan.bpk.go.id/",
	"https://jdih.kemenkeu.go.id/in/page/peraturan",
}

type Config struct {
	Seeds             []string
	AllowedExtensions []string
	// Keywords, when set, must occur in a link for it to be downloaded.
	Keywords    []string
	OutputDir   string
	UserAgent   string
	Engine      string
	ProxyURL    string
	PageTimeout time.Duration
	// StatePath is the bbolt file used by the static engine.
	StatePath string
}

// DefaultConfig returns a default crawler configuration
func DefaultConfig() *Config {
	return &Config{
		Seeds:             DefaultSeeds,
		AllowedExtensions: []string{".pdf"},
		OutputDir:         "data",
		UserAgent:         "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Engine:            config.EngineBrowser,
		StatePath:         filepath.Join("data", ".crawl", "state.db"),
	}
}

// NewConfig derives the crawler configuration from the application config.
func NewConfig(app *config.Config) *Config {
	cfg := DefaultConfig()
	cfg.OutputDir = app.DataDir
	cfg.StatePath = filepath.Join(app.DataDir, ".crawl", "state.db")
	cfg.Engine = app.CrawlEngine
	cfg.ProxyURL = app.ProxyURL
	cfg.PageTimeout = app.Crawler.PageTimeout
	if app.Crawler.UserAgent != "" {
		cfg.UserAgent = app.Crawler.UserAgent
	}
	cfg.Keywords = app.Crawler.LinkKeywords
	if len(app.Crawler.AllowedExtensions) > 0 {
		cfg.AllowedExtensions = app.Crawler.AllowedExtensions
	}
	return cfg
}
