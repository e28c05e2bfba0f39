package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorePgvector = "pgvector"
	StoreQdrant   = "qdrant"

	EngineBrowser = "browser"
	EngineStatic  = "static"

	// EmbeddingDimension is the output size of all-MiniLM-L6-v2.
	EmbeddingDimension = 384

	PgConnEnv = "PG_CONN_STR"
)

// ErrMissingSecret is returned when the vector store connection secret is not set.
var ErrMissingSecret = errors.New("connection secret is not set")

type Config struct {
	DataDir      string
	LogLevel     string
	ProxyURL     string
	CrawlEngine  string
	EmbeddingURL string
	Store        StoreConfig
	Ingest       IngestConfig  `yaml:"ingest"`
	Crawler      CrawlerConfig `yaml:"crawler"`
}

type StoreConfig struct {
	Backend      string
	PgConnString string
	QdrantHost   string
	QdrantPort   int
	QdrantAPIKey string
	Dimension    int
}

type IngestConfig struct {
	BatchSize      int `yaml:"batch_size"`
	SplitLength    int `yaml:"split_length"`
	SplitOverlap   int `yaml:"split_overlap"`
	EmbedBatchSize int `yaml:"embed_batch_size"`
}

type CrawlerConfig struct {
	UserAgent         string        `yaml:"user_agent"`
	PageTimeout       time.Duration `yaml:"page_timeout"`
	AllowedExtensions []string      `yaml:"allowed_extensions"`
	// LinkKeywords restricts downloads to links mentioning one of them.
	LinkKeywords []string `yaml:"link_keywords"`
}

// tunables is the shape of the optional YAML file pointed to by CONFIG_PATH.
type tunables struct {
	Ingest  IngestConfig  `yaml:"ingest"`
	Crawler CrawlerConfig `yaml:"crawler"`
}

func defaults() *Config {
	return &Config{
		DataDir:      "data",
		LogLevel:     "info",
		CrawlEngine:  EngineBrowser,
		EmbeddingURL: "http://localhost:8080",
		Store: StoreConfig{
			Backend:    StorePgvector,
			QdrantHost: "localhost",
			QdrantPort: 6334,
			Dimension:  EmbeddingDimension,
		},
		Ingest: IngestConfig{
			BatchSize:      16,
			SplitLength:    10,
			SplitOverlap:   2,
			EmbedBatchSize: 32,
		},
		Crawler: CrawlerConfig{
			UserAgent:         "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			AllowedExtensions: []string{".pdf"},
		},
	}
}

// Load reads .env (if present), the process environment and the optional
// YAML tunables file. It does not require the store secret; callers that
// talk to the store check it with StoreConfig.Validate.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.ProxyURL = os.Getenv("PROXY_URL")
	cfg.CrawlEngine = strings.ToLower(getEnv("CRAWL_ENGINE", cfg.CrawlEngine))
	cfg.EmbeddingURL = strings.TrimRight(getEnv("EMBEDDING_URL", cfg.EmbeddingURL), "/")

	cfg.Store.Backend = strings.ToLower(getEnv("VECTOR_STORE", cfg.Store.Backend))
	cfg.Store.PgConnString = os.Getenv(PgConnEnv)
	cfg.Store.QdrantHost = getEnv("QDRANT_HOST", cfg.Store.QdrantHost)
	cfg.Store.QdrantAPIKey = os.Getenv("QDRANT_API_KEY")
	if raw := os.Getenv("QDRANT_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid QDRANT_PORT %q: %w", raw, err)
		}
		cfg.Store.QdrantPort = port
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	t := tunables{Ingest: c.Ingest, Crawler: c.Crawler}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.Ingest = t.Ingest
	c.Crawler = t.Crawler
	return nil
}

func (c *Config) validate() error {
	switch c.CrawlEngine {
	case EngineBrowser, EngineStatic:
	default:
		return fmt.Errorf("unknown CRAWL_ENGINE %q", c.CrawlEngine)
	}
	switch c.Store.Backend {
	case StorePgvector, StoreQdrant:
	default:
		return fmt.Errorf("unknown VECTOR_STORE %q", c.Store.Backend)
	}
	if c.Ingest.BatchSize <= 0 {
		return fmt.Errorf("ingest.batch_size must be positive, got %d", c.Ingest.BatchSize)
	}
	if c.Ingest.SplitLength <= 0 {
		return fmt.Errorf("ingest.split_length must be positive, got %d", c.Ingest.SplitLength)
	}
	if c.Ingest.SplitOverlap < 0 || c.Ingest.SplitOverlap >= c.Ingest.SplitLength {
		return fmt.Errorf("ingest.split_overlap must be in [0, %d), got %d", c.Ingest.SplitLength, c.Ingest.SplitOverlap)
	}
	if c.Ingest.EmbedBatchSize <= 0 {
		return fmt.Errorf("ingest.embed_batch_size must be positive, got %d", c.Ingest.EmbedBatchSize)
	}
	if len(c.Crawler.AllowedExtensions) == 0 {
		return errors.New("crawler.allowed_extensions must not be empty")
	}
	return nil
}

// Validate reports whether the selected backend has what it needs to connect.
func (s StoreConfig) Validate() error {
	if s.Backend == StorePgvector && s.PgConnString == "" {
		return fmt.Errorf("%s: %w", PgConnEnv, ErrMissingSecret)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
