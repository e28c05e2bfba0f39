package crawler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// StaticSession fetches pages over plain HTTP with colly. Pages are not
// rendered, so links added by scripts are missed.
type StaticSession struct {
	collector *colly.Collector
	storage   *BoltStorage
	logger    *zap.Logger
	once      sync.Once
	closed    atomic.Bool
}

func OpenStaticSession(ctx context.Context, cfg *Config, logger *zap.Logger) (*StaticSession, error) {
	c := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.MaxDepth(1),
		colly.StdlibContext(ctx),
	)
	if cfg.PageTimeout > 0 {
		c.SetRequestTimeout(cfg.PageTimeout)
	}
	if cfg.ProxyURL != "" {
		if err := c.SetProxy(cfg.ProxyURL); err != nil {
			return nil, fmt.Errorf("set proxy: %w", err)
		}
	}

	store := &BoltStorage{Path: cfg.StatePath}
	if err := c.SetStorage(store); err != nil {
		return nil, fmt.Errorf("open crawl state: %w", err)
	}
	// Seeds are revisited on every run; portal cookies carry over.
	if err := store.ClearVisited(); err != nil {
		store.Close()
		return nil, fmt.Errorf("clear crawl state: %w", err)
	}

	logger.Info("static session started", zap.String("state", cfg.StatePath))
	return &StaticSession{
		collector: c,
		storage:   store,
		logger:    logger,
	}, nil
}

func (s *StaticSession) Links(ctx context.Context, pageURL string) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrNoSession
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := s.collector.Clone()

	var (
		body     []byte
		location string
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		location = r.Request.URL.String()
		s.logger.Debug("page fetched",
			zap.String("url", location),
			zap.Int("status", r.StatusCode))
	})

	if err := c.Request("GET", pageURL, nil, colly.NewContext(), nil); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	c.Wait()

	return ExtractLinks(string(body), location)
}

func (s *StaticSession) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		s.logger.Info("static session closed", zap.Int("visited", s.storage.VisitedCount()))
		err = s.storage.Close()
	})
	return err
}
