package crawler

import (
	"context"
	"fmt"
	"os"

	"regdocs/relevance"

	"go.uber.org/zap"
)

// Summary counts what one crawl run did.
type Summary struct {
	SeedsVisited int
	LinksFound   int
	LinksMatched int
	Downloaded   int
	Failed       int
	Files        []string
}

type Crawler struct {
	config     *Config
	open       SessionOpener
	downloader FileDownloader
	filter     *relevance.KeywordFilter
	logger     *zap.Logger
}

func New(cfg *Config, open SessionOpener, downloader FileDownloader, logger *zap.Logger) *Crawler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Crawler{
		config:     cfg,
		open:       open,
		downloader: downloader,
		filter:     relevance.NewKeywordFilter(cfg.Keywords),
		logger:     logger,
	}
}

// NewDefault wires the configured session engine and a grab downloader.
func NewDefault(cfg *Config, logger *zap.Logger) (*Crawler, error) {
	httpClient, err := NewHTTPClient(cfg.ProxyURL)
	if err != nil {
		return nil, err
	}
	downloader := NewDownloader(cfg.OutputDir, cfg.UserAgent, httpClient, logger)
	return New(cfg, OpenSession, downloader, logger), nil
}

// Run visits every seed in order and downloads the matching links found on
// it. Failing to open the session or to load a seed aborts the run; a
// failed download is logged and counted.
func (c *Crawler) Run(ctx context.Context) (*Summary, error) {
	ctx = WithRunID(ctx, GenerateRunID())
	ctx = WithEngine(ctx, c.config.Engine)
	logger := RunLogger(ctx, c.logger)

	if err := os.MkdirAll(c.config.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	session, err := c.open(ctx, c.config, logger)
	if err != nil {
		return nil, fmt.Errorf("open crawl session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("failed to close crawl session", zap.Error(err))
		}
	}()

	summary := &Summary{}
	tracker := NewLinkTracker()

	for _, seed := range c.config.Seeds {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		logger.Info("visiting seed", zap.String("url", seed))
		links, err := session.Links(ctx, seed)
		if err != nil {
			return summary, fmt.Errorf("visit seed %s: %w", seed, err)
		}
		summary.SeedsVisited++
		summary.LinksFound += len(links)

		matched := 0
		for _, link := range links {
			if !MatchesExtension(link, c.config.AllowedExtensions) {
				continue
			}
			ok, score := c.filter.Match(link)
			if !ok {
				logger.Debug("skipping link without keywords", zap.String("url", link))
				continue
			}
			if c.filter != nil {
				logger.Debug("link matched keywords", zap.String("url", link), zap.Float32("score", score))
			}
			matched++
			if !tracker.Record(link) {
				continue
			}

			path, err := c.downloader.Download(ctx, link, tracker.Claim(FileName(link), link))
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return summary, ctxErr
				}
				logger.Error("failed to download file", zap.String("url", link), zap.Error(err))
				summary.Failed++
				continue
			}
			summary.Downloaded++
			summary.Files = append(summary.Files, path)
		}
		summary.LinksMatched += matched

		logger.Info("seed done",
			zap.String("url", seed),
			zap.Int("links", len(links)),
			zap.Int("matched", matched))
	}

	logger.Info("crawl finished",
		zap.Int("seeds", summary.SeedsVisited),
		zap.Int("unique_files", tracker.UniqueLinks()),
		zap.Int("downloaded", summary.Downloaded),
		zap.Int("failed", summary.Failed))

	return summary, nil
}
