package crawler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// BrowserSession drives one headless Chrome instance.
type BrowserSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	pageTimeout time.Duration
	logger      *zap.Logger
	once        sync.Once
	closed      atomic.Bool
}

func OpenBrowserSession(ctx context.Context, cfg *Config, logger *zap.Logger) (*BrowserSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
	)
	if cfg.ProxyURL != "" {
		opts = append(opts, chromedp.ProxyServer(cfg.ProxyURL))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)

	s := &BrowserSession{
		ctx: taskCtx,
		cancel: func() {
			taskCancel()
			allocCancel()
		},
		pageTimeout: cfg.PageTimeout,
		logger:      logger,
	}

	// The first Run starts the browser process.
	err := chromedp.Run(taskCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language": "id-ID,id;q=0.9,en-US;q=0.8,en;q=0.7",
		}),
	)
	if err != nil {
		s.cancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	logger.Info("browser session started", zap.Bool("proxy", cfg.ProxyURL != ""))
	return s, nil
}

// Links navigates to pageURL, waits for the body and extracts the links of
// the rendered DOM.
func (s *BrowserSession) Links(ctx context.Context, pageURL string) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrNoSession
	}

	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if s.pageTimeout > 0 {
		var timeoutCancel context.CancelFunc
		runCtx, timeoutCancel = context.WithTimeout(runCtx, s.pageTimeout)
		defer timeoutCancel()
	}

	var location, html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("navigate %s: %w", pageURL, err)
	}

	s.logger.Debug("page rendered",
		zap.String("url", pageURL),
		zap.String("location", location),
		zap.Int("dom_length", len(html)))

	return ExtractLinks(html, location)
}

// Close shuts the browser down. It is safe to call more than once.
func (s *BrowserSession) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		err = chromedp.Cancel(s.ctx)
		s.cancel()
		s.logger.Info("browser session closed")
	})
	return err
}
