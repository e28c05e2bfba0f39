package crawler

import (
	"context"
	"errors"
	"fmt"

	"regdocs/config"

	"go.uber.org/zap"
)

// ErrNoSession is returned by a session used after Close.
var ErrNoSession = errors.New("crawler: session is closed")

// Session renders pages and reports the links they contain. Close must be
// called exactly once the caller is done, also on error paths.
type Session interface {
	Links(ctx context.Context, pageURL string) ([]string, error)
	Close() error
}

type SessionOpener func(ctx context.Context, cfg *Config, logger *zap.Logger) (Session, error)

// OpenSession starts the engine named by cfg.Engine.
func OpenSession(ctx context.Context, cfg *Config, logger *zap.Logger) (Session, error) {
	switch cfg.Engine {
	case config.EngineBrowser, "":
		s, err := OpenBrowserSession(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.EngineStatic:
		s, err := OpenStaticSession(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown crawl engine %q", cfg.Engine)
	}
}
