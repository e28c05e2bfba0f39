package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path/filepath"
	"time"

	"github.com/cavaliergopher/grab/v3"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// FileDownloader stores the body of link under filename.
type FileDownloader interface {
	Download(ctx context.Context, link, filename string) (string, error)
}

type Downloader struct {
	grabClient *grab.Client
	outputDir  string
	logger     *zap.Logger
}

// NewHTTPClient builds the client used for file downloads, with a cookie
// jar and the optional proxy.
func NewHTTPClient(proxyURL string) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = 60 * time.Second
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(u)
	}

	return &http.Client{Jar: jar, Transport: transport}, nil
}

func NewDownloader(outputDir, userAgent string, httpClient *http.Client, logger *zap.Logger) *Downloader {
	grabClient := grab.NewClient()
	grabClient.HTTPClient = httpClient
	grabClient.UserAgent = userAgent

	return &Downloader{
		grabClient: grabClient,
		outputDir:  outputDir,
		logger:     logger,
	}
}

// Download fetches link into the output directory as filename and returns
// the written path. An existing partial file is overwritten, not resumed.
func (d *Downloader) Download(ctx context.Context, link, filename string) (string, error) {
	req, err := grab.NewRequest(filepath.Join(d.outputDir, filename), link)
	if err != nil {
		return "", fmt.Errorf("create download request: %w", err)
	}
	req = req.WithContext(ctx)
	req.NoResume = true
	req.NoCreateDirectories = true

	resp := d.grabClient.Do(req)

	t := time.NewTicker(500 * time.Millisecond)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			d.logger.Debug("download progress",
				zap.String("file", filename),
				zap.Float64("progress", resp.Progress()*100),
				zap.Int64("bytes_complete", resp.BytesComplete()),
				zap.Int64("bytes_total", resp.Size()),
				zap.Float64("speed_bps", resp.BytesPerSecond()))

		case <-resp.Done:
			if err := resp.Err(); err != nil {
				return "", fmt.Errorf("download %s: %w", link, err)
			}

			d.logger.Info("file downloaded",
				zap.String("path", resp.Filename),
				zap.Int64("size", resp.Size()),
				zap.Duration("duration", resp.Duration()))
			return resp.Filename, nil
		}
	}
}
