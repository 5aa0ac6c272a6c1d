// Package extractor fetches listing pages and turns them into unit records
// via the classification router and tiered extraction models.
package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rentradar/internal/common"
	"github.com/ternarybob/rentradar/internal/interfaces"
)

// Fetcher retrieves raw listing page HTML over plain HTTP.
type Fetcher struct {
	client      *http.Client
	logger      arbor.ILogger
	userAgent   string
	maxBodySize int64
}

// NewFetcher creates a fetcher from config.
func NewFetcher(cfg *common.FetcherConfig, logger arbor.ILogger) (*Fetcher, error) {
	timeout, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid request timeout '%s': %w", cfg.RequestTimeout, err)
	}

	maxBodySize := int64(cfg.MaxBodySize)
	if maxBodySize <= 0 {
		maxBodySize = 10 * 1024 * 1024
	}

	return &Fetcher{
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
		userAgent:   cfg.UserAgent,
		maxBodySize: maxBodySize,
	}, nil
}

// Fetch downloads a page and returns its HTML. Client errors (4xx) are
// wrapped with ErrInvalidContent because retrying the same URL cannot help;
// server errors and transport failures are returned plain so callers treat
// them as transient.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return "", fmt.Errorf("page %s returned status %d: %w", url, resp.StatusCode, interfaces.ErrInvalidContent)
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("page %s returned server error %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read body from %s: %w", url, err)
	}

	f.logger.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Msg("Page fetched")

	return string(body), nil
}
