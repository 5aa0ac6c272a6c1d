package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rentradar/internal/common"
)

// Renderer fetches pages through headless Chrome for listing sites that only
// populate prices via JavaScript.
type Renderer struct {
	logger    arbor.ILogger
	userAgent string
	waitTime  time.Duration
}

// NewRenderer creates a headless-Chrome renderer from config.
func NewRenderer(cfg *common.FetcherConfig, logger arbor.ILogger) (*Renderer, error) {
	waitTime, err := time.ParseDuration(cfg.JavaScriptWaitTime)
	if err != nil {
		return nil, fmt.Errorf("invalid javascript wait time '%s': %w", cfg.JavaScriptWaitTime, err)
	}

	return &Renderer{
		logger:    logger,
		userAgent: cfg.UserAgent,
		waitTime:  waitTime,
	}, nil
}

// Render navigates to the URL, waits for scripts to settle and returns the
// rendered document HTML. A fresh browser context per call keeps renders
// isolated; the allocator overhead is acceptable at batch-scheduler volumes.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(r.userAgent),
	)

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocatorCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	defer browserCancel()

	start := time.Now()
	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(r.waitTime),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", url, err)
	}

	r.logger.Debug().
		Str("url", url).
		Int("bytes", len(html)).
		Dur("duration", time.Since(start)).
		Msg("Page rendered with headless browser")

	return html, nil
}
