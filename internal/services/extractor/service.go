package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rentradar/internal/common"
	"github.com/ternarybob/rentradar/internal/interfaces"
	"github.com/ternarybob/rentradar/internal/models"
	"github.com/ternarybob/rentradar/internal/services/router"
)

// ClientSource resolves the extraction client for a model tier.
type ClientSource interface {
	ForTier(tier models.ModelTier) interfaces.LLMClient
}

// Service is the end-to-end extraction pipeline: rate limit, fetch, clean,
// classify, route, extract, parse.
type Service struct {
	fetcher         *Fetcher
	renderer        *Renderer
	limiter         *RateLimiter
	classifier      interfaces.ClassifierService
	clients         ClientSource
	logger          arbor.ILogger
	classifyCost    float64
	maxContentChars int
}

// NewService wires the extraction pipeline. The renderer is nil when
// JavaScript rendering is disabled.
func NewService(cfg *common.FetcherConfig, classifier interfaces.ClassifierService, clients ClientSource, classifyCost float64, logger arbor.ILogger) (*Service, error) {
	fetcher, err := NewFetcher(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}

	requestDelay, err := time.ParseDuration(cfg.RequestDelay)
	if err != nil {
		return nil, fmt.Errorf("invalid request delay '%s': %w", cfg.RequestDelay, err)
	}

	var renderer *Renderer
	if cfg.EnableJavaScript {
		renderer, err = NewRenderer(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create renderer: %w", err)
		}
	}

	maxContentChars := cfg.MaxContentChars
	if maxContentChars <= 0 {
		maxContentChars = 50000
	}

	limiter := NewRateLimiter(requestDelay)
	for domain, raw := range cfg.DomainDelays {
		limiter.SetDomainDelay(domain, common.MustDuration(raw, requestDelay))
	}

	return &Service{
		fetcher:         fetcher,
		renderer:        renderer,
		limiter:         limiter,
		classifier:      classifier,
		clients:         clients,
		logger:          logger,
		classifyCost:    classifyCost,
		maxContentChars: maxContentChars,
	}, nil
}

func (s *Service) Extract(ctx context.Context, url string, tier models.ModelTier) (*interfaces.ExtractionResult, error) {
	start := time.Now()

	if err := s.limiter.Wait(ctx, url); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled for %s: %w", url, err)
	}

	html, err := s.fetchPage(ctx, url)
	if err != nil {
		return nil, err
	}

	content, err := CleanContent(html, url, s.maxContentChars)
	if err != nil {
		return nil, fmt.Errorf("failed to clean content from %s: %v: %w", url, err, interfaces.ErrInvalidContent)
	}

	category := s.classifier.Classify(ctx, content, url)
	strategy := router.Route(category)

	client := s.clients.ForTier(tier)
	response, err := client.Complete(ctx, strategy.SystemPrompt, strategy.UserPrompt(url, content))
	if err != nil {
		return nil, fmt.Errorf("extraction model call failed for %s: %w", url, err)
	}

	units, err := ParseUnits(response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse units from %s: %w", url, err)
	}

	result := &interfaces.ExtractionResult{
		Units:      units,
		Category:   category,
		ModelUsed:  client.Model(),
		DurationMs: time.Since(start).Milliseconds(),
		CostUSD:    client.CostPerCall() + s.classifyCost,
	}

	s.logger.Debug().
		Str("url", url).
		Str("tier", string(tier)).
		Str("category", string(category)).
		Int("units", len(units)).
		Int64("duration_ms", result.DurationMs).
		Msg("Extraction completed")

	return result, nil
}

// fetchPage uses the headless browser when rendering is enabled, with a
// fallback to the plain fetcher when the browser fails to launch.
func (s *Service) fetchPage(ctx context.Context, url string) (string, error) {
	if s.renderer == nil {
		return s.fetcher.Fetch(ctx, url)
	}

	html, err := s.renderer.Render(ctx, url)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", url).Msg("Browser render failed, falling back to plain fetch")
		return s.fetcher.Fetch(ctx, url)
	}
	return html, nil
}

var _ interfaces.ExtractionService = (*Service)(nil)
