package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rentradar/internal/common"
	"github.com/ternarybob/rentradar/internal/interfaces"
	"github.com/ternarybob/rentradar/internal/models"
	"golang.org/x/time/rate"
)

// Clients holds the extraction client for each model tier plus the cheap
// classification client.
type Clients struct {
	tiers      map[models.ModelTier]interfaces.LLMClient
	classifier interfaces.LLMClient
}

// NewClients builds the tier-to-client map from configuration. Premium and
// standard run on Claude models, economy and classification on Gemini.
func NewClients(ctx context.Context, claudeCfg *common.ClaudeConfig, geminiCfg *common.GeminiConfig, budgetCfg *common.BudgetConfig, logger arbor.ILogger) (*Clients, error) {
	claudeLimiter, err := limiterFor(claudeCfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid Claude rate limit: %w", err)
	}
	geminiLimiter, err := limiterFor(geminiCfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid Gemini rate limit: %w", err)
	}

	premium, err := NewClaudeClient(claudeCfg, claudeCfg.PremiumModel, budgetCfg.PremiumCostUSD, claudeLimiter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create premium client: %w", err)
	}
	standard, err := NewClaudeClient(claudeCfg, claudeCfg.StandardModel, budgetCfg.StandardCostUSD, claudeLimiter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create standard client: %w", err)
	}
	economy, err := NewGeminiClient(ctx, geminiCfg, geminiCfg.Model, budgetCfg.EconomyCostUSD, geminiLimiter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create economy client: %w", err)
	}

	classifyModel := geminiCfg.ClassifyModel
	if classifyModel == "" {
		classifyModel = geminiCfg.Model
	}
	classifier, err := NewGeminiClient(ctx, geminiCfg, classifyModel, budgetCfg.ClassifyCostUSD, geminiLimiter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier client: %w", err)
	}

	return &Clients{
		tiers: map[models.ModelTier]interfaces.LLMClient{
			models.TierPremium:  premium,
			models.TierStandard: standard,
			models.TierEconomy:  economy,
		},
		classifier: classifier,
	}, nil
}

// ForTier returns the client for a tier; unknown tiers fall back to economy.
func (c *Clients) ForTier(tier models.ModelTier) interfaces.LLMClient {
	if client, ok := c.tiers[tier]; ok {
		return client
	}
	return c.tiers[models.TierEconomy]
}

// Classifier returns the cheap classification client.
func (c *Clients) Classifier() interfaces.LLMClient {
	return c.classifier
}

// limiterFor builds a rate limiter from a minimum-interval duration string.
// An empty string means unlimited.
func limiterFor(interval string) (*rate.Limiter, error) {
	if interval == "" {
		return nil, nil
	}
	d, err := time.ParseDuration(interval)
	if err != nil {
		return nil, err
	}
	if d <= 0 {
		return nil, nil
	}
	return rate.NewLimiter(rate.Every(d), 1), nil
}
