// Package llm provides the extraction-model clients behind the tier router.
// Each client is one provider model at a fixed estimated cost per call.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rentradar/internal/common"
	"github.com/ternarybob/rentradar/internal/interfaces"
	"golang.org/x/time/rate"
)

// ClaudeClient implements the LLMClient interface using the Anthropic API.
type ClaudeClient struct {
	client      anthropic.Client
	logger      arbor.ILogger
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	limiter     *rate.Limiter
	costPerCall float64
}

// NewClaudeClient creates a Claude-backed client for one model. The rate
// limiter is shared across all clients built from the same config so premium
// and standard tiers draw from one API quota.
func NewClaudeClient(cfg *common.ClaudeConfig, model string, costPerCall float64, limiter *rate.Limiter, logger arbor.ILogger) (*ClaudeClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (set ANTHROPIC_API_KEY or claude.api_key in config)")
	}
	if model == "" {
		return nil, fmt.Errorf("Claude model name is required")
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid Claude timeout '%s': %w", cfg.Timeout, err)
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
	)

	logger.Debug().
		Str("model", model).
		Dur("timeout", timeout).
		Int("max_tokens", maxTokens).
		Msg("Claude client initialized")

	return &ClaudeClient{
		client:      client,
		logger:      logger,
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		timeout:     timeout,
		limiter:     limiter,
		costPerCall: costPerCall,
	}, nil
}

func (c *ClaudeClient) Complete(ctx context.Context, system, user string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter wait cancelled: %w", err)
		}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if c.temperature > 0 {
		params.Temperature = anthropic.Float(float64(c.temperature))
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: system},
		}
	}

	start := time.Now()
	resp, err := c.client.Messages.New(timeoutCtx, params)
	if err != nil {
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("empty response from Claude API")
	}

	c.logger.Debug().
		Str("model", c.model).
		Int("response_length", text.Len()).
		Dur("duration", time.Since(start)).
		Msg("Claude completion finished")

	return text.String(), nil
}

func (c *ClaudeClient) Model() string {
	return c.model
}

func (c *ClaudeClient) CostPerCall() float64 {
	return c.costPerCall
}

var _ interfaces.LLMClient = (*ClaudeClient)(nil)
