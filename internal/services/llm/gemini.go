package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rentradar/internal/common"
	"github.com/ternarybob/rentradar/internal/interfaces"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// GeminiClient implements the LLMClient interface using the Google Gemini API.
type GeminiClient struct {
	client      *genai.Client
	logger      arbor.ILogger
	model       string
	temperature float32
	timeout     time.Duration
	limiter     *rate.Limiter
	costPerCall float64
}

// NewGeminiClient creates a Gemini-backed client for one model.
func NewGeminiClient(ctx context.Context, cfg *common.GeminiConfig, model string, costPerCall float64, limiter *rate.Limiter, logger arbor.ILogger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or gemini.api_key in config)")
	}
	if model == "" {
		return nil, fmt.Errorf("Gemini model name is required")
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid Gemini timeout '%s': %w", cfg.Timeout, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger.Debug().
		Str("model", model).
		Dur("timeout", timeout).
		Msg("Gemini client initialized")

	return &GeminiClient{
		client:      client,
		logger:      logger,
		model:       model,
		temperature: cfg.Temperature,
		timeout:     timeout,
		limiter:     limiter,
		costPerCall: costPerCall,
	}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, system, user string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter wait cancelled: %w", err)
		}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{}
	if c.temperature > 0 {
		config.Temperature = genai.Ptr(c.temperature)
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(user, genai.RoleUser),
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(timeoutCtx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from Gemini API")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty text in Gemini response")
	}

	c.logger.Debug().
		Str("model", c.model).
		Int("response_length", len(text)).
		Dur("duration", time.Since(start)).
		Msg("Gemini completion finished")

	return text, nil
}

func (c *GeminiClient) Model() string {
	return c.model
}

func (c *GeminiClient) CostPerCall() float64 {
	return c.costPerCall
}

var _ interfaces.LLMClient = (*GeminiClient)(nil)
