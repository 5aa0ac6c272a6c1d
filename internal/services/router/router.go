// Package router decides which extraction strategy a page gets. The website
// archetype is classified once by a cheap model, then mapped to a prompt
// strategy by an exhaustive switch.
package router

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rentradar/internal/interfaces"
	"github.com/ternarybob/rentradar/internal/models"
)

// Strategy is the extraction recipe for one website archetype.
type Strategy struct {
	Category     models.WebsiteCategory
	SystemPrompt string
}

// UserPrompt renders the extraction user prompt for a page.
func (s Strategy) UserPrompt(url, content string) string {
	return fmt.Sprintf(extractUserPromptTemplate, url, content)
}

// Route maps a category to its extraction strategy. The switch is exhaustive
// over the closed category set; unknown gets the generic strategy.
func Route(category models.WebsiteCategory) Strategy {
	switch category {
	case models.CategorySingleProperty:
		return Strategy{Category: category, SystemPrompt: singlePropertySystemPrompt}
	case models.CategoryAggregator:
		return Strategy{Category: category, SystemPrompt: aggregatorSystemPrompt}
	case models.CategoryPropertyManager:
		return Strategy{Category: category, SystemPrompt: propertyManagerSystemPrompt}
	case models.CategoryBrokerage:
		return Strategy{Category: category, SystemPrompt: brokerageSystemPrompt}
	default:
		return Strategy{Category: models.CategoryUnknown, SystemPrompt: unknownSystemPrompt}
	}
}

// maxClassifyChars bounds how much page content the classifier sees. The
// archetype is evident from far less than a full page.
const maxClassifyChars = 4000

// Classifier classifies pages with a cheap LLM call. Any failure degrades to
// CategoryUnknown so routing never blocks extraction.
type Classifier struct {
	client interfaces.LLMClient
	logger arbor.ILogger
}

func NewClassifier(client interfaces.LLMClient, logger arbor.ILogger) interfaces.ClassifierService {
	return &Classifier{
		client: client,
		logger: logger,
	}
}

func (c *Classifier) Classify(ctx context.Context, content, url string) models.WebsiteCategory {
	if c.client == nil {
		return models.CategoryUnknown
	}

	if len(content) > maxClassifyChars {
		content = content[:maxClassifyChars]
	}

	response, err := c.client.Complete(ctx, classifySystemPrompt, fmt.Sprintf(classifyUserPromptTemplate, url, content))
	if err != nil {
		c.logger.Warn().Err(err).Str("url", url).Msg("Website classification failed, degrading to unknown")
		return models.CategoryUnknown
	}

	category := models.ParseWebsiteCategory(response)
	c.logger.Debug().Str("url", url).Str("category", string(category)).Msg("Website classified")
	return category
}
