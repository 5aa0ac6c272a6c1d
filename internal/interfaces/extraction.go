package interfaces

import (
	"context"

	"github.com/ternarybob/rentradar/internal/models"
)

// ExtractionResult is the outcome of one extraction call. An empty Units
// slice is a valid, non-error outcome: the page had no extractable units.
type ExtractionResult struct {
	Units      []models.UnitRecord
	Category   models.WebsiteCategory
	ModelUsed  string
	DurationMs int64
	CostUSD    float64 // Estimated spend for this call (classification included)
}

// ExtractionService is the extraction worker boundary: a remote call with its
// own timeout. Transient failures (network, timeout) are retryable by the
// caller; logical failures are wrapped with ErrInvalidContent and must not be
// retried.
type ExtractionService interface {
	Extract(ctx context.Context, url string, tier models.ModelTier) (*ExtractionResult, error)
}

// ClassifierService classifies a fetched page by website archetype. It never
// propagates errors upward: any failure degrades to CategoryUnknown.
type ClassifierService interface {
	Classify(ctx context.Context, html, url string) models.WebsiteCategory
}

// LLMClient is one extraction-model endpoint at a fixed tier.
type LLMClient interface {
	// Complete returns the model's text response for a system prompt and
	// user prompt pair.
	Complete(ctx context.Context, system, user string) (string, error)

	// Model returns the provider model identifier.
	Model() string

	// CostPerCall returns the estimated cost in USD of a single call.
	CostPerCall() float64
}
