// Package scoring computes per-listing priority scores from rolling
// scheduling stats. All functions are pure over the listing record.
package scoring

import (
	"time"

	"github.com/ternarybob/rentradar/internal/common"
	"github.com/ternarybob/rentradar/internal/models"
)

// Component weights. Staleness dominates so no listing starves; volatility
// and failure history shift listings within a staleness band.
const (
	stalenessWeight  = 50.0
	volatilityWeight = 30.0
	failureWeight    = 20.0
)

// Outcome describes one completed scrape attempt for stats updates.
type Outcome struct {
	Success  bool
	Changed  bool
	Duration time.Duration
	At       time.Time
}

// Score computes the priority score in [0, 100]. It is monotonic in
// staleness and volatility and inversely related to success rate, so
// systematically failing sources are reprioritized for re-verification
// rather than spun at full frequency.
func Score(cfg *common.ScoringConfig, listing *models.ListingSource, now time.Time) float64 {
	days := listing.DaysSinceLastScrape(now)

	// Saturating staleness curve: reaches half weight at the configured
	// half-life and approaches the full weight asymptotically.
	staleness := stalenessWeight * days / (days + cfg.StalenessHalfLife)
	if listing.LastScrapedAt == nil {
		// Never successfully scraped: maximum staleness urgency.
		staleness = stalenessWeight
	}

	volatility := volatilityWeight * clamp01(listing.ChangeFrequency)
	failure := failureWeight * (1 - clamp01(listing.SuccessRate))
	if listing.ScrapeAttempts == 0 {
		// No history yet; don't let the zero-valued success rate claim
		// the full failure weight for a listing that never failed.
		failure = 0
	}

	return clamp(staleness+volatility+failure, 0, 100)
}

// TierForScore buckets a score into a priority tier. Tiers are purely a
// derived view of the score used for batch-selection filtering.
func TierForScore(cfg *common.ScoringConfig, score float64) models.PriorityTier {
	switch {
	case score >= cfg.TierHighThreshold:
		return models.TierHigh
	case score >= cfg.TierMediumThreshold:
		return models.TierMedium
	default:
		return models.TierLow
	}
}

// Rescore recomputes and stores the listing's score and tier.
func Rescore(cfg *common.ScoringConfig, listing *models.ListingSource, now time.Time) {
	listing.PriorityScore = Score(cfg, listing, now)
	listing.PriorityTier = TierForScore(cfg, listing.PriorityScore)
}

// RecordOutcome folds one scrape attempt into the listing's rolling stats
// and rescores it. Success rate tracks every attempt; change frequency and
// average duration only fold in successful scrapes.
func RecordOutcome(cfg *common.ScoringConfig, listing *models.ListingSource, outcome Outcome) {
	alpha := cfg.EWMAAlpha
	first := listing.ScrapeAttempts == 0
	listing.ScrapeAttempts++

	success := 0.0
	if outcome.Success {
		success = 1.0
	}
	if first {
		listing.SuccessRate = success
	} else {
		listing.SuccessRate = (1-alpha)*listing.SuccessRate + alpha*success
	}

	if outcome.Success {
		at := outcome.At
		listing.LastScrapedAt = &at

		changed := 0.0
		if outcome.Changed {
			changed = 1.0
			listing.LastChangedAt = &at
		}
		listing.ChangeFrequency = (1-alpha)*listing.ChangeFrequency + alpha*changed

		durationMs := float64(outcome.Duration.Milliseconds())
		if listing.AvgDurationMs == 0 {
			listing.AvgDurationMs = durationMs
		} else {
			listing.AvgDurationMs = (1-alpha)*listing.AvgDurationMs + alpha*durationMs
		}
	}

	Rescore(cfg, listing, outcome.At)
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
