package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/rentradar/internal/common"
	"github.com/ternarybob/rentradar/internal/models"
)

func testScoringConfig() *common.ScoringConfig {
	return &common.ScoringConfig{
		TierHighThreshold:   70,
		TierMediumThreshold: 40,
		StalenessHalfLife:   3,
		EWMAAlpha:           0.3,
	}
}

func scrapedListing(daysAgo float64, now time.Time) *models.ListingSource {
	at := now.Add(-time.Duration(daysAgo * 24 * float64(time.Hour)))
	return &models.ListingSource{
		ID:             "maple-court:4b",
		Status:         models.ListingStatusActive,
		ScrapeAttempts: 5,
		SuccessRate:    1.0,
		CreatedAt:      now.Add(-30 * 24 * time.Hour),
		LastScrapedAt:  &at,
	}
}

func TestScoreMonotonicInStaleness(t *testing.T) {
	cfg := testScoringConfig()
	now := time.Now().UTC()

	prev := -1.0
	for _, days := range []float64{0, 0.5, 1, 3, 7, 30} {
		score := Score(cfg, scrapedListing(days, now), now)
		assert.GreaterOrEqual(t, score, prev, "staleness %v days", days)
		assert.LessOrEqual(t, score, 100.0)
		prev = score
	}
}

func TestScoreStalenessHalfLife(t *testing.T) {
	cfg := testScoringConfig()
	now := time.Now().UTC()

	// At the half-life the staleness component contributes exactly half
	// its weight. With full success and zero volatility that is the
	// whole score.
	score := Score(cfg, scrapedListing(cfg.StalenessHalfLife, now), now)
	assert.InDelta(t, 25.0, score, 0.1)
}

func TestScoreNeverScrapedGetsFullStaleness(t *testing.T) {
	cfg := testScoringConfig()
	now := time.Now().UTC()

	fresh := &models.ListingSource{
		ID:        "new:unit",
		Status:    models.ListingStatusActive,
		CreatedAt: now,
	}
	score := Score(cfg, fresh, now)

	// Full staleness weight, zero failure weight (no attempts yet).
	assert.InDelta(t, 50.0, score, 0.001)
}

func TestScoreVolatilityAndFailureComponents(t *testing.T) {
	cfg := testScoringConfig()
	now := time.Now().UTC()

	stable := scrapedListing(3, now)
	volatile := scrapedListing(3, now)
	volatile.ChangeFrequency = 1.0

	assert.InDelta(t, 30.0, Score(cfg, volatile, now)-Score(cfg, stable, now), 0.001)

	failing := scrapedListing(3, now)
	failing.SuccessRate = 0
	assert.InDelta(t, 20.0, Score(cfg, failing, now)-Score(cfg, stable, now), 0.001)
}

func TestTierForScore(t *testing.T) {
	cfg := testScoringConfig()

	tests := []struct {
		score float64
		want  models.PriorityTier
	}{
		{score: 95, want: models.TierHigh},
		{score: 70, want: models.TierHigh},
		{score: 69.9, want: models.TierMedium},
		{score: 40, want: models.TierMedium},
		{score: 39.9, want: models.TierLow},
		{score: 0, want: models.TierLow},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, TierForScore(cfg, tc.score), "score %v", tc.score)
	}
}

func TestRecordOutcomeFirstAttemptSeedsStats(t *testing.T) {
	cfg := testScoringConfig()
	now := time.Now().UTC()

	listing := &models.ListingSource{
		ID:        "maple-court:4b",
		Status:    models.ListingStatusActive,
		CreatedAt: now.Add(-24 * time.Hour),
	}

	RecordOutcome(cfg, listing, Outcome{Success: true, Changed: true, Duration: 1200 * time.Millisecond, At: now})

	assert.Equal(t, 1, listing.ScrapeAttempts)
	assert.Equal(t, 1.0, listing.SuccessRate)
	assert.InDelta(t, 0.3, listing.ChangeFrequency, 0.001)
	assert.Equal(t, 1200.0, listing.AvgDurationMs)
	require.NotNil(t, listing.LastScrapedAt)
	require.NotNil(t, listing.LastChangedAt)
	assert.NotZero(t, listing.PriorityScore)
}

func TestRecordOutcomeEWMAFolding(t *testing.T) {
	cfg := testScoringConfig()
	now := time.Now().UTC()

	listing := scrapedListing(1, now)
	listing.SuccessRate = 1.0
	listing.ChangeFrequency = 0.5
	listing.AvgDurationMs = 1000

	RecordOutcome(cfg, listing, Outcome{Success: true, Changed: false, Duration: 2 * time.Second, At: now})

	assert.Equal(t, 6, listing.ScrapeAttempts)
	assert.InDelta(t, 1.0, listing.SuccessRate, 0.001)
	assert.InDelta(t, 0.35, listing.ChangeFrequency, 0.001) // 0.7*0.5 + 0.3*0
	assert.InDelta(t, 1300.0, listing.AvgDurationMs, 0.001) // 0.7*1000 + 0.3*2000
}

func TestRecordOutcomeFailureLeavesScrapeStats(t *testing.T) {
	cfg := testScoringConfig()
	now := time.Now().UTC()

	listing := scrapedListing(1, now)
	before := *listing.LastScrapedAt
	listing.ChangeFrequency = 0.5
	listing.AvgDurationMs = 1000

	RecordOutcome(cfg, listing, Outcome{Success: false, At: now})

	assert.InDelta(t, 0.7, listing.SuccessRate, 0.001)
	assert.Equal(t, 0.5, listing.ChangeFrequency)
	assert.Equal(t, 1000.0, listing.AvgDurationMs)
	assert.Equal(t, before, *listing.LastScrapedAt)
}

func TestRepeatedFailuresRaiseScore(t *testing.T) {
	cfg := testScoringConfig()
	now := time.Now().UTC()

	listing := scrapedListing(1, now)
	initial := Score(cfg, listing, now)

	for i := 0; i < 5; i++ {
		RecordOutcome(cfg, listing, Outcome{Success: false, At: now})
	}

	assert.Greater(t, listing.PriorityScore, initial)
}
