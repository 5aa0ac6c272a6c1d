package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/rentradar/internal/common"
	"github.com/ternarybob/rentradar/internal/interfaces"
	"github.com/ternarybob/rentradar/internal/models"
	"github.com/ternarybob/rentradar/internal/services/budget"
	"github.com/ternarybob/rentradar/internal/services/persist"
	"github.com/ternarybob/rentradar/internal/services/pricing"
)

func testConfig() *common.Config {
	cfg := &common.Config{}
	cfg.Scheduler.BatchSize = 10
	cfg.Scheduler.BatchTimeout = "1m"
	cfg.Dispatch.MaxAttempts = 3
	cfg.Dispatch.RetryBackoff = "1ms"
	cfg.Dispatch.Concurrency = 2
	cfg.Dispatch.AttemptTimeout = "5s"
	cfg.Scoring.TierHighThreshold = 70
	cfg.Scoring.TierMediumThreshold = 40
	cfg.Scoring.StalenessHalfLife = 3
	cfg.Scoring.EWMAAlpha = 0.3
	cfg.Budget.DailyCapUSD = 50
	cfg.Budget.PremiumThreshold = 70
	cfg.Budget.StandardThreshold = 40
	cfg.Budget.PremiumCostUSD = 0.05
	cfg.Budget.StandardCostUSD = 0.01
	cfg.Budget.EconomyCostUSD = 0.002
	cfg.Budget.ClassifyCostUSD = 0.001
	cfg.Pricing.DesperateThreshold = 0.15
	cfg.Pricing.AggressiveThreshold = 0.07
	cfg.Pricing.DefaultLeaseMonths = 12
	cfg.Pricing.MarketBandPct = 0.05
	return cfg
}

// memStorage is an in-memory StorageManager for dispatcher tests.
type memStorage struct {
	mu       sync.Mutex
	listings map[string]*models.ListingSource
	claims   map[string]bool
	jobs     map[string]*models.ScrapeJob
	ledger   map[string]*models.CostLedgerEntry

	snapshots map[string]*models.PropertySnapshot
	history   []*models.PriceHistoryEntry
}

func newMemStorage() *memStorage {
	return &memStorage{
		listings:  make(map[string]*models.ListingSource),
		claims:    make(map[string]bool),
		jobs:      make(map[string]*models.ScrapeJob),
		ledger:    make(map[string]*models.CostLedgerEntry),
		snapshots: make(map[string]*models.PropertySnapshot),
	}
}

func (m *memStorage) Listings() interfaces.ListingStorage   { return (*memListings)(m) }
func (m *memStorage) Snapshots() interfaces.SnapshotStorage { return (*memSnaps)(m) }
func (m *memStorage) Jobs() interfaces.JobStorage           { return (*memJobs)(m) }
func (m *memStorage) Ledger() interfaces.LedgerStorage      { return (*memLedger)(m) }
func (m *memStorage) Close() error                          { return nil }

type memListings memStorage

func (m *memListings) SaveListing(ctx context.Context, listing *models.ListingSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *listing
	m.listings[listing.ID] = &copied
	return nil
}

func (m *memListings) GetListing(ctx context.Context, id string) (*models.ListingSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	listing, ok := m.listings[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *listing
	return &copied, nil
}

func (m *memListings) ListListings(ctx context.Context, limit int) ([]*models.ListingSource, error) {
	return m.SelectDueListings(ctx, limit, interfaces.ListingFilter{})
}

func (m *memListings) SelectDueListings(ctx context.Context, limit int, filter interfaces.ListingFilter) ([]*models.ListingSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []*models.ListingSource
	for id, listing := range m.listings {
		if m.claims[id] || listing.Status != models.ListingStatusActive {
			continue
		}
		copied := *listing
		due = append(due, &copied)
	}
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (m *memListings) CountEligible(ctx context.Context, filter interfaces.ListingFilter) (int, error) {
	due, _ := m.SelectDueListings(ctx, 0, filter)
	return len(due), nil
}

func (m *memListings) ClaimListing(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claims[id] {
		return interfaces.ErrAlreadyInFlight
	}
	m.claims[id] = true
	return nil
}

func (m *memListings) ReleaseListing(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claims, id)
	return nil
}

func (m *memListings) ReleaseAllClaims(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := len(m.claims)
	m.claims = make(map[string]bool)
	return count, nil
}

type memSnaps memStorage

func (m *memSnaps) GetSnapshot(ctx context.Context, listingID string) (*models.PropertySnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot, ok := m.snapshots[listingID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *snapshot
	return &copied, nil
}

func (m *memSnaps) ApplyMinimalTouch(ctx context.Context, listingID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot, ok := m.snapshots[listingID]
	if !ok {
		return interfaces.ErrNotFound
	}
	snapshot.LastSeenAt = at
	snapshot.ScrapeCount++
	return nil
}

func (m *memSnaps) ApplyFullUpdateWithHistory(ctx context.Context, snapshot *models.PropertySnapshot, entry *models.PriceHistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.snapshots[snapshot.ListingID]; ok {
		snapshot.FirstSeenAt = existing.FirstSeenAt
		snapshot.ScrapeCount = existing.ScrapeCount
		if entry != nil && existing.Price == snapshot.Price {
			entry = nil
		}
	}
	snapshot.ScrapeCount++
	copied := *snapshot
	m.snapshots[snapshot.ListingID] = &copied
	if entry != nil {
		m.history = append(m.history, entry)
	}
	return nil
}

func (m *memSnaps) GetPriceHistory(ctx context.Context, listingID string, limit int) ([]*models.PriceHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var entries []*models.PriceHistoryEntry
	for _, entry := range m.history {
		if entry.ListingID == listingID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

type memJobs memStorage

func (m *memJobs) SaveJob(ctx context.Context, job *models.ScrapeJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *job
	m.jobs[job.ID] = &copied
	return nil
}

func (m *memJobs) GetJob(ctx context.Context, id string) (*models.ScrapeJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (m *memJobs) UpdateJobStatus(ctx context.Context, id string, status models.JobStatus, errorMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	if job.Status.IsTerminal() {
		return interfaces.ErrTerminalTransition
	}
	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}
	now := time.Now().UTC()
	switch status {
	case models.JobStatusProcessing:
		job.StartedAt = &now
	case models.JobStatusCompleted, models.JobStatusFailed:
		job.CompletedAt = &now
	}
	return nil
}

func (m *memJobs) GetJobsByStatus(ctx context.Context, status models.JobStatus) ([]*models.ScrapeJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var jobs []*models.ScrapeJob
	for _, job := range m.jobs {
		if job.Status == status {
			copied := *job
			jobs = append(jobs, &copied)
		}
	}
	return jobs, nil
}

func (m *memJobs) MarkProcessingJobsFailed(ctx context.Context, reason string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, job := range m.jobs {
		if !job.Status.IsTerminal() {
			job.Status = models.JobStatusFailed
			job.Error = reason
			count++
		}
	}
	return count, nil
}

type memLedger memStorage

func (m *memLedger) IncrementCostLedger(ctx context.Context, date string, deltaProperties, deltaCalls int, deltaCostUSD float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.ledger[date]
	if !ok {
		entry = &models.CostLedgerEntry{Date: date}
		m.ledger[date] = entry
	}
	entry.PropertiesScraped += deltaProperties
	entry.ExtractionCalls += deltaCalls
	entry.TotalCostUSD += deltaCostUSD
	return nil
}

func (m *memLedger) ReadCostLedger(ctx context.Context, date string) (*models.CostLedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.ledger[date]; ok {
		copied := *entry
		return &copied, nil
	}
	return &models.CostLedgerEntry{Date: date}, nil
}

// scriptedExtraction returns queued responses per URL, tracking call counts.
type scriptedExtraction struct {
	mu      sync.Mutex
	results map[string][]extractionStep
	calls   map[string]int
}

type extractionStep struct {
	result *interfaces.ExtractionResult
	err    error
}

func newScriptedExtraction() *scriptedExtraction {
	return &scriptedExtraction{
		results: make(map[string][]extractionStep),
		calls:   make(map[string]int),
	}
}

func (s *scriptedExtraction) script(url string, steps ...extractionStep) {
	s.results[url] = steps
}

func (s *scriptedExtraction) Extract(ctx context.Context, url string, tier models.ModelTier) (*interfaces.ExtractionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[url]++
	steps := s.results[url]
	if len(steps) == 0 {
		return nil, errors.New("no scripted result")
	}
	step := steps[0]
	if len(steps) > 1 {
		s.results[url] = steps[1:]
	}
	return step.result, step.err
}

func successResult(price float64) *interfaces.ExtractionResult {
	return &interfaces.ExtractionResult{
		Units: []models.UnitRecord{
			{Title: "Unit A", Price: price, Available: true},
		},
		Category:   models.CategorySingleProperty,
		ModelUsed:  "test-model",
		DurationMs: 100,
		CostUSD:    0.003,
	}
}

func newTestDispatcher(cfg *common.Config, storage *memStorage, extraction interfaces.ExtractionService) *Dispatcher {
	logger := common.GetLogger()
	governor := budget.NewGovernor(&cfg.Budget, storage.Ledger(), logger)
	normalizer := pricing.NewNormalizer(&cfg.Pricing)
	pipeline := persist.NewPipeline(storage.Snapshots(), normalizer, nil, logger)
	return NewDispatcher(cfg, storage, extraction, governor, pipeline, logger)
}

func seedListing(storage *memStorage, id string, score float64) {
	storage.listings[id] = &models.ListingSource{
		ID:            id,
		PropertyID:    id,
		UnitID:        "a",
		URL:           "https://example.com/" + id,
		Status:        models.ListingStatusActive,
		PriorityScore: score,
	}
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(fmt.Errorf("bad page: %w", interfaces.ErrInvalidContent)))
	assert.True(t, IsTransient(errors.New("connection refused")))
}

func TestRunBatchNothingDue(t *testing.T) {
	storage := newMemStorage()
	dispatcher := newTestDispatcher(testConfig(), storage, newScriptedExtraction())

	result, err := dispatcher.RunBatch(context.Background(), 0, interfaces.ListingFilter{})
	require.NoError(t, err)
	assert.Equal(t, interfaces.SkipReasonNothingDue, result.SkippedReason)
	assert.Zero(t, result.Processed)
}

func TestRunBatchSuccess(t *testing.T) {
	storage := newMemStorage()
	seedListing(storage, "prop1", 80)

	extraction := newScriptedExtraction()
	extraction.script("https://example.com/prop1", extractionStep{result: successResult(2000)})

	dispatcher := newTestDispatcher(testConfig(), storage, extraction)
	result, err := dispatcher.RunBatch(context.Background(), 0, interfaces.ListingFilter{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Succeeded)
	assert.Zero(t, result.Failed)
	assert.InDelta(t, 0.003, result.TotalCostUSD, 1e-9)

	// The claim must be released and the job terminal, with the full
	// lifecycle timestamps intact.
	assert.Empty(t, storage.claims)
	jobs, _ := storage.Jobs().GetJobsByStatus(context.Background(), models.JobStatusCompleted)
	require.Len(t, jobs, 1)
	assert.Equal(t, "prop1", jobs[0].ListingID)
	assert.False(t, jobs[0].CreatedAt.IsZero())
	require.NotNil(t, jobs[0].StartedAt, "payload save must not clobber the processing timestamp")
	require.NotNil(t, jobs[0].CompletedAt)

	// Stats feedback ran.
	listing, err := storage.Listings().GetListing(context.Background(), "prop1")
	require.NoError(t, err)
	assert.Equal(t, 1, listing.ScrapeAttempts)
	assert.Equal(t, 1.0, listing.SuccessRate)
	require.NotNil(t, listing.LastScrapedAt)

	// Spend landed in the ledger.
	entry, err := storage.Ledger().ReadCostLedger(context.Background(), models.LedgerDate(time.Now().UTC()))
	require.NoError(t, err)
	assert.Equal(t, 1, entry.ExtractionCalls)
}

func TestRunBatchTransientRetries(t *testing.T) {
	storage := newMemStorage()
	seedListing(storage, "prop1", 50)

	extraction := newScriptedExtraction()
	extraction.script("https://example.com/prop1",
		extractionStep{err: errors.New("connection reset")},
		extractionStep{err: errors.New("server error 503")},
		extractionStep{result: successResult(1800)},
	)

	dispatcher := newTestDispatcher(testConfig(), storage, extraction)
	result, err := dispatcher.RunBatch(context.Background(), 0, interfaces.ListingFilter{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 3, extraction.calls["https://example.com/prop1"])

	jobs, _ := storage.Jobs().GetJobsByStatus(context.Background(), models.JobStatusCompleted)
	require.Len(t, jobs, 1)
	assert.Equal(t, 3, jobs[0].Attempts)
}

func TestRunBatchLogicalFailureNotRetried(t *testing.T) {
	storage := newMemStorage()
	seedListing(storage, "prop1", 50)

	extraction := newScriptedExtraction()
	extraction.script("https://example.com/prop1",
		extractionStep{err: fmt.Errorf("no units in response: %w", interfaces.ErrInvalidContent)},
	)

	dispatcher := newTestDispatcher(testConfig(), storage, extraction)
	result, err := dispatcher.RunBatch(context.Background(), 0, interfaces.ListingFilter{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, extraction.calls["https://example.com/prop1"], "logical failures are never retried")

	jobs, _ := storage.Jobs().GetJobsByStatus(context.Background(), models.JobStatusFailed)
	require.Len(t, jobs, 1)
	require.NotNil(t, jobs[0].StartedAt)

	listing, err := storage.Listings().GetListing(context.Background(), "prop1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, listing.SuccessRate)
	assert.Nil(t, listing.LastScrapedAt, "failed scrapes do not advance last-scraped")
}

func TestRunBatchTransientExhaustion(t *testing.T) {
	storage := newMemStorage()
	seedListing(storage, "prop1", 50)

	extraction := newScriptedExtraction()
	extraction.script("https://example.com/prop1",
		extractionStep{err: errors.New("timeout")},
	)

	dispatcher := newTestDispatcher(testConfig(), storage, extraction)
	result, err := dispatcher.RunBatch(context.Background(), 0, interfaces.ListingFilter{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 3, extraction.calls["https://example.com/prop1"], "transient failures retry to the attempt cap")
}

func TestRunBatchAlreadyClaimedSkipped(t *testing.T) {
	storage := newMemStorage()
	seedListing(storage, "prop1", 50)
	seedListing(storage, "prop2", 60)

	// prop2 is mid-flight from another invocation. SelectDueListings excludes
	// claimed listings, so only prop1 is visible.
	storage.claims["prop2"] = true

	extraction := newScriptedExtraction()
	extraction.script("https://example.com/prop1", extractionStep{result: successResult(2000)})

	dispatcher := newTestDispatcher(testConfig(), storage, extraction)
	result, err := dispatcher.RunBatch(context.Background(), 0, interfaces.ListingFilter{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Zero(t, extraction.calls["https://example.com/prop2"], "claimed listings are never dispatched twice")
	assert.True(t, storage.claims["prop2"], "foreign claims stay untouched")
}

func TestRunBatchBudgetPause(t *testing.T) {
	storage := newMemStorage()
	seedListing(storage, "prop1", 80)

	cfg := testConfig()
	date := models.LedgerDate(time.Now().UTC())
	require.NoError(t, storage.Ledger().IncrementCostLedger(context.Background(), date, 100, 100, cfg.Budget.DailyCapUSD))

	extraction := newScriptedExtraction()
	dispatcher := newTestDispatcher(cfg, storage, extraction)

	result, err := dispatcher.RunBatch(context.Background(), 0, interfaces.ListingFilter{})
	require.NoError(t, err)

	assert.Equal(t, interfaces.SkipReasonCostLimit, result.SkippedReason)
	assert.Zero(t, result.Processed)
	assert.Empty(t, extraction.calls, "no extraction runs once the cap is hit")
	assert.Empty(t, storage.claims, "paused work leaves no claims behind")
}

func TestRunBatchBudgetOverride(t *testing.T) {
	storage := newMemStorage()
	seedListing(storage, "prop1", 80)

	cfg := testConfig()
	cfg.Budget.Override = true
	date := models.LedgerDate(time.Now().UTC())
	require.NoError(t, storage.Ledger().IncrementCostLedger(context.Background(), date, 100, 100, cfg.Budget.DailyCapUSD*2))

	extraction := newScriptedExtraction()
	extraction.script("https://example.com/prop1", extractionStep{result: successResult(2000)})

	dispatcher := newTestDispatcher(cfg, storage, extraction)
	result, err := dispatcher.RunBatch(context.Background(), 0, interfaces.ListingFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
}

func TestRunBatchZeroUnitsIsSuccess(t *testing.T) {
	storage := newMemStorage()
	seedListing(storage, "prop1", 50)

	extraction := newScriptedExtraction()
	extraction.script("https://example.com/prop1", extractionStep{
		result: &interfaces.ExtractionResult{
			Units:      nil,
			Category:   models.CategoryUnknown,
			ModelUsed:  "test-model",
			DurationMs: 50,
			CostUSD:    0.003,
		},
	})

	dispatcher := newTestDispatcher(testConfig(), storage, extraction)
	result, err := dispatcher.RunBatch(context.Background(), 0, interfaces.ListingFilter{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded, "an empty page is a successful scrape")

	listing, err := storage.Listings().GetListing(context.Background(), "prop1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, listing.SuccessRate)
}

func TestSelectBatchRescores(t *testing.T) {
	storage := newMemStorage()
	seedListing(storage, "prop1", 0)
	past := time.Now().UTC().Add(-10 * 24 * time.Hour)
	storage.listings["prop1"].LastScrapedAt = &past
	storage.listings["prop1"].ScrapeAttempts = 4
	storage.listings["prop1"].SuccessRate = 1

	dispatcher := newTestDispatcher(testConfig(), storage, newScriptedExtraction())
	listings, err := dispatcher.SelectBatch(context.Background(), 10, interfaces.ListingFilter{})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Greater(t, listings[0].PriorityScore, 30.0, "ten days of staleness dominates the score")

	stored, err := storage.Listings().GetListing(context.Background(), "prop1")
	require.NoError(t, err)
	assert.Equal(t, listings[0].PriorityScore, stored.PriorityScore, "rescoring persists")
}

func TestSelectBatchRanksByFreshScores(t *testing.T) {
	storage := newMemStorage()

	// Seeded a month ago, never scraped, stored score still zero.
	seedListing(storage, "stale", 0)
	storage.listings["stale"].CreatedAt = time.Now().UTC().Add(-30 * 24 * time.Hour)

	// Scraped an hour ago with a flattering stored score.
	seedListing(storage, "fresh", 45)
	recent := time.Now().UTC().Add(-time.Hour)
	storage.listings["fresh"].LastScrapedAt = &recent
	storage.listings["fresh"].ScrapeAttempts = 5
	storage.listings["fresh"].SuccessRate = 1
	storage.listings["fresh"].ChangeFrequency = 1

	dispatcher := newTestDispatcher(testConfig(), storage, newScriptedExtraction())
	listings, err := dispatcher.SelectBatch(context.Background(), 1, interfaces.ListingFilter{})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "stale", listings[0].ID, "truncation must apply after rescoring, not on stored scores")
}

func TestRunBatchAdmissionCountsInFlightEstimates(t *testing.T) {
	storage := newMemStorage()
	seedListing(storage, "prop1", 80)
	seedListing(storage, "prop2", 80)

	cfg := testConfig()
	cfg.Budget.PremiumCostUSD = 0.5
	cfg.Budget.ClassifyCostUSD = 0
	date := models.LedgerDate(time.Now().UTC())
	require.NoError(t, storage.Ledger().IncrementCostLedger(context.Background(), date, 0, 0, 49.2))

	extraction := newScriptedExtraction()
	for _, id := range []string{"prop1", "prop2"} {
		extraction.script("https://example.com/"+id, extractionStep{
			result: &interfaces.ExtractionResult{
				Units:     []models.UnitRecord{{Title: "Unit A", Price: 2000, Available: true}},
				ModelUsed: "test-model",
				CostUSD:   0.5,
			},
		})
	}

	dispatcher := newTestDispatcher(cfg, storage, extraction)
	result, err := dispatcher.RunBatch(context.Background(), 0, interfaces.ListingFilter{})
	require.NoError(t, err)

	// 49.2 spent against a cap of 50: one 0.5 estimate fits, two do not.
	assert.Equal(t, 1, result.Processed, "the second estimate exceeds the remaining headroom")

	entry, err := storage.Ledger().ReadCostLedger(context.Background(), date)
	require.NoError(t, err)
	assert.LessOrEqual(t, entry.TotalCostUSD, cfg.Budget.DailyCapUSD, "the day must close at or under the cap")
}

func TestRunBatchExpiredContextLeavesNoClaims(t *testing.T) {
	storage := newMemStorage()
	seedListing(storage, "prop1", 50)
	seedListing(storage, "prop2", 60)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dispatcher := newTestDispatcher(testConfig(), storage, newScriptedExtraction())
	_, err := dispatcher.RunBatch(ctx, 0, interfaces.ListingFilter{})
	require.NoError(t, err)

	// Whether a job ran with the cancelled context or was aborted before
	// dispatch, every claim must be released and every job terminal.
	assert.Empty(t, storage.claims, "an expired batch must not strand claims")
	pending, _ := storage.Jobs().GetJobsByStatus(context.Background(), models.JobStatusPending)
	assert.Empty(t, pending)
	processing, _ := storage.Jobs().GetJobsByStatus(context.Background(), models.JobStatusProcessing)
	assert.Empty(t, processing)
}
