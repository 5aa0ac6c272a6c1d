// Package dispatch selects the highest-priority due listings and runs their
// scrape jobs through the worker pool with budget admission and retry.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rentradar/internal/common"
	"github.com/ternarybob/rentradar/internal/interfaces"
	"github.com/ternarybob/rentradar/internal/models"
	"github.com/ternarybob/rentradar/internal/services/budget"
	"github.com/ternarybob/rentradar/internal/services/diff"
	"github.com/ternarybob/rentradar/internal/services/persist"
	"github.com/ternarybob/rentradar/internal/services/scoring"
	"github.com/ternarybob/rentradar/internal/workers"
)

// Dispatcher runs scrape batches end to end: selection, admission, claiming,
// extraction with retry, persistence and stats feedback.
type Dispatcher struct {
	cfg        *common.Config
	storage    interfaces.StorageManager
	extraction interfaces.ExtractionService
	governor   *budget.Governor
	pipeline   *persist.Pipeline
	policy     RetryPolicy
	logger     arbor.ILogger
}

func NewDispatcher(cfg *common.Config, storage interfaces.StorageManager, extraction interfaces.ExtractionService, governor *budget.Governor, pipeline *persist.Pipeline, logger arbor.ILogger) *Dispatcher {
	return &Dispatcher{
		cfg:        cfg,
		storage:    storage,
		extraction: extraction,
		governor:   governor,
		pipeline:   pipeline,
		policy: RetryPolicy{
			MaxAttempts: cfg.Dispatch.MaxAttempts,
			Backoff:     common.MustDuration(cfg.Dispatch.RetryBackoff, 5*time.Second),
		},
		logger: logger,
	}
}

// SelectBatch rescores every eligible listing and returns the top of the
// queue. Rescoring happens before ordering and truncation so the ranking
// reflects current staleness: a never-scraped listing seeded at score zero
// must not starve behind listings whose stored scores are merely newer.
func (d *Dispatcher) SelectBatch(ctx context.Context, limit int, filter interfaces.ListingFilter) ([]*models.ListingSource, error) {
	listings, err := d.storage.Listings().SelectDueListings(ctx, 0, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to select due listings: %w", err)
	}

	now := time.Now().UTC()
	for _, listing := range listings {
		scoring.Rescore(&d.cfg.Scoring, listing, now)
		if err := d.storage.Listings().SaveListing(ctx, listing); err != nil {
			return nil, fmt.Errorf("failed to save rescored listing %s: %w", listing.ID, err)
		}
	}

	sort.SliceStable(listings, func(i, j int) bool {
		if listings[i].PriorityScore != listings[j].PriorityScore {
			return listings[i].PriorityScore > listings[j].PriorityScore
		}
		li, lj := listings[i].LastScrapedAt, listings[j].LastScrapedAt
		if (li == nil) != (lj == nil) {
			return li == nil
		}
		if li == nil {
			return false
		}
		return li.Before(*lj)
	})

	if limit > 0 && len(listings) > limit {
		listings = listings[:limit]
	}
	return listings, nil
}

// RunBatch processes one scheduler tick. The whole batch runs under the
// configured batch timeout; each extraction attempt gets its own timeout
// inside that. A non-positive size falls back to the configured batch size.
func (d *Dispatcher) RunBatch(ctx context.Context, size int, filter interfaces.ListingFilter) (*interfaces.BatchResult, error) {
	if size <= 0 {
		size = d.cfg.Scheduler.BatchSize
	}

	batchTimeout := common.MustDuration(d.cfg.Scheduler.BatchTimeout, 10*time.Minute)
	batchCtx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	listings, err := d.SelectBatch(batchCtx, size, filter)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return &interfaces.BatchResult{SkippedReason: interfaces.SkipReasonNothingDue}, nil
	}

	pool := workers.NewPool(batchCtx, d.cfg.Dispatch.Concurrency, d.logger)
	pool.Start()

	var (
		mu        sync.Mutex
		result    interfaces.BatchResult
		paused    bool
		startedAt = time.Now()
	)

	// Spend only reaches the ledger after an extraction completes, so
	// admission must count the estimates already admitted this batch on
	// top of the ledger total. Otherwise every listing is checked against
	// the same pre-batch figure and the day closes over the cap.
	admittedUSD := 0.0

	for _, listing := range listings {
		tier := budget.SelectModel(&d.cfg.Budget, listing.PriorityScore)
		estimate := budget.EstimateCost(&d.cfg.Budget, tier)

		if err := d.governor.Admit(batchCtx, time.Now().UTC(), admittedUSD+estimate); err != nil {
			if errors.Is(err, interfaces.ErrBudgetExceeded) {
				// Denied work stays queued; the next day's budget picks
				// it up in priority order.
				paused = true
				break
			}
			d.logger.Error().Err(err).Msg("Budget admission check failed")
			break
		}

		if err := d.storage.Listings().ClaimListing(batchCtx, listing.ID); err != nil {
			if errors.Is(err, interfaces.ErrAlreadyInFlight) {
				d.logger.Debug().Str("listing_id", listing.ID).Msg("Listing already in flight, skipping")
				continue
			}
			d.logger.Error().Err(err).Str("listing_id", listing.ID).Msg("Failed to claim listing")
			continue
		}

		job := &models.ScrapeJob{
			ID:        common.NewJobID(),
			ListingID: listing.ID,
			ModelTier: tier,
			Status:    models.JobStatusPending,
			CreatedAt: time.Now().UTC(),
		}
		if err := d.storage.Jobs().SaveJob(batchCtx, job); err != nil {
			d.logger.Error().Err(err).Str("listing_id", listing.ID).Msg("Failed to create scrape job")
			_ = d.storage.Listings().ReleaseListing(batchCtx, listing.ID)
			continue
		}
		admittedUSD += estimate

		listing := listing
		if err := pool.Submit(func(taskCtx context.Context) error {
			succeeded, costUSD := d.processJob(taskCtx, job, listing)

			mu.Lock()
			result.Processed++
			if succeeded {
				result.Succeeded++
			} else {
				result.Failed++
			}
			result.TotalCostUSD += costUSD
			mu.Unlock()
			return nil
		}); err != nil {
			cleanupCtx := context.WithoutCancel(batchCtx)
			_ = d.storage.Jobs().UpdateJobStatus(cleanupCtx, job.ID, models.JobStatusFailed, "batch aborted before dispatch")
			_ = d.storage.Listings().ReleaseListing(cleanupCtx, listing.ID)
			break
		}
	}

	pool.Wait()

	if paused && result.Processed == 0 {
		result.SkippedReason = interfaces.SkipReasonCostLimit
	}

	d.logger.Info().
		Int("processed", result.Processed).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Float64("cost_usd", result.TotalCostUSD).
		Bool("budget_paused", paused).
		Dur("duration", time.Since(startedAt)).
		Msg("Scrape batch finished")

	return &result, nil
}

// processJob runs one scrape job to a terminal state and releases the
// listing claim. Returns whether the job succeeded and its recorded cost.
func (d *Dispatcher) processJob(ctx context.Context, job *models.ScrapeJob, listing *models.ListingSource) (bool, float64) {
	// The claim must not outlive the job, whatever happens inside it.
	defer func() {
		if err := d.storage.Listings().ReleaseListing(context.WithoutCancel(ctx), listing.ID); err != nil {
			d.logger.Error().Err(err).Str("listing_id", listing.ID).Msg("Failed to release listing claim")
		}
	}()

	if err := d.storage.Jobs().UpdateJobStatus(ctx, job.ID, models.JobStatusProcessing, ""); err != nil {
		d.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to mark job processing")
	}

	result, attempts, err := d.extractWithRetry(ctx, listing, job.ModelTier)
	job.Attempts = attempts

	at := time.Now().UTC()
	if err != nil {
		d.finishJob(ctx, job, models.JobStatusFailed, err.Error())
		d.recordOutcome(ctx, listing, scoring.Outcome{Success: false, At: at})

		d.logger.Warn().
			Err(err).
			Str("listing_id", listing.ID).
			Int("attempts", attempts).
			Msg("Scrape job failed")
		return false, 0
	}

	changed, persistErr := d.persistResult(ctx, listing, result, at)
	if persistErr != nil {
		d.finishJob(ctx, job, models.JobStatusFailed, persistErr.Error())
		d.recordOutcome(ctx, listing, scoring.Outcome{Success: false, At: at})
		return false, 0
	}

	if err := d.governor.RecordExtraction(ctx, at, result.CostUSD); err != nil {
		d.logger.Error().Err(err).Msg("Failed to record extraction spend")
	}

	job.Units = result.Units
	job.ModelUsed = result.ModelUsed
	job.DurationMs = result.DurationMs
	job.CostUSD = result.CostUSD
	d.finishJob(ctx, job, models.JobStatusCompleted, "")

	d.recordOutcome(ctx, listing, scoring.Outcome{
		Success:  true,
		Changed:  changed,
		Duration: time.Duration(result.DurationMs) * time.Millisecond,
		At:       at,
	})

	return true, result.CostUSD
}

// extractWithRetry runs extraction attempts under per-attempt timeouts.
// Transient failures retry with linear backoff; logical failures stop
// immediately.
func (d *Dispatcher) extractWithRetry(ctx context.Context, listing *models.ListingSource, tier models.ModelTier) (*interfaces.ExtractionResult, int, error) {
	attemptTimeout := common.MustDuration(d.cfg.Dispatch.AttemptTimeout, 90*time.Second)

	var lastErr error
	for attempt := 1; attempt <= d.policy.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		result, err := d.extraction.Extract(attemptCtx, listing.URL, tier)
		cancel()

		if err == nil {
			return result, attempt, nil
		}
		lastErr = err

		if !IsTransient(err) {
			return nil, attempt, fmt.Errorf("permanent extraction failure: %w", err)
		}
		if attempt == d.policy.MaxAttempts {
			break
		}

		d.logger.Debug().
			Err(err).
			Str("listing_id", listing.ID).
			Int("attempt", attempt).
			Msg("Transient extraction failure, backing off")

		if err := d.policy.Wait(ctx, attempt); err != nil {
			return nil, attempt, fmt.Errorf("retry wait cancelled: %w", err)
		}
	}
	return nil, d.policy.MaxAttempts, fmt.Errorf("extraction failed after %d attempts: %w", d.policy.MaxAttempts, lastErr)
}

// persistResult applies the extracted units to stored state. Zero units is a
// valid outcome: the page is live but lists nothing, so the listing gets a
// sighting touch only.
func (d *Dispatcher) persistResult(ctx context.Context, listing *models.ListingSource, result *interfaces.ExtractionResult, at time.Time) (bool, error) {
	unit := matchUnit(listing, result.Units)
	if unit == nil {
		if err := d.pipeline.Touch(ctx, listing.ID, at); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
			return false, err
		}
		return false, nil
	}

	persisted, err := d.pipeline.Persist(ctx, listing, unit, at)
	if err != nil {
		return false, err
	}
	return persisted.Classification == diff.ChangeSignificant, nil
}

func (d *Dispatcher) finishJob(ctx context.Context, job *models.ScrapeJob, status models.JobStatus, errMsg string) {
	ctx = context.WithoutCancel(ctx)

	// The in-memory job predates the processing transition; carry the
	// stored status and started timestamp forward so the payload upsert
	// does not clobber them.
	if stored, err := d.storage.Jobs().GetJob(ctx, job.ID); err == nil {
		job.Status = stored.Status
		job.StartedAt = stored.StartedAt
	}

	if err := d.storage.Jobs().SaveJob(ctx, job); err != nil {
		d.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to save job payload")
	}
	if err := d.storage.Jobs().UpdateJobStatus(ctx, job.ID, status, errMsg); err != nil {
		d.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to finish job")
	}
}

func (d *Dispatcher) recordOutcome(ctx context.Context, listing *models.ListingSource, outcome scoring.Outcome) {
	scoring.RecordOutcome(&d.cfg.Scoring, listing, outcome)
	if err := d.storage.Listings().SaveListing(context.WithoutCancel(ctx), listing); err != nil {
		d.logger.Error().Err(err).Str("listing_id", listing.ID).Msg("Failed to save listing stats")
	}
}

// matchUnit picks the extracted unit that corresponds to the tracked listing.
// Aggregator and manager pages return several units; the unit whose title
// mentions the tracked unit ID wins, otherwise the first extracted unit.
func matchUnit(listing *models.ListingSource, units []models.UnitRecord) *models.UnitRecord {
	if len(units) == 0 {
		return nil
	}

	unitID := strings.ToLower(listing.UnitID)
	for i := range units {
		if unitID != "" && strings.Contains(strings.ToLower(units[i].Title), unitID) {
			return &units[i]
		}
	}
	return &units[0]
}
