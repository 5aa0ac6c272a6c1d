// Package scheduler triggers scrape batches on a cron schedule and exposes
// manual runs and status to operators.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rentradar/internal/common"
	"github.com/ternarybob/rentradar/internal/interfaces"
	"github.com/ternarybob/rentradar/internal/services/dispatch"
)

// Service implements the SchedulerService interface on top of the dispatcher.
type Service struct {
	cfg        *common.SchedulerConfig
	dispatcher *dispatch.Dispatcher
	listings   interfaces.ListingStorage
	cron       *cron.Cron
	logger     arbor.ILogger

	mu           sync.Mutex
	enabled      bool
	running      bool
	isProcessing bool
	lastRun      *time.Time
	pausedReason string
	cronEntry    cron.EntryID
}

func NewService(cfg *common.SchedulerConfig, dispatcher *dispatch.Dispatcher, listings interfaces.ListingStorage, logger arbor.ILogger) *Service {
	return &Service{
		cfg:        cfg,
		dispatcher: dispatcher,
		listings:   listings,
		cron:       cron.New(),
		logger:     logger,
		enabled:    cfg.Enabled,
	}
}

// Start registers the cron trigger and begins ticking. Starting with the
// scheduler disabled is valid; ticks then report the disabled skip reason
// until an operator enables it.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	schedule := s.cfg.Schedule
	if schedule == "" {
		schedule = "0 * * * *" // Hourly
	}

	entryID, err := s.cron.AddFunc(schedule, s.runScheduledBatch)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	s.cronEntry = entryID

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", schedule).
		Bool("enabled", s.enabled).
		Msg("Scheduler started")
	return nil
}

// Stop halts the cron trigger and waits for an in-progress batch to finish.
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		s.logger.Warn().Msg("Batch did not finish within shutdown timeout")
	}

	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// SetEnabled flips the scheduler's enabled flag at runtime. The cron keeps
// ticking either way; disabled ticks do no work.
func (s *Service) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
	s.logger.Info().Bool("enabled", enabled).Msg("Scheduler enabled flag changed")
}

// RunBatch runs one batch immediately. Manual runs bypass the enabled flag
// but still respect the single-batch-at-a-time guard.
func (s *Service) RunBatch(ctx context.Context, size int, filter interfaces.ListingFilter) (*interfaces.BatchResult, error) {
	s.mu.Lock()
	if s.isProcessing {
		s.mu.Unlock()
		return nil, fmt.Errorf("a batch is already in progress")
	}
	s.isProcessing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isProcessing = false
		s.mu.Unlock()
	}()

	result, err := s.dispatcher.RunBatch(ctx, size, filter)

	s.mu.Lock()
	now := time.Now().UTC()
	s.lastRun = &now
	if result != nil && result.SkippedReason == interfaces.SkipReasonCostLimit {
		s.pausedReason = interfaces.SkipReasonCostLimit
	} else if err == nil {
		s.pausedReason = ""
	}
	s.mu.Unlock()

	return result, err
}

// Status reports the scheduler's state including how many listings are
// eligible for the next batch.
func (s *Service) Status(ctx context.Context) (*interfaces.SchedulerStatus, error) {
	eligible, err := s.listings.CountEligible(ctx, interfaces.ListingFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to count eligible listings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	status := &interfaces.SchedulerStatus{
		Enabled:           s.enabled,
		Running:           s.isProcessing,
		PausedReason:      s.pausedReason,
		NextEligibleCount: eligible,
		LastRun:           s.lastRun,
	}

	if s.running {
		entry := s.cron.Entry(s.cronEntry)
		if !entry.Next.IsZero() {
			next := entry.Next
			status.NextRun = &next
		}
	}
	return status, nil
}

// runScheduledBatch is the cron tick handler.
func (s *Service) runScheduledBatch() {
	s.mu.Lock()
	enabled := s.enabled
	busy := s.isProcessing
	s.mu.Unlock()

	if !enabled {
		s.logger.Debug().Str("reason", interfaces.SkipReasonDisabled).Msg("Skipping scheduled batch")
		return
	}
	if busy {
		s.logger.Warn().Msg("Previous batch still running, skipping tick")
		return
	}

	result, err := s.RunBatch(context.Background(), 0, interfaces.ListingFilter{})
	if err != nil {
		s.logger.Error().Err(err).Msg("Scheduled batch failed")
		return
	}
	if result.SkippedReason != "" {
		s.logger.Info().Str("reason", result.SkippedReason).Msg("Scheduled batch skipped")
	}
}

var _ interfaces.SchedulerService = (*Service)(nil)
