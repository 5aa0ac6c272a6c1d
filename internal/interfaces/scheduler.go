package interfaces

import (
	"context"
	"time"
)

// Skip reasons reported when a batch run attempted no work. Callers must be
// able to distinguish "nothing due" from "paused by budget" or "disabled".
const (
	SkipReasonDisabled   = "scheduler disabled"
	SkipReasonCostLimit  = "paused: cost limit"
	SkipReasonNothingDue = "nothing due"
)

// BatchResult summarizes one scheduler batch run.
type BatchResult struct {
	Processed    int     `json:"processed"`
	Succeeded    int     `json:"succeeded"`
	Failed       int     `json:"failed"`
	TotalCostUSD float64 `json:"total_cost_usd"`

	// SkippedReason is set when no work was attempted.
	SkippedReason string `json:"skipped_reason,omitempty"`
}

// SchedulerStatus reports the scheduler's current state.
type SchedulerStatus struct {
	Enabled           bool       `json:"enabled"`
	Running           bool       `json:"running"`
	PausedReason      string     `json:"paused_reason,omitempty"`
	NextEligibleCount int        `json:"next_eligible_listing_count"`
	LastRun           *time.Time `json:"last_run,omitempty"`
	NextRun           *time.Time `json:"next_run,omitempty"`
}

// SchedulerService exposes the scraping scheduler to external callers (cron
// trigger, operator tooling).
type SchedulerService interface {
	Start() error
	Stop() error
	RunBatch(ctx context.Context, size int, filter ListingFilter) (*BatchResult, error)
	Status(ctx context.Context) (*SchedulerStatus, error)
}
