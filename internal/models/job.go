package models

import "time"

// JobStatus represents the state of a scrape job.
// Valid transitions: pending -> processing -> completed | failed.
// Terminal states never transition back to pending; a retry after a permanent
// failure is always a brand-new job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether the status is a terminal state.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ScrapeJob is one unit of dispatched work for a single listing.
type ScrapeJob struct {
	ID        string `badgerhold:"key"`
	ListingID string
	ModelTier ModelTier
	Status    JobStatus
	Attempts  int    // Dispatch attempts consumed (transient retries within this job)
	Error     string // Error text when failed

	Units      []UnitRecord // Raw extraction payload on success
	ModelUsed  string       // Worker-reported model
	DurationMs int64        // Worker-reported extraction duration
	CostUSD    float64      // Estimated extraction spend for this job

	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}
