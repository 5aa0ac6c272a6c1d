package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/rentradar/internal/models"
)

// ListingFilter narrows batch selection to a subset of listings.
// Zero values mean "no constraint".
type ListingFilter struct {
	Site     string
	Tier     models.PriorityTier
	MinScore float64
}

// ListingStorage persists listing sources and the in-flight claim markers
// that guarantee at most one concurrent scrape job per listing.
type ListingStorage interface {
	SaveListing(ctx context.Context, listing *models.ListingSource) error
	GetListing(ctx context.Context, id string) (*models.ListingSource, error)
	ListListings(ctx context.Context, limit int) ([]*models.ListingSource, error)

	// SelectDueListings returns active listings matching the filter,
	// ordered by descending priority score with ties broken by longest
	// time since last scrape. Listings with an active claim are excluded.
	SelectDueListings(ctx context.Context, limit int, filter ListingFilter) ([]*models.ListingSource, error)

	// CountEligible counts active, unclaimed listings matching the filter.
	CountEligible(ctx context.Context, filter ListingFilter) (int, error)

	// ClaimListing conditionally marks a listing as in flight. Returns
	// ErrAlreadyInFlight when a claim already exists; safe under
	// concurrent scheduler invocations.
	ClaimListing(ctx context.Context, id string) error

	// ReleaseListing clears the in-flight marker after completion or failure.
	ReleaseListing(ctx context.Context, id string) error

	// ReleaseAllClaims clears every claim; used for startup recovery.
	ReleaseAllClaims(ctx context.Context) (int, error)
}

// SnapshotStorage owns the current field-state of each listing and its
// append-only price history.
type SnapshotStorage interface {
	// GetSnapshot returns ErrNotFound when the listing has no snapshot yet.
	GetSnapshot(ctx context.Context, listingID string) (*models.PropertySnapshot, error)

	// ApplyMinimalTouch bumps last-seen and scrape counters only.
	ApplyMinimalTouch(ctx context.Context, listingID string, at time.Time) error

	// ApplyFullUpdateWithHistory overwrites the snapshot and, when entry is
	// non-nil, appends exactly one price history entry. Both writes are
	// applied atomically; a repeat application of the same snapshot never
	// produces a duplicate history entry.
	ApplyFullUpdateWithHistory(ctx context.Context, snapshot *models.PropertySnapshot, entry *models.PriceHistoryEntry) error

	// GetPriceHistory returns history entries for a listing, newest first.
	GetPriceHistory(ctx context.Context, listingID string, limit int) ([]*models.PriceHistoryEntry, error)
}

// JobStorage persists scrape jobs.
type JobStorage interface {
	SaveJob(ctx context.Context, job *models.ScrapeJob) error
	GetJob(ctx context.Context, id string) (*models.ScrapeJob, error)

	// UpdateJobStatus transitions a job's status. Transitions out of a
	// terminal state return ErrTerminalTransition.
	UpdateJobStatus(ctx context.Context, id string, status models.JobStatus, errorMsg string) error

	GetJobsByStatus(ctx context.Context, status models.JobStatus) ([]*models.ScrapeJob, error)

	// MarkProcessingJobsFailed fails every pending/processing job; used for
	// startup recovery after a crash.
	MarkProcessingJobsFailed(ctx context.Context, reason string) (int, error)
}

// LedgerStorage maintains the daily cost ledger.
type LedgerStorage interface {
	// IncrementCostLedger atomically increments today's aggregate by the
	// given deltas (increment-by-delta, never read-modify-write across
	// round trips).
	IncrementCostLedger(ctx context.Context, date string, deltaProperties, deltaCalls int, deltaCostUSD float64) error

	// ReadCostLedger returns the aggregate for a date; a zero-valued entry
	// when none has been recorded.
	ReadCostLedger(ctx context.Context, date string) (*models.CostLedgerEntry, error)
}

// StorageManager aggregates the storage interfaces behind one lifecycle.
type StorageManager interface {
	Listings() ListingStorage
	Snapshots() SnapshotStorage
	Jobs() JobStorage
	Ledger() LedgerStorage
	Close() error
}
