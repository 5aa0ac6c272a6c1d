package models

import "time"

// ListingStatus represents the lifecycle status of a listing source.
// Listings are never hard-deleted; they are marked inactive.
type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "active"
	ListingStatusInactive ListingStatus = "inactive"
)

// PriorityTier is a derived bucketing of the priority score used for
// batch-selection filtering.
type PriorityTier string

const (
	TierHigh   PriorityTier = "high"
	TierMedium PriorityTier = "medium"
	TierLow    PriorityTier = "low"
)

// ListingSource is one trackable rental unit URL with its scheduling metadata.
// All rolling stats are updated after every scrape attempt so the priority
// score is recomputable purely from this record.
type ListingSource struct {
	ID         string `badgerhold:"key"` // Composite: <property>:<unit>
	PropertyID string
	UnitID     string
	Site       string // Source site name
	URL        string
	Status     ListingStatus

	PriorityScore float64
	PriorityTier  PriorityTier

	ScrapeAttempts  int
	SuccessRate     float64 // Rolling EWMA in [0,1]
	ChangeFrequency float64 // Rolling EWMA of change-per-successful-scrape in [0,1]
	AvgDurationMs   float64 // Rolling EWMA of successful scrape duration

	LastScrapedAt *time.Time // Last successful scrape
	LastChangedAt *time.Time // Last detected significant change

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DaysSinceLastScrape returns the staleness of the listing in days. Listings
// that have never been scraped successfully are measured from creation.
func (l *ListingSource) DaysSinceLastScrape(now time.Time) float64 {
	ref := l.CreatedAt
	if l.LastScrapedAt != nil {
		ref = *l.LastScrapedAt
	}
	days := now.Sub(ref).Hours() / 24
	if days < 0 {
		return 0
	}
	return days
}
