package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rentradar/internal/interfaces"
	"github.com/ternarybob/rentradar/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// listingClaim marks a listing as having a scrape job in flight. The claim is
// keyed by listing ID so a conditional insert gives at-most-one semantics.
type listingClaim struct {
	ListingID string `badgerhold:"key"`
	ClaimedAt time.Time
}

// ListingStorage implements the ListingStorage interface for Badger
type ListingStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewListingStorage creates a new ListingStorage instance
func NewListingStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ListingStorage {
	return &ListingStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ListingStorage) SaveListing(ctx context.Context, listing *models.ListingSource) error {
	if listing.ID == "" {
		return fmt.Errorf("listing ID is required")
	}
	listing.UpdatedAt = time.Now().UTC()

	if err := s.db.Store().Upsert(listing.ID, listing); err != nil {
		return fmt.Errorf("failed to save listing %s: %w", listing.ID, err)
	}
	return nil
}

func (s *ListingStorage) GetListing(ctx context.Context, id string) (*models.ListingSource, error) {
	var listing models.ListingSource
	if err := s.db.Store().Get(id, &listing); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("listing %s: %w", id, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get listing %s: %w", id, err)
	}
	return &listing, nil
}

func (s *ListingStorage) ListListings(ctx context.Context, limit int) ([]*models.ListingSource, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("PriorityScore").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var listings []models.ListingSource
	if err := s.db.Store().Find(&listings, query); err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}

	result := make([]*models.ListingSource, len(listings))
	for i := range listings {
		result[i] = &listings[i]
	}
	return result, nil
}

func (s *ListingStorage) SelectDueListings(ctx context.Context, limit int, filter interfaces.ListingFilter) ([]*models.ListingSource, error) {
	candidates, err := s.findEligible(filter)
	if err != nil {
		return nil, err
	}

	// Order by descending priority score, ties broken by longest time
	// since last scrape. Never-scraped listings sort first within a tie.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].PriorityScore != candidates[j].PriorityScore {
			return candidates[i].PriorityScore > candidates[j].PriorityScore
		}
		li, lj := candidates[i].LastScrapedAt, candidates[j].LastScrapedAt
		if (li == nil) != (lj == nil) {
			return li == nil
		}
		if li == nil {
			return false
		}
		return li.Before(*lj)
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func (s *ListingStorage) CountEligible(ctx context.Context, filter interfaces.ListingFilter) (int, error) {
	candidates, err := s.findEligible(filter)
	if err != nil {
		return 0, err
	}
	return len(candidates), nil
}

// findEligible returns active listings matching the filter with in-flight
// listings excluded.
func (s *ListingStorage) findEligible(filter interfaces.ListingFilter) ([]*models.ListingSource, error) {
	query := badgerhold.Where("Status").Eq(models.ListingStatusActive)
	if filter.Site != "" {
		query = query.And("Site").Eq(filter.Site)
	}
	if filter.Tier != "" {
		query = query.And("PriorityTier").Eq(filter.Tier)
	}
	if filter.MinScore > 0 {
		query = query.And("PriorityScore").Ge(filter.MinScore)
	}

	var listings []models.ListingSource
	if err := s.db.Store().Find(&listings, query); err != nil {
		return nil, fmt.Errorf("failed to select due listings: %w", err)
	}

	var claims []listingClaim
	if err := s.db.Store().Find(&claims, nil); err != nil {
		return nil, fmt.Errorf("failed to load listing claims: %w", err)
	}
	claimed := make(map[string]struct{}, len(claims))
	for _, c := range claims {
		claimed[c.ListingID] = struct{}{}
	}

	result := make([]*models.ListingSource, 0, len(listings))
	for i := range listings {
		if _, inFlight := claimed[listings[i].ID]; inFlight {
			continue
		}
		result = append(result, &listings[i])
	}
	return result, nil
}

func (s *ListingStorage) ClaimListing(ctx context.Context, id string) error {
	claim := listingClaim{
		ListingID: id,
		ClaimedAt: time.Now().UTC(),
	}

	// Insert fails when the key exists, making the claim a conditional
	// operation rather than a read-then-write.
	if err := s.db.Store().Insert(id, &claim); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("listing %s: %w", id, interfaces.ErrAlreadyInFlight)
		}
		return fmt.Errorf("failed to claim listing %s: %w", id, err)
	}
	return nil
}

func (s *ListingStorage) ReleaseListing(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &listingClaim{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to release listing %s: %w", id, err)
	}
	return nil
}

func (s *ListingStorage) ReleaseAllClaims(ctx context.Context) (int, error) {
	var claims []listingClaim
	if err := s.db.Store().Find(&claims, nil); err != nil {
		return 0, fmt.Errorf("failed to load listing claims: %w", err)
	}

	released := 0
	for _, c := range claims {
		if err := s.db.Store().Delete(c.ListingID, &listingClaim{}); err == nil {
			released++
		}
	}

	if released > 0 {
		s.logger.Info().Int("count", released).Msg("Released stale listing claims")
	}
	return released, nil
}
