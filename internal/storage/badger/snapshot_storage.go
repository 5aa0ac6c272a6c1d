package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rentradar/internal/interfaces"
	"github.com/ternarybob/rentradar/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// SnapshotStorage implements the SnapshotStorage interface for Badger.
// A mutex serializes snapshot writes: badgerhold has no conditional field
// updates, so idempotency of the history append relies on checking the
// stored price inside the same critical section as the write.
type SnapshotStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
	mu     sync.Mutex
}

// NewSnapshotStorage creates a new SnapshotStorage instance
func NewSnapshotStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SnapshotStorage {
	return &SnapshotStorage{
		db:     db,
		logger: logger,
	}
}

func (s *SnapshotStorage) GetSnapshot(ctx context.Context, listingID string) (*models.PropertySnapshot, error) {
	var snapshot models.PropertySnapshot
	if err := s.db.Store().Get(listingID, &snapshot); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("snapshot %s: %w", listingID, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get snapshot %s: %w", listingID, err)
	}
	return &snapshot, nil
}

func (s *SnapshotStorage) ApplyMinimalTouch(ctx context.Context, listingID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snapshot models.PropertySnapshot
	if err := s.db.Store().Get(listingID, &snapshot); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("snapshot %s: %w", listingID, interfaces.ErrNotFound)
		}
		return fmt.Errorf("failed to get snapshot %s: %w", listingID, err)
	}

	snapshot.LastSeenAt = at
	snapshot.ScrapeCount++
	snapshot.UpdatedAt = time.Now().UTC()

	if err := s.db.Store().Upsert(listingID, &snapshot); err != nil {
		return fmt.Errorf("failed to touch snapshot %s: %w", listingID, err)
	}
	return nil
}

func (s *SnapshotStorage) ApplyFullUpdateWithHistory(ctx context.Context, snapshot *models.PropertySnapshot, entry *models.PriceHistoryEntry) error {
	if snapshot == nil || snapshot.ListingID == "" {
		return fmt.Errorf("snapshot listing ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Carry forward housekeeping fields and detect repeat applications of
	// the same snapshot (idempotent persistence under unordered completion).
	appendEntry := entry
	var existing models.PropertySnapshot
	err := s.db.Store().Get(snapshot.ListingID, &existing)
	switch {
	case err == nil:
		snapshot.FirstSeenAt = existing.FirstSeenAt
		snapshot.ScrapeCount = existing.ScrapeCount + 1
		if entry != nil && existing.Price == snapshot.Price {
			// The stored price already matches: this price change has
			// been recorded before. At most one history entry per
			// actual price change.
			appendEntry = nil
		}
	case errors.Is(err, badgerhold.ErrNotFound):
		if snapshot.FirstSeenAt.IsZero() {
			snapshot.FirstSeenAt = snapshot.LastSeenAt
		}
		snapshot.ScrapeCount = 1
	default:
		return fmt.Errorf("failed to read snapshot %s: %w", snapshot.ListingID, err)
	}
	snapshot.UpdatedAt = time.Now().UTC()

	// Snapshot overwrite and history append commit in one Badger
	// transaction: both or neither.
	err = s.db.Store().Badger().Update(func(tx *badgerdb.Txn) error {
		if err := s.db.Store().TxUpsert(tx, snapshot.ListingID, snapshot); err != nil {
			return fmt.Errorf("failed to update snapshot: %w", err)
		}
		if appendEntry != nil {
			if err := s.db.Store().TxInsert(tx, appendEntry.ID, appendEntry); err != nil {
				return fmt.Errorf("failed to append price history: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("full update for %s: %w", snapshot.ListingID, err)
	}

	if appendEntry != nil {
		s.logger.Debug().
			Str("listing_id", snapshot.ListingID).
			Float64("price", appendEntry.Price).
			Str("direction", string(appendEntry.Direction)).
			Msg("Price history entry appended")
	}
	return nil
}

func (s *SnapshotStorage) GetPriceHistory(ctx context.Context, listingID string, limit int) ([]*models.PriceHistoryEntry, error) {
	query := badgerhold.Where("ListingID").Eq(listingID).SortBy("RecordedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []models.PriceHistoryEntry
	if err := s.db.Store().Find(&entries, query); err != nil {
		return nil, fmt.Errorf("failed to get price history for %s: %w", listingID, err)
	}

	result := make([]*models.PriceHistoryEntry, len(entries))
	for i := range entries {
		result[i] = &entries[i]
	}
	return result, nil
}
