package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rentradar/internal/interfaces"
	"github.com/ternarybob/rentradar/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// LedgerStorage implements the LedgerStorage interface for Badger. Increments
// are serialized by a mutex so concurrent workers never undercount spend.
type LedgerStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
	mu     sync.Mutex
}

// NewLedgerStorage creates a new LedgerStorage instance
func NewLedgerStorage(db *BadgerDB, logger arbor.ILogger) interfaces.LedgerStorage {
	return &LedgerStorage{
		db:     db,
		logger: logger,
	}
}

func (s *LedgerStorage) IncrementCostLedger(ctx context.Context, date string, deltaProperties, deltaCalls int, deltaCostUSD float64) error {
	if date == "" {
		return fmt.Errorf("ledger date is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var entry models.CostLedgerEntry
	err := s.db.Store().Get(date, &entry)
	switch {
	case errors.Is(err, badgerhold.ErrNotFound):
		entry = models.CostLedgerEntry{Date: date}
	case err != nil:
		return fmt.Errorf("failed to read cost ledger %s: %w", date, err)
	}

	entry.PropertiesScraped += deltaProperties
	entry.ExtractionCalls += deltaCalls
	entry.TotalCostUSD += deltaCostUSD
	entry.UpdatedAt = time.Now().UTC()

	if err := s.db.Store().Upsert(date, &entry); err != nil {
		return fmt.Errorf("failed to increment cost ledger %s: %w", date, err)
	}
	return nil
}

func (s *LedgerStorage) ReadCostLedger(ctx context.Context, date string) (*models.CostLedgerEntry, error) {
	var entry models.CostLedgerEntry
	if err := s.db.Store().Get(date, &entry); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return &models.CostLedgerEntry{Date: date}, nil
		}
		return nil, fmt.Errorf("failed to read cost ledger %s: %w", date, err)
	}
	return &entry, nil
}
