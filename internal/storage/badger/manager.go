package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rentradar/internal/common"
	"github.com/ternarybob/rentradar/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db       *BadgerDB
	listing  interfaces.ListingStorage
	snapshot interfaces.SnapshotStorage
	job      interfaces.JobStorage
	ledger   interfaces.LedgerStorage
	logger   arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:       db,
		listing:  NewListingStorage(db, logger),
		snapshot: NewSnapshotStorage(db, logger),
		job:      NewJobStorage(db, logger),
		ledger:   NewLedgerStorage(db, logger),
		logger:   logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// Listings returns the listing storage interface
func (m *Manager) Listings() interfaces.ListingStorage {
	return m.listing
}

// Snapshots returns the snapshot storage interface
func (m *Manager) Snapshots() interfaces.SnapshotStorage {
	return m.snapshot
}

// Jobs returns the scrape job storage interface
func (m *Manager) Jobs() interfaces.JobStorage {
	return m.job
}

// Ledger returns the cost ledger storage interface
func (m *Manager) Ledger() interfaces.LedgerStorage {
	return m.ledger
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
