// Package persist decides what a freshly extracted unit does to stored
// state: a timestamp touch when nothing meaningful moved, a full snapshot
// overwrite plus price bookkeeping when it did.
package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rentradar/internal/common"
	"github.com/ternarybob/rentradar/internal/interfaces"
	"github.com/ternarybob/rentradar/internal/models"
	"github.com/ternarybob/rentradar/internal/services/diff"
	"github.com/ternarybob/rentradar/internal/services/pricing"
)

// MarketReferenceProvider supplies a market reference rent for a listing.
// A zero return means no market data is available.
type MarketReferenceProvider interface {
	ReferenceRent(ctx context.Context, listing *models.ListingSource, unit *models.UnitRecord) float64
}

// NoMarketData is the default provider: every listing reads as at market.
type NoMarketData struct{}

func (NoMarketData) ReferenceRent(ctx context.Context, listing *models.ListingSource, unit *models.UnitRecord) float64 {
	return 0
}

// Pipeline persists extraction results against stored snapshots.
type Pipeline struct {
	snapshots  interfaces.SnapshotStorage
	normalizer *pricing.Normalizer
	market     MarketReferenceProvider
	logger     arbor.ILogger
}

func NewPipeline(snapshots interfaces.SnapshotStorage, normalizer *pricing.Normalizer, market MarketReferenceProvider, logger arbor.ILogger) *Pipeline {
	if market == nil {
		market = NoMarketData{}
	}
	return &Pipeline{
		snapshots:  snapshots,
		normalizer: normalizer,
		market:     market,
		logger:     logger,
	}
}

// Result reports what one persist call did.
type Result struct {
	Classification diff.Classification
	ChangedFields  []string
	PriceChanged   bool
}

// Persist applies one extracted unit to the listing's stored snapshot. No
// significant change means a minimal touch; a significant change overwrites
// the snapshot and, when the price moved, appends exactly one history entry.
func (p *Pipeline) Persist(ctx context.Context, listing *models.ListingSource, unit *models.UnitRecord, at time.Time) (*Result, error) {
	existing, err := p.snapshots.GetSnapshot(ctx, listing.ID)
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("failed to load snapshot for %s: %w", listing.ID, err)
	}

	candidate := p.buildSnapshot(ctx, listing, unit, at)
	comparison := diff.Compare(existing, candidate)

	switch comparison.Classification {
	case diff.ChangeNone, diff.ChangeCosmetic:
		// Cosmetic drift is not worth a snapshot rewrite; last-seen tracking
		// is all that moves.
		if err := p.snapshots.ApplyMinimalTouch(ctx, listing.ID, at); err != nil {
			return nil, fmt.Errorf("failed to touch snapshot for %s: %w", listing.ID, err)
		}
		return &Result{
			Classification: comparison.Classification,
			ChangedFields:  comparison.ChangedFields,
		}, nil
	}

	var entry *models.PriceHistoryEntry
	priceChanged := existing != nil && existing.Price != candidate.Price
	if priceChanged {
		direction := models.PriceIncreased
		if candidate.Price < existing.Price {
			direction = models.PriceDecreased
		}
		entry = &models.PriceHistoryEntry{
			ID:         common.NewHistoryID(),
			ListingID:  listing.ID,
			Price:      candidate.Price,
			Direction:  direction,
			RecordedAt: at,
		}
	}

	if err := p.snapshots.ApplyFullUpdateWithHistory(ctx, candidate, entry); err != nil {
		return nil, fmt.Errorf("failed to update snapshot for %s: %w", listing.ID, err)
	}

	p.logger.Info().
		Str("listing_id", listing.ID).
		Strs("changed", comparison.ChangedFields).
		Bool("price_changed", priceChanged).
		Msg("Significant listing change persisted")

	return &Result{
		Classification: comparison.Classification,
		ChangedFields:  comparison.ChangedFields,
		PriceChanged:   priceChanged,
	}, nil
}

// Touch records a successful scrape that produced no unit for the listing.
// An empty extraction is still a sighting.
func (p *Pipeline) Touch(ctx context.Context, listingID string, at time.Time) error {
	if err := p.snapshots.ApplyMinimalTouch(ctx, listingID, at); err != nil {
		return fmt.Errorf("failed to touch snapshot for %s: %w", listingID, err)
	}
	return nil
}

func (p *Pipeline) buildSnapshot(ctx context.Context, listing *models.ListingSource, unit *models.UnitRecord, at time.Time) *models.PropertySnapshot {
	normalized := p.normalizer.Normalize(unit)
	reference := p.market.ReferenceRent(ctx, listing, unit)

	return &models.PropertySnapshot{
		ListingID:       listing.ID,
		Price:           unit.Price,
		Available:       unit.Available,
		Bedrooms:        unit.Bedrooms,
		Bathrooms:       unit.Bathrooms,
		SquareFeet:      unit.SquareFeet,
		ConcessionText:  unit.ConcessionText,
		Title:           unit.Title,
		Address:         unit.Address,
		Amenities:       unit.Amenities,
		EffectivePrice:  normalized.EffectivePrice,
		ConcessionValue: normalized.ConcessionValue,
		Urgency:         normalized.Urgency,
		MarketPosition:  p.normalizer.PositionFor(normalized.EffectivePrice, reference),
		FirstSeenAt:     at,
		LastSeenAt:      at,
		UpdatedAt:       at,
	}
}
