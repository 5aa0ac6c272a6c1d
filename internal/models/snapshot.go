package models

import "time"

// ConcessionUrgency classifies how aggressive a detected concession is
// relative to the base rent.
type ConcessionUrgency string

const (
	UrgencyNone       ConcessionUrgency = "none"
	UrgencyStandard   ConcessionUrgency = "standard"
	UrgencyAggressive ConcessionUrgency = "aggressive"
	UrgencyDesperate  ConcessionUrgency = "desperate"
)

// MarketPosition compares the effective price against an external market
// reference figure.
type MarketPosition string

const (
	PositionBelowMarket MarketPosition = "below_market"
	PositionAtMarket    MarketPosition = "at_market"
	PositionAboveMarket MarketPosition = "above_market"
)

// PropertySnapshot is the current known field-state of a listing. It is owned
// exclusively by the persistence pipeline: overwritten in place on significant
// change, touched (timestamp-only) otherwise.
type PropertySnapshot struct {
	ListingID string `badgerhold:"key"`

	// Significant fields: a change here triggers a full update.
	Price          float64
	Available      bool
	Bedrooms       float64
	Bathrooms      float64
	SquareFeet     int
	ConcessionText string

	// Cosmetic / derived fields.
	Title           string
	Address         string
	Amenities       []string
	EffectivePrice  float64
	ConcessionValue float64
	Urgency         ConcessionUrgency
	MarketPosition  MarketPosition

	// Housekeeping fields, always excluded from change comparison.
	FirstSeenAt time.Time
	LastSeenAt  time.Time
	ScrapeCount int
	UpdatedAt   time.Time
}

// PriceDirection labels the direction of a recorded price change.
type PriceDirection string

const (
	PriceIncreased PriceDirection = "increased"
	PriceDecreased PriceDirection = "decreased"
)

// PriceHistoryEntry is an append-only fact recording one detected price
// change. Entries are never mutated or deleted.
type PriceHistoryEntry struct {
	ID         string `badgerhold:"key"`
	ListingID  string
	Price      float64
	Direction  PriceDirection
	RecordedAt time.Time
}

// UnitRecord is the normalized result shape every extraction strategy funnels
// to: one candidate unit parsed from a listing page.
type UnitRecord struct {
	Title           string   `json:"title"`
	Address         string   `json:"address"`
	Price           float64  `json:"price"`
	Bedrooms        float64  `json:"bedrooms"`
	Bathrooms       float64  `json:"bathrooms"`
	SquareFeet      int      `json:"sqft"`
	Available       bool     `json:"available"`
	Amenities       []string `json:"amenities"`
	ConcessionText  string   `json:"concession_text"`
	LeaseTermMonths int      `json:"lease_term_months"`
}
