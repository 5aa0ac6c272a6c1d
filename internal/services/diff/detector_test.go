package diff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/rentradar/internal/models"
)

func baseSnapshot() *models.PropertySnapshot {
	return &models.PropertySnapshot{
		ListingID:      "bayview:unit-204",
		Price:          2000,
		Available:      true,
		Bedrooms:       2,
		Bathrooms:      1,
		SquareFeet:     950,
		ConcessionText: "1 month free",
		Title:          "Bayview Apartments Unit 204",
		Address:        "12 Harbor St",
		Amenities:      []string{"gym", "parking"},
		EffectivePrice: 1833,
		Urgency:        models.UrgencyAggressive,
		MarketPosition: models.PositionAtMarket,
	}
}

func TestCompareNoChange(t *testing.T) {
	old := baseSnapshot()
	new := baseSnapshot()

	got := Compare(old, new)
	assert.Equal(t, ChangeNone, got.Classification)
	assert.Empty(t, got.ChangedFields)
}

func TestCompareFirstSight(t *testing.T) {
	got := Compare(nil, baseSnapshot())
	assert.Equal(t, ChangeSignificant, got.Classification)
}

func TestCompareSignificantFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *models.PropertySnapshot)
		field  string
	}{
		{"price", func(s *models.PropertySnapshot) { s.Price = 2100 }, "price"},
		{"availability", func(s *models.PropertySnapshot) { s.Available = false }, "available"},
		{"bedrooms", func(s *models.PropertySnapshot) { s.Bedrooms = 3 }, "bedrooms"},
		{"bathrooms", func(s *models.PropertySnapshot) { s.Bathrooms = 2 }, "bathrooms"},
		{"square feet", func(s *models.PropertySnapshot) { s.SquareFeet = 1000 }, "square_feet"},
		{"concession text", func(s *models.PropertySnapshot) { s.ConcessionText = "2 months free" }, "concession_text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := baseSnapshot()
			new := baseSnapshot()
			tt.mutate(new)

			got := Compare(old, new)
			assert.Equal(t, ChangeSignificant, got.Classification)
			assert.Contains(t, got.ChangedFields, tt.field)
		})
	}
}

func TestCompareCosmeticFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *models.PropertySnapshot)
		field  string
	}{
		{"title", func(s *models.PropertySnapshot) { s.Title = "Renamed" }, "title"},
		{"address", func(s *models.PropertySnapshot) { s.Address = "14 Harbor St" }, "address"},
		{"amenities", func(s *models.PropertySnapshot) { s.Amenities = []string{"gym"} }, "amenities"},
		{"effective price", func(s *models.PropertySnapshot) { s.EffectivePrice = 1900 }, "effective_price"},
		{"urgency", func(s *models.PropertySnapshot) { s.Urgency = models.UrgencyNone }, "urgency"},
		{"market position", func(s *models.PropertySnapshot) { s.MarketPosition = models.PositionBelowMarket }, "market_position"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := baseSnapshot()
			new := baseSnapshot()
			tt.mutate(new)

			got := Compare(old, new)
			assert.Equal(t, ChangeCosmetic, got.Classification)
			assert.Contains(t, got.ChangedFields, tt.field)
		})
	}
}

func TestCompareSignificantWinsOverCosmetic(t *testing.T) {
	old := baseSnapshot()
	new := baseSnapshot()
	new.Price = 1900
	new.Title = "Renamed"

	got := Compare(old, new)
	assert.Equal(t, ChangeSignificant, got.Classification)
	assert.Contains(t, got.ChangedFields, "price")
	assert.Contains(t, got.ChangedFields, "title")
}

func TestCompareIgnoresHousekeeping(t *testing.T) {
	old := baseSnapshot()
	new := baseSnapshot()
	new.LastSeenAt = time.Now()
	new.ScrapeCount = 42
	new.UpdatedAt = time.Now()

	got := Compare(old, new)
	assert.Equal(t, ChangeNone, got.Classification)
}

func TestCompareNilAndEmptyAmenities(t *testing.T) {
	old := baseSnapshot()
	old.Amenities = nil
	new := baseSnapshot()
	new.Amenities = []string{}

	got := Compare(old, new)
	assert.Equal(t, ChangeNone, got.Classification)
}
