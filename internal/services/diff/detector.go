// Package diff classifies the delta between a stored snapshot and a freshly
// extracted one. Only the classification leaves this package; persistence
// decides what to do with it.
package diff

import (
	"github.com/ternarybob/rentradar/internal/models"
)

// Classification is the three-way result of comparing snapshots.
type Classification string

const (
	ChangeNone        Classification = "none"
	ChangeCosmetic    Classification = "cosmetic"
	ChangeSignificant Classification = "significant"
)

// Result carries the classification plus the names of the fields that moved,
// for logging and history records.
type Result struct {
	Classification Classification
	ChangedFields  []string
}

// Compare classifies the delta between the stored snapshot and the new one.
// Price, availability, layout and concession text are significant; title,
// address, amenities and derived pricing fields are cosmetic; housekeeping
// timestamps never count. A nil stored snapshot means first sight, which is
// always significant.
func Compare(old, new *models.PropertySnapshot) Result {
	if old == nil {
		return Result{Classification: ChangeSignificant, ChangedFields: []string{"first_seen"}}
	}

	var significant, cosmetic []string

	if old.Price != new.Price {
		significant = append(significant, "price")
	}
	if old.Available != new.Available {
		significant = append(significant, "available")
	}
	if old.Bedrooms != new.Bedrooms {
		significant = append(significant, "bedrooms")
	}
	if old.Bathrooms != new.Bathrooms {
		significant = append(significant, "bathrooms")
	}
	if old.SquareFeet != new.SquareFeet {
		significant = append(significant, "square_feet")
	}
	if old.ConcessionText != new.ConcessionText {
		significant = append(significant, "concession_text")
	}

	if old.Title != new.Title {
		cosmetic = append(cosmetic, "title")
	}
	if old.Address != new.Address {
		cosmetic = append(cosmetic, "address")
	}
	if !stringSlicesEqual(old.Amenities, new.Amenities) {
		cosmetic = append(cosmetic, "amenities")
	}
	if old.EffectivePrice != new.EffectivePrice {
		cosmetic = append(cosmetic, "effective_price")
	}
	if old.ConcessionValue != new.ConcessionValue {
		cosmetic = append(cosmetic, "concession_value")
	}
	if old.Urgency != new.Urgency {
		cosmetic = append(cosmetic, "urgency")
	}
	if old.MarketPosition != new.MarketPosition {
		cosmetic = append(cosmetic, "market_position")
	}

	switch {
	case len(significant) > 0:
		return Result{Classification: ChangeSignificant, ChangedFields: append(significant, cosmetic...)}
	case len(cosmetic) > 0:
		return Result{Classification: ChangeCosmetic, ChangedFields: cosmetic}
	default:
		return Result{Classification: ChangeNone}
	}
}

// stringSlicesEqual treats nil and empty slices as equal; order matters.
func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
