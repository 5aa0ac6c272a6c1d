// Package pricing turns advertised rents and concession free text into
// comparable net-effective prices.
package pricing

import (
	"math"

	"github.com/ternarybob/rentradar/internal/common"
	"github.com/ternarybob/rentradar/internal/models"
)

// Normalized is the pricing view derived from one extracted unit.
type Normalized struct {
	EffectivePrice  float64
	ConcessionValue float64
	Urgency         models.ConcessionUrgency
	Concessions     []Concession
}

// Normalizer converts advertised prices plus concession text into
// net-effective monthly prices. Concessions never stack; when several are
// detected only the single largest discount applies.
type Normalizer struct {
	cfg *common.PricingConfig
}

func NewNormalizer(cfg *common.PricingConfig) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// Normalize computes the net-effective price for a unit. A months-free offer
// is amortized over the lease term; a percent-off offer applies directly.
// Flat concessions such as waived fees carry no computable dollar value and
// leave the effective price at the advertised price.
func (n *Normalizer) Normalize(unit *models.UnitRecord) Normalized {
	base := unit.Price
	result := Normalized{
		EffectivePrice: base,
		Urgency:        models.UrgencyNone,
		Concessions:    DetectConcessions(unit.ConcessionText),
	}
	if base <= 0 {
		return result
	}

	leaseMonths := unit.LeaseTermMonths
	if leaseMonths <= 0 {
		leaseMonths = DetectLeaseTerm(unit.ConcessionText)
	}
	if leaseMonths <= 0 {
		leaseMonths = n.cfg.DefaultLeaseMonths
	}

	// Pick the single largest discount rather than stacking offers.
	bestValue := 0.0
	flatDetected := false
	for _, c := range result.Concessions {
		switch c.Type {
		case ConcessionMonthsFree:
			months := c.Months
			if months > float64(leaseMonths) {
				months = float64(leaseMonths)
			}
			if value := base * months / float64(leaseMonths); value > bestValue {
				bestValue = value
			}
		case ConcessionPercentOff:
			if value := base * c.Percent / 100; value > bestValue {
				bestValue = value
			}
		default:
			flatDetected = true
		}
	}

	if bestValue > 0 {
		result.EffectivePrice = math.Round(base - bestValue)
		result.ConcessionValue = base - result.EffectivePrice
	}

	result.Urgency = n.urgencyFor(result.ConcessionValue, base, flatDetected)
	return result
}

// urgencyFor grades how hard a landlord is pushing based on the concession's
// share of the advertised price. A flat concession with no computable dollar
// value still signals standard urgency.
func (n *Normalizer) urgencyFor(value, base float64, flatDetected bool) models.ConcessionUrgency {
	if base <= 0 {
		return models.UrgencyNone
	}
	ratio := value / base
	switch {
	case ratio >= n.cfg.DesperateThreshold:
		return models.UrgencyDesperate
	case ratio >= n.cfg.AggressiveThreshold:
		return models.UrgencyAggressive
	case ratio > 0:
		return models.UrgencyStandard
	case flatDetected:
		return models.UrgencyStandard
	default:
		return models.UrgencyNone
	}
}

// PositionFor places an effective price relative to a market reference rent.
// Prices within the configured band of the reference count as at market; a
// zero reference means no market data and defaults to at market.
func (n *Normalizer) PositionFor(effectivePrice, marketReference float64) models.MarketPosition {
	if marketReference <= 0 || effectivePrice <= 0 {
		return models.PositionAtMarket
	}
	band := marketReference * n.cfg.MarketBandPct
	switch {
	case effectivePrice < marketReference-band:
		return models.PositionBelowMarket
	case effectivePrice > marketReference+band:
		return models.PositionAboveMarket
	default:
		return models.PositionAtMarket
	}
}
