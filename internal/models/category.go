package models

import "strings"

// WebsiteCategory is the closed set of website archetypes the extraction
// router recognizes. Classification is decided once at the boundary so
// downstream routing is an exhaustive switch.
type WebsiteCategory string

const (
	CategorySingleProperty  WebsiteCategory = "single_property_site"
	CategoryAggregator      WebsiteCategory = "multi_listing_aggregator"
	CategoryPropertyManager WebsiteCategory = "property_manager"
	CategoryBrokerage       WebsiteCategory = "brokerage"
	CategoryUnknown         WebsiteCategory = "unknown"
)

// ParseWebsiteCategory maps a classifier response onto the closed category
// set. Unrecognized values degrade to CategoryUnknown rather than erroring,
// because routing must never block extraction.
func ParseWebsiteCategory(s string) WebsiteCategory {
	normalized := strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(strings.ToLower(s)), "-", "_"), " ", "_")
	switch WebsiteCategory(normalized) {
	case CategorySingleProperty, CategoryAggregator, CategoryPropertyManager, CategoryBrokerage:
		return WebsiteCategory(normalized)
	default:
		return CategoryUnknown
	}
}

// ModelTier identifies the extraction-model cost/accuracy tier.
type ModelTier string

const (
	TierPremium  ModelTier = "premium"
	TierStandard ModelTier = "standard"
	TierEconomy  ModelTier = "economy"
)
