// Package budget owns model tier selection and the daily spend ceiling.
package budget

import (
	"github.com/ternarybob/rentradar/internal/common"
	"github.com/ternarybob/rentradar/internal/models"
)

// SelectModel maps a listing's priority score to an extraction-model tier.
// High-value listings justify the expensive model; the long tail runs on the
// cheapest one.
func SelectModel(cfg *common.BudgetConfig, priorityScore float64) models.ModelTier {
	switch {
	case priorityScore >= cfg.PremiumThreshold:
		return models.TierPremium
	case priorityScore >= cfg.StandardThreshold:
		return models.TierStandard
	default:
		return models.TierEconomy
	}
}

// EstimateCost returns the estimated cost of one extraction at a tier,
// classification call included.
func EstimateCost(cfg *common.BudgetConfig, tier models.ModelTier) float64 {
	cost := cfg.ClassifyCostUSD
	switch tier {
	case models.TierPremium:
		cost += cfg.PremiumCostUSD
	case models.TierStandard:
		cost += cfg.StandardCostUSD
	default:
		cost += cfg.EconomyCostUSD
	}
	return cost
}
