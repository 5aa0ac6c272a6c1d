package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rentradar/internal/common"
	"github.com/ternarybob/rentradar/internal/interfaces"
	"github.com/ternarybob/rentradar/internal/models"
)

// Governor admits or denies extraction work against the daily cost ledger.
// Denial is a pause, not a failure: denied work stays queued for the next
// day's budget.
type Governor struct {
	cfg    *common.BudgetConfig
	ledger interfaces.LedgerStorage
	logger arbor.ILogger
}

func NewGovernor(cfg *common.BudgetConfig, ledger interfaces.LedgerStorage, logger arbor.ILogger) *Governor {
	return &Governor{
		cfg:    cfg,
		ledger: ledger,
		logger: logger,
	}
}

// Admit checks whether an estimated spend fits under today's remaining
// budget. Returns ErrBudgetExceeded when it does not; the override flag
// bypasses the cap entirely.
func (g *Governor) Admit(ctx context.Context, now time.Time, estimateUSD float64) error {
	if g.cfg.Override {
		return nil
	}

	entry, err := g.ledger.ReadCostLedger(ctx, models.LedgerDate(now))
	if err != nil {
		return fmt.Errorf("failed to read cost ledger for admission: %w", err)
	}

	if entry.TotalCostUSD+estimateUSD > g.cfg.DailyCapUSD {
		g.logger.Warn().
			Float64("spent_usd", entry.TotalCostUSD).
			Float64("estimate_usd", estimateUSD).
			Float64("cap_usd", g.cfg.DailyCapUSD).
			Msg("Daily cost cap reached, pausing extraction")
		return interfaces.ErrBudgetExceeded
	}
	return nil
}

// RecordExtraction folds one completed extraction into today's ledger.
func (g *Governor) RecordExtraction(ctx context.Context, now time.Time, costUSD float64) error {
	return g.ledger.IncrementCostLedger(ctx, models.LedgerDate(now), 1, 1, costUSD)
}

// Spent returns today's ledger entry.
func (g *Governor) Spent(ctx context.Context, now time.Time) (*models.CostLedgerEntry, error) {
	return g.ledger.ReadCostLedger(ctx, models.LedgerDate(now))
}
