// Package app wires configuration, storage, services and handlers into one
// application instance.
package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rentradar/internal/common"
	"github.com/ternarybob/rentradar/internal/handlers"
	"github.com/ternarybob/rentradar/internal/interfaces"
	"github.com/ternarybob/rentradar/internal/services/budget"
	"github.com/ternarybob/rentradar/internal/services/dispatch"
	"github.com/ternarybob/rentradar/internal/services/extractor"
	"github.com/ternarybob/rentradar/internal/services/llm"
	"github.com/ternarybob/rentradar/internal/services/persist"
	"github.com/ternarybob/rentradar/internal/services/pricing"
	"github.com/ternarybob/rentradar/internal/services/router"
	"github.com/ternarybob/rentradar/internal/services/scheduler"
	"github.com/ternarybob/rentradar/internal/storage/badger"
)

// App holds all application components and dependencies.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager    interfaces.StorageManager
	ExtractionService interfaces.ExtractionService
	SchedulerService  *scheduler.Service
	Dispatcher        *dispatch.Dispatcher

	// HTTP handlers
	SchedulerHandler *handlers.SchedulerHandler
	ListingHandler   *handlers.ListingHandler
	LedgerHandler    *handlers.LedgerHandler
	StatusHandler    *handlers.StatusHandler
}

// New builds the application: storage, recovery, seed loading, services and
// handlers, in dependency order.
func New(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (*App, error) {
	storageManager, err := badger.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	app := &App{
		Config:         cfg,
		Logger:         logger,
		StorageManager: storageManager,
	}

	if err := app.recoverFromCrash(ctx); err != nil {
		storageManager.Close()
		return nil, err
	}

	if cfg.Sources.Dir != "" {
		if _, err := badger.LoadSourcesFromDir(ctx, storageManager.Listings(), cfg.Sources.Dir, logger); err != nil {
			storageManager.Close()
			return nil, fmt.Errorf("failed to load listing sources: %w", err)
		}
	}

	clients, err := llm.NewClients(ctx, &cfg.Claude, &cfg.Gemini, &cfg.Budget, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize extraction clients: %w", err)
	}

	classifier := router.NewClassifier(clients.Classifier(), logger)
	extraction, err := extractor.NewService(&cfg.Fetcher, classifier, clients, cfg.Budget.ClassifyCostUSD, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize extraction service: %w", err)
	}
	app.ExtractionService = extraction

	governor := budget.NewGovernor(&cfg.Budget, storageManager.Ledger(), logger)
	normalizer := pricing.NewNormalizer(&cfg.Pricing)
	pipeline := persist.NewPipeline(storageManager.Snapshots(), normalizer, nil, logger)

	app.Dispatcher = dispatch.NewDispatcher(cfg, storageManager, extraction, governor, pipeline, logger)
	app.SchedulerService = scheduler.NewService(&cfg.Scheduler, app.Dispatcher, storageManager.Listings(), logger)

	app.SchedulerHandler = handlers.NewSchedulerHandler(app.SchedulerService, app.SchedulerService)
	app.ListingHandler = handlers.NewListingHandler(storageManager.Listings(), storageManager.Snapshots())
	app.LedgerHandler = handlers.NewLedgerHandler(storageManager.Ledger())
	app.StatusHandler = handlers.NewStatusHandler()

	return app, nil
}

// recoverFromCrash fails any jobs left non-terminal by a previous process and
// clears orphaned listing claims, so a restart never wedges listings in a
// permanently in-flight state.
func (a *App) recoverFromCrash(ctx context.Context) error {
	failed, err := a.StorageManager.Jobs().MarkProcessingJobsFailed(ctx, "interrupted by restart")
	if err != nil {
		return fmt.Errorf("startup job recovery failed: %w", err)
	}

	released, err := a.StorageManager.Listings().ReleaseAllClaims(ctx)
	if err != nil {
		return fmt.Errorf("startup claim recovery failed: %w", err)
	}

	if failed > 0 || released > 0 {
		a.Logger.Info().
			Int("jobs_failed", failed).
			Int("claims_released", released).
			Msg("Recovered state from previous run")
	}
	return nil
}

// Start begins background work.
func (a *App) Start() error {
	return a.SchedulerService.Start()
}

// Shutdown stops background work and closes storage.
func (a *App) Shutdown() error {
	if err := a.SchedulerService.Stop(); err != nil {
		a.Logger.Warn().Err(err).Msg("Scheduler stop failed")
	}
	if err := a.StorageManager.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return nil
}
