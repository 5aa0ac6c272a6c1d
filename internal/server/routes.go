package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Scheduler
	mux.HandleFunc("/api/scheduler/run", s.app.SchedulerHandler.RunHandler)       // POST - trigger a batch
	mux.HandleFunc("/api/scheduler/status", s.app.SchedulerHandler.StatusHandler) // GET - scheduler state
	mux.HandleFunc("/api/scheduler/enable", s.app.SchedulerHandler.EnableHandler) // POST - toggle scheduling

	// API routes - Listings
	mux.HandleFunc("/api/listings", s.app.ListingHandler.ListHandler)   // GET - list tracked listings
	mux.HandleFunc("/api/listings/", s.app.ListingHandler.DetailRoutes) // GET /{id}, GET /{id}/history

	// API routes - Cost ledger
	mux.HandleFunc("/api/ledger", s.app.LedgerHandler.GetHandler) // GET - daily spend

	// Health check
	mux.HandleFunc("/health", s.app.StatusHandler.HealthHandler)

	return mux
}
