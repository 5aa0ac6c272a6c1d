package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/rentradar/internal/interfaces"
	"github.com/ternarybob/rentradar/internal/models"
)

// ListingHandler serves listing sources, their snapshots and price history.
type ListingHandler struct {
	listings  interfaces.ListingStorage
	snapshots interfaces.SnapshotStorage
}

func NewListingHandler(listings interfaces.ListingStorage, snapshots interfaces.SnapshotStorage) *ListingHandler {
	return &ListingHandler{
		listings:  listings,
		snapshots: snapshots,
	}
}

// ListHandler returns listings, most relevant first. GET /api/listings?limit=N
func (h *ListingHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			WriteError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = parsed
	}

	listings, err := h.listings.ListListings(r.Context(), limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(listings),
		"listings": listings,
	})
}

// DetailRoutes dispatches /api/listings/{id} and /api/listings/{id}/history.
func (h *ListingHandler) DetailRoutes(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/listings/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "listing ID is required")
		return
	}

	if id, ok := strings.CutSuffix(path, "/history"); ok {
		h.serveHistory(w, r, id)
		return
	}
	h.serveDetail(w, r, path)
}

func (h *ListingHandler) serveDetail(w http.ResponseWriter, r *http.Request, id string) {
	listing, err := h.listings.GetListing(r.Context(), id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "listing not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response := map[string]interface{}{
		"listing": listing,
	}

	// A listing without a snapshot has simply never been scraped.
	snapshot, err := h.snapshots.GetSnapshot(r.Context(), id)
	if err == nil {
		response["snapshot"] = snapshot
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, response)
}

func (h *ListingHandler) serveHistory(w http.ResponseWriter, r *http.Request, id string) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			WriteError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = parsed
	}

	entries, err := h.snapshots.GetPriceHistory(r.Context(), id, limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []*models.PriceHistoryEntry{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"listing_id": id,
		"count":      len(entries),
		"history":    entries,
	})
}
