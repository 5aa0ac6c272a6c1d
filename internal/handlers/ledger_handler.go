package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/rentradar/internal/interfaces"
	"github.com/ternarybob/rentradar/internal/models"
)

// LedgerHandler serves the daily cost ledger.
type LedgerHandler struct {
	ledger interfaces.LedgerStorage
}

func NewLedgerHandler(ledger interfaces.LedgerStorage) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// GetHandler returns the ledger entry for a date. GET /api/ledger?date=YYYY-MM-DD
// defaults to today.
func (h *LedgerHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = models.LedgerDate(time.Now().UTC())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	entry, err := h.ledger.ReadCostLedger(r.Context(), date)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, entry)
}
