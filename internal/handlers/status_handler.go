package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/rentradar/internal/common"
)

// StatusHandler serves health and version endpoints.
type StatusHandler struct {
	startedAt time.Time
}

func NewStatusHandler() *StatusHandler {
	return &StatusHandler{startedAt: time.Now().UTC()}
}

func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"version":        common.GetVersion(),
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
	})
}
