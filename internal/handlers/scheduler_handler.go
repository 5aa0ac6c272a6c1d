package handlers

import (
	"net/http"
	"strconv"

	"github.com/ternarybob/rentradar/internal/interfaces"
	"github.com/ternarybob/rentradar/internal/models"
)

// EnableToggler flips the scheduler's enabled flag at runtime.
type EnableToggler interface {
	SetEnabled(enabled bool)
}

// SchedulerHandler handles scheduler endpoints.
type SchedulerHandler struct {
	scheduler interfaces.SchedulerService
	toggler   EnableToggler
}

func NewSchedulerHandler(scheduler interfaces.SchedulerService, toggler EnableToggler) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler: scheduler,
		toggler:   toggler,
	}
}

// RunHandler triggers a batch immediately. Optional query parameters narrow
// the batch: size, site, tier, min_score.
func (h *SchedulerHandler) RunHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			WriteError(w, http.StatusBadRequest, "invalid size parameter")
			return
		}
		size = parsed
	}

	filter := interfaces.ListingFilter{
		Site: r.URL.Query().Get("site"),
		Tier: models.PriorityTier(r.URL.Query().Get("tier")),
	}
	if raw := r.URL.Query().Get("min_score"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid min_score parameter")
			return
		}
		filter.MinScore = parsed
	}

	result, err := h.scheduler.RunBatch(r.Context(), size, filter)
	if err != nil {
		WriteError(w, http.StatusConflict, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// StatusHandler reports the scheduler's current state.
func (h *SchedulerHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	status, err := h.scheduler.Status(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, status)
}

// EnableHandler flips the scheduler's enabled flag.
func (h *SchedulerHandler) EnableHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	enabled, err := strconv.ParseBool(r.URL.Query().Get("enabled"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "enabled parameter must be true or false")
		return
	}

	h.toggler.SetEnabled(enabled)
	WriteJSON(w, http.StatusOK, map[string]bool{"enabled": enabled})
}
