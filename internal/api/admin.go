package api

import (
	"net/http"
	"strconv"

	"github.com/MikeSquared-Agency/Pow2/internal/store"
)

type AdminHandler struct {
	store store.Store
}

func NewAdminHandler(s store.Store) *AdminHandler {
	return &AdminHandler{store: s}
}

// Calculations lists recorded calculations, newest first.
func (h *AdminHandler) Calculations(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no database configured"})
		return
	}
	q := r.URL.Query()
	filter := store.CalculationFilter{
		SeasonSlug: q.Get("season"),
		EntityID:   q.Get("entity"),
	}
	if v := q.Get("status"); v != "" {
		st := store.CalculationStatus(v)
		filter.Status = &st
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	calcs, err := h.store.ListCalculations(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if calcs == nil {
		calcs = []*store.Calculation{}
	}
	writeJSON(w, http.StatusOK, calcs)
}
