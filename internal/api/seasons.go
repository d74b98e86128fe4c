package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MikeSquared-Agency/Pow2/internal/factors"
	"github.com/MikeSquared-Agency/Pow2/internal/hermes"
	"github.com/MikeSquared-Agency/Pow2/internal/season"
	"github.com/MikeSquared-Agency/Pow2/internal/store"
)

type SeasonsHandler struct {
	seasons *season.Loader
	store   store.Store
	hermes  hermes.Client
}

func NewSeasonsHandler(l *season.Loader, s store.Store, h hermes.Client) *SeasonsHandler {
	return &SeasonsHandler{seasons: l, store: s, hermes: h}
}

type SeasonView struct {
	Slug       string            `json:"slug"`
	Category   string            `json:"category"`
	Image      string            `json:"image,omitempty"`
	Collection season.Collection `json:"collection"`
	Season     season.Meta       `json:"season"`
	StartAt    *time.Time        `json:"start_at,omitempty"`
	Base       decimal.Decimal   `json:"base"`
	Factors    []factors.Node    `json:"factors"`
}

func viewOf(se *season.Season) SeasonView {
	v := SeasonView{
		Slug:       se.Slug,
		Category:   se.Category,
		Image:      se.Image,
		Collection: se.Collection,
		Season:     se.Meta,
		Base:       se.Base,
		Factors:    se.Factors,
	}
	if !se.StartAt.IsZero() {
		t := se.StartAt
		v.StartAt = &t
	}
	return v
}

func (h *SeasonsHandler) List(w http.ResponseWriter, r *http.Request) {
	slugs, err := h.seasons.Slugs(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if slugs == nil {
		slugs = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"seasons": slugs})
}

func (h *SeasonsHandler) Get(w http.ResponseWriter, r *http.Request) {
	se, err := h.seasons.Load(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(se))
}

// Put stores a season document after validating it against the registry.
func (h *SeasonsHandler) Put(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no database configured"})
		return
	}
	slug := chi.URLParam(r, "slug")
	if _, _, err := season.SplitSlug(slug); err != nil {
		writeError(w, err)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || len(body) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "season document is required"})
		return
	}
	se, err := h.seasons.Parser().Parse(slug, body)
	if err != nil {
		// The document is the caller's data here, so configuration errors
		// are the caller's to fix.
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: "configuration"})
		return
	}

	rec := &store.Season{Slug: slug, Document: body, UpdatedBy: r.Header.Get(ClientIDHeader)}
	if err := h.store.PutSeason(r.Context(), rec); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: fmt.Sprintf("store season: %v", err)})
		return
	}
	if h.hermes != nil {
		_ = h.hermes.Publish(hermes.SubjectSeasonUpdated(slug), hermes.SeasonUpdatedEvent{
			Slug:      slug,
			UpdatedBy: rec.UpdatedBy,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, viewOf(se))
}

func (h *SeasonsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no database configured"})
		return
	}
	slug := chi.URLParam(r, "slug")
	existing, err := h.store.GetSeason(r.Context(), slug)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if existing == nil {
		writeError(w, fmt.Errorf("%w: %s", season.ErrNotFound, slug))
		return
	}
	if err := h.store.DeleteSeason(r.Context(), slug); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
