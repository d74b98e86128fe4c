package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/Pow2/internal/cpu"
	"github.com/MikeSquared-Agency/Pow2/internal/engine"
)

type CPUHandler struct {
	engine  *engine.Engine
	timeout time.Duration
}

func NewCPUHandler(e *engine.Engine, timeout time.Duration) *CPUHandler {
	return &CPUHandler{engine: e, timeout: timeout}
}

type CalculateRequest struct {
	RequestID    string               `json:"request_id,omitempty"`
	Now          *time.Time           `json:"now,omitempty"`
	Domains      map[string][]float64 `json:"domains,omitempty"`
	RareBalances []map[int64][]int64  `json:"rare_balances,omitempty"`
	EntityID     string               `json:"entity_id,omitempty"`
	Inputs       map[string]any       `json:"inputs"`
}

type CalculateResponse struct {
	RequestID string      `json:"request_id"`
	Season    string      `json:"season"`
	Now       time.Time   `json:"now"`
	EntityID  string      `json:"entity_id,omitempty"`
	Result    *cpu.Result `json:"result"`
}

func (h *CPUHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Kind: engine.KindInvalidInput})
		return
	}
	if req.Inputs == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "inputs is required", Kind: engine.KindInvalidInput})
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()
	resp, err := h.engine.Calculate(ctx, engine.Request{
		RequestID:    req.RequestID,
		Season:       chi.URLParam(r, "slug"),
		Now:          req.Now,
		Domains:      req.Domains,
		RareBalances: req.RareBalances,
		Entities:     []engine.Entity{{ID: req.EntityID, Inputs: req.Inputs}},
	}, engine.SourceAPI)
	if err != nil {
		writeError(w, err)
		return
	}
	res := resp.Results[0]
	if err := res.Err(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CalculateResponse{
		RequestID: resp.RequestID,
		Season:    resp.Season,
		Now:       resp.Now,
		EntityID:  res.ID,
		Result:    res.Result,
	})
}

func (h *CPUHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req engine.Request
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Kind: engine.KindInvalidInput})
		return
	}
	req.Season = chi.URLParam(r, "slug")

	ctx, cancel := h.context(r)
	defer cancel()
	resp, err := h.engine.Calculate(ctx, req, engine.SourceAPI)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CPUHandler) context(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.timeout)
}
