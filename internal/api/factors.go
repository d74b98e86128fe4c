package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Pow2/internal/factors"
)

type FactorsHandler struct {
	registry *factors.Registry
}

func NewFactorsHandler(r *factors.Registry) *FactorsHandler {
	return &FactorsHandler{registry: r}
}

type ImplementationInfo struct {
	Algorithm    string `json:"algorithm,omitempty"`
	Method       string `json:"method,omitempty"`
	Composite    bool   `json:"composite"`
	DateRelative bool   `json:"date_relative"`
}

type FactorInfo struct {
	Name            string               `json:"name"`
	Implementations []ImplementationInfo `json:"implementations"`
}

// ListFactors reports every registered factor in registration order. The
// order of implementations is the order lookups try them in.
func ListFactors(r *factors.Registry) []FactorInfo {
	names := r.Names()
	out := make([]FactorInfo, 0, len(names))
	for _, name := range names {
		info := FactorInfo{Name: name}
		for _, d := range r.Implementations(name) {
			info.Implementations = append(info.Implementations, ImplementationInfo{
				Algorithm:    d.Algorithm,
				Method:       d.Method,
				Composite:    d.Composite(),
				DateRelative: d.DateRelative,
			})
		}
		out = append(out, info)
	}
	return out
}

func (h *FactorsHandler) List(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ListFactors(h.registry))
}
