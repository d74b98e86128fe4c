package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/MikeSquared-Agency/Pow2/internal/engine"
)

const maxBodyBytes = 8 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error(), Kind: engine.Kind(err)})
}

// statusFor maps calculation errors onto HTTP statuses. Bad caller data is
// 422; a broken season document is a server-side fault.
func statusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch engine.Kind(err) {
	case engine.KindSeasonNotFound:
		return http.StatusNotFound
	case engine.KindInvalidSlug:
		return http.StatusBadRequest
	case engine.KindInvalidInput, engine.KindValueNotFound, engine.KindBelowThreshold, engine.KindAlphaSearchExhausted:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// decodeJSON keeps numbers as json.Number so decimal inputs survive
// without float rounding.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	return dec.Decode(v)
}
