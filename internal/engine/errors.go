package engine

import (
	"errors"

	"github.com/MikeSquared-Agency/Pow2/internal/factors"
	"github.com/MikeSquared-Agency/Pow2/internal/season"
)

// Error kinds reported to callers and used as metric labels.
const (
	KindInvalidInput          = "invalid_input"
	KindValueNotFound         = "value_not_found"
	KindBelowThreshold        = "below_threshold"
	KindConfiguration         = "configuration"
	KindUnknownImplementation = "unknown_implementation"
	KindAlphaSearchExhausted  = "alpha_search_exhausted"
	KindSeasonNotFound        = "season_not_found"
	KindInvalidSlug           = "invalid_slug"
	KindInternal              = "internal"
)

// Kind classifies err by the sentinel it wraps.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, season.ErrNotFound):
		return KindSeasonNotFound
	case errors.Is(err, season.ErrInvalidSlug):
		return KindInvalidSlug
	case errors.Is(err, factors.ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, factors.ErrValueNotFound):
		return KindValueNotFound
	case errors.Is(err, factors.ErrBelowThreshold):
		return KindBelowThreshold
	case errors.Is(err, factors.ErrAlphaSearchExhausted):
		return KindAlphaSearchExhausted
	case errors.Is(err, factors.ErrUnknownImplementation):
		return KindUnknownImplementation
	case errors.Is(err, factors.ErrConfiguration):
		return KindConfiguration
	}
	return KindInternal
}

// InputError reports whether err was caused by the caller's data rather
// than by configuration.
func InputError(err error) bool {
	switch Kind(err) {
	case KindInvalidInput, KindValueNotFound, KindBelowThreshold:
		return true
	}
	return false
}
