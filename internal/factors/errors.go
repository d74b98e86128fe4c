package factors

import "errors"

// Errors returned by factor construction, registry lookup and evaluation.
// Call sites wrap them with context; match with errors.Is.
var (
	ErrConfiguration         = errors.New("invalid factor configuration")
	ErrUnknownImplementation = errors.New("unknown factor implementation")
	ErrInvalidInput          = errors.New("invalid input")
	ErrValueNotFound         = errors.New("value not found")
	ErrBelowThreshold        = errors.New("value below minimum threshold")
	ErrAlphaSearchExhausted  = errors.New("alpha search exhausted")
)
