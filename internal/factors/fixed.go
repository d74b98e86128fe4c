package factors

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Fixed looks the value up in an exact-match table.
type Fixed[K comparable] struct {
	base
	weights map[K]decimal.Decimal
}

// NewFixed fails with ErrConfiguration when the table is empty.
func NewFixed[K comparable](name string, weights map[K]decimal.Decimal, precision int32) (*Fixed[K], error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("%w: %s: weights must be provided", ErrConfiguration, name)
	}
	table := make(map[K]decimal.Decimal, len(weights))
	for k, w := range weights {
		table[k] = w
	}
	return &Fixed[K]{base: newBase(name, AlgorithmFixed, precision), weights: table}, nil
}

func (f *Fixed[K]) GetWeight(value K) (WeightResult, error) {
	w, ok := f.weights[value]
	if !ok {
		return WeightResult{}, fmt.Errorf("%w: %s: %v not in weight keys", ErrValueNotFound, f.name, value)
	}
	return WeightResult{Value: value, Weight: f.quantize(w)}, nil
}

// Weight reads ValueArg and requires it to have the table's key type.
func (f *Fixed[K]) Weight(args Args) (WeightResult, error) {
	v, ok := args[ValueArg]
	if !ok {
		return WeightResult{}, missingArg(ValueArg)
	}
	key, ok := v.(K)
	if !ok {
		return WeightResult{}, fmt.Errorf("%w: %s: value has type %T", ErrInvalidInput, f.name, v)
	}
	return f.GetWeight(key)
}

func missingArg(key string) error {
	return fmt.Errorf("%w: missing argument %q", ErrInvalidInput, key)
}
