package factors

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Threshold is a descending step function over breakpoints.
//
// Only the thresholds are sorted: weights[i] belongs to the i-th highest
// threshold, whatever order the thresholds were given in.
type Threshold struct {
	base
	thresholds []decimal.Decimal
	weights    []decimal.Decimal
}

// NewThreshold sorts thresholds highest first with a stable sort, so equal
// thresholds keep their input order. weights keep their input positions.
func NewThreshold(name string, thresholds, weights []decimal.Decimal, precision int32) (*Threshold, error) {
	if len(thresholds) != len(weights) {
		return nil, fmt.Errorf("%w: %s: thresholds and weights must have the same length", ErrConfiguration, name)
	}
	if len(thresholds) == 0 {
		return nil, fmt.Errorf("%w: %s: thresholds and weights must be provided", ErrConfiguration, name)
	}
	sorted := append([]decimal.Decimal(nil), thresholds...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].GreaterThan(sorted[j])
	})
	return &Threshold{
		base:       newBase(name, AlgorithmThreshold, precision),
		thresholds: sorted,
		weights:    append([]decimal.Decimal(nil), weights...),
	}, nil
}

// Thresholds returns the breakpoints, highest first.
func (f *Threshold) Thresholds() []decimal.Decimal {
	return append([]decimal.Decimal(nil), f.thresholds...)
}

// Weights returns the weights in their configured order.
func (f *Threshold) Weights() []decimal.Decimal {
	return append([]decimal.Decimal(nil), f.weights...)
}

func (f *Threshold) GetWeight(value decimal.Decimal) (WeightResult, error) {
	for i, t := range f.thresholds {
		if value.GreaterThanOrEqual(t) {
			return WeightResult{Value: value, Weight: f.quantize(f.weights[i])}, nil
		}
	}
	lowest := f.thresholds[len(f.thresholds)-1]
	return WeightResult{}, fmt.Errorf("%w: %s: %s less than %s", ErrBelowThreshold, f.name, value, lowest)
}

func (f *Threshold) Weight(args Args) (WeightResult, error) {
	v, err := args.Decimal(ValueArg)
	if err != nil {
		return WeightResult{}, err
	}
	return f.GetWeight(v)
}
