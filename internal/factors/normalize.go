package factors

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
)

// AlphaSearch bounds the scan for a smoothing constant that produces the
// requested max/min weight ratio.
type AlphaSearch struct {
	Ratio     float64
	MinAlpha  float64
	MaxAlpha  float64
	AlphaStep float64
	Tolerance float64
}

// DefaultAlphaSearch scans (0, 10) in steps of 0.1 with a tolerance of 0.1.
func DefaultAlphaSearch(ratio float64) AlphaSearch {
	return AlphaSearch{Ratio: ratio, MinAlpha: 0, MaxAlpha: 10, AlphaStep: 0.1, Tolerance: 0.1}
}

// NormalizeOptions configures a Normalize factor. When Alpha is nil the
// smoothing constant is searched for with Search. A nil Precision means
// DefaultPrecision.
type NormalizeOptions struct {
	Method    string
	Alpha     *float64
	Search    AlphaSearch
	Precision *int32
}

// Normalize weighs each value of a finite domain by its share of the
// smoothed domain total, rescaled so the smallest weight is exactly 1.
//
// The domain may be supplied at construction or later through LoadWeights;
// until then every lookup misses. LoadWeights mutates the factor, so an
// instance must not be shared between concurrent calculations.
type Normalize struct {
	base
	method  string
	alpha   *float64
	search  AlphaSearch
	weights map[float64]float64
}

func NewNormalize(name string, values []float64, opts NormalizeOptions) (*Normalize, error) {
	if opts.Method == "" {
		opts.Method = MethodLinear
	}
	if opts.Method != MethodLinear && opts.Method != MethodLog {
		return nil, fmt.Errorf("%w: %s: invalid normalization method %q", ErrConfiguration, name, opts.Method)
	}
	if opts.Alpha == nil {
		if opts.Search.Ratio <= 0 {
			return nil, fmt.Errorf("%w: %s: ratio is required when alpha is not set", ErrConfiguration, name)
		}
		if opts.Search.AlphaStep <= 0 {
			return nil, fmt.Errorf("%w: %s: alpha_step must be positive", ErrConfiguration, name)
		}
	}

	precision := DefaultPrecision
	if opts.Precision != nil {
		precision = *opts.Precision
	}
	f := &Normalize{
		base:   newBase(name, AlgorithmNormalize, precision),
		method: opts.Method,
		alpha:  opts.Alpha,
		search: opts.Search,
	}
	if len(values) > 0 {
		if _, err := f.LoadWeights(values); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Alpha reports the smoothing constant in use, once known.
func (f *Normalize) Alpha() (float64, bool) {
	if f.alpha == nil {
		return 0, false
	}
	return *f.alpha, true
}

func (f *Normalize) Method() string { return f.method }

// Loaded reports whether a domain has been loaded.
func (f *Normalize) Loaded() bool { return f.weights != nil }

// Weights returns a copy of the unrounded domain weights.
func (f *Normalize) Weights() map[float64]float64 {
	out := make(map[float64]float64, len(f.weights))
	for k, v := range f.weights {
		out[k] = v
	}
	return out
}

// LoadWeights replaces the domain. A searched alpha is adopted on the first
// successful load and reused afterwards.
func (f *Normalize) LoadWeights(values []float64) (map[float64]float64, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s: values must be provided", ErrConfiguration, f.name)
	}
	alpha, err := f.findAlpha(values)
	if err != nil {
		return nil, err
	}
	weights, err := normalizeWeights(values, f.method, alpha)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.name, err)
	}
	f.weights = zipWeights(values, weights)
	return f.Weights(), nil
}

// findAlpha scans [MinAlpha, MaxAlpha) in AlphaStep increments. An alpha of
// exactly 0 is never evaluated.
func (f *Normalize) findAlpha(values []float64) (float64, error) {
	if f.alpha != nil {
		return *f.alpha, nil
	}
	s := f.search
	for alpha := s.MinAlpha; alpha < s.MaxAlpha; alpha += s.AlphaStep {
		if alpha == 0 {
			continue
		}
		weights, err := normalizeWeights(values, f.method, alpha)
		if err != nil {
			continue
		}
		ratio := floats.Max(weights) / floats.Min(weights)
		if math.Abs(ratio-s.Ratio) < s.Tolerance {
			found := alpha
			f.alpha = &found
			return alpha, nil
		}
	}
	return 0, fmt.Errorf("%w: %s: no alpha in [%v, %v) gives ratio %v within %v",
		ErrAlphaSearchExhausted, f.name, s.MinAlpha, s.MaxAlpha, s.Ratio, s.Tolerance)
}

func (f *Normalize) GetWeight(value float64) (WeightResult, error) {
	w, ok := f.weights[value]
	if !ok {
		return WeightResult{}, fmt.Errorf("%w: %s: %v not in weight domain", ErrValueNotFound, f.name, value)
	}
	return WeightResult{Value: value, Weight: f.quantize(decimal.NewFromFloat(w))}, nil
}

func (f *Normalize) Weight(args Args) (WeightResult, error) {
	v, err := args.Decimal(ValueArg)
	if err != nil {
		return WeightResult{}, err
	}
	result, err := f.GetWeight(v.InexactFloat64())
	if err != nil {
		return WeightResult{}, err
	}
	result.Value = v
	return result, nil
}

// normalizeWeights returns, position by position, the transformed values
// divided by their sum and rescaled by the smallest share.
func normalizeWeights(values []float64, method string, alpha float64) ([]float64, error) {
	data := make([]float64, len(values))
	switch method {
	case MethodLinear:
		copy(data, values)
	case MethodLog:
		for i, v := range values {
			data[i] = math.Log1p(v)
		}
	default:
		return nil, fmt.Errorf("%w: invalid normalization method %q", ErrConfiguration, method)
	}
	floats.AddConst(alpha, data)

	if lowest := floats.Min(data); !(lowest > 0) {
		return nil, fmt.Errorf("%w: transformed values must be positive (min %v, alpha %v)", ErrConfiguration, lowest, alpha)
	}
	sum := floats.Sum(data)
	for i := range data {
		data[i] /= sum
	}
	smallest := floats.Min(data)
	for i := range data {
		data[i] /= smallest
	}
	return data, nil
}

func zipWeights(values, weights []float64) map[float64]float64 {
	out := make(map[float64]float64, len(values))
	for i, v := range values {
		out[v] = weights[i]
	}
	return out
}
