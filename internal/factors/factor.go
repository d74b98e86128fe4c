package factors

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Algorithm tags used for registry lookup.
const (
	AlgorithmFixed     = "fixed"
	AlgorithmLinear    = "linear"
	AlgorithmNormalize = "normalize"
	AlgorithmThreshold = "threshold"
	AlgorithmValue     = "value"
)

// Normalize method tags.
const (
	MethodLinear = "linear"
	MethodLog    = "log"
)

// DefaultPrecision is the number of decimal places weights are rounded to
// when a config does not say otherwise.
const DefaultPrecision int32 = 2

// ValueArg is the argument key the bare algorithms read their input from.
const ValueArg = "value"

// Factor maps a bundle of named observations to a weight.
type Factor interface {
	Name() string
	Weight(args Args) (WeightResult, error)
}

// WeightResult is one factor's audited contribution.
type WeightResult struct {
	Value    any
	Weight   decimal.Decimal
	Children map[string]WeightResult
}

// MarshalJSON renders the weight as a fixed-point string so quantized
// trailing zeros survive ("10.00" rather than "10").
func (r WeightResult) MarshalJSON() ([]byte, error) {
	type wire struct {
		Value    any                     `json:"value"`
		Weight   string                  `json:"weight"`
		Children map[string]WeightResult `json:"children,omitempty"`
	}
	return json.Marshal(wire{
		Value:    r.Value,
		Weight:   FormatDecimal(r.Weight),
		Children: r.Children,
	})
}

// FormatDecimal prints d keeping every digit of its exponent.
func FormatDecimal(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// Quantize rounds d to precision places using round-half-to-even.
func Quantize(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.RoundBank(precision)
}

// base carries what every algorithm shares.
type base struct {
	name      string
	algorithm string
	precision int32
}

func newBase(name, algorithm string, precision int32) base {
	if precision < 0 {
		precision = DefaultPrecision
	}
	return base{name: name, algorithm: algorithm, precision: precision}
}

func (b base) Name() string      { return b.name }
func (b base) Algorithm() string { return b.algorithm }
func (b base) Precision() int32  { return b.precision }

func (b base) quantize(d decimal.Decimal) decimal.Decimal {
	return Quantize(d, b.precision)
}
