package factors

import (
	"github.com/shopspring/decimal"
)

// Linear interpolates between (minValue, minWeight) and (maxValue, maxWeight)
// and clamps outside that range. minWeight may exceed maxWeight.
type Linear struct {
	base
	minValue, maxValue   decimal.Decimal
	minWeight, maxWeight decimal.Decimal
}

func NewLinear(name string, minValue, maxValue, minWeight, maxWeight decimal.Decimal, precision int32) *Linear {
	return &Linear{
		base:      newBase(name, AlgorithmLinear, precision),
		minValue:  minValue,
		maxValue:  maxValue,
		minWeight: minWeight,
		maxWeight: maxWeight,
	}
}

func (f *Linear) MinWeight() decimal.Decimal { return f.quantize(f.minWeight) }
func (f *Linear) MaxWeight() decimal.Decimal { return f.quantize(f.maxWeight) }

// GetWeight computes
//
//	min_weight + (max_weight-min_weight)/(max_value-min_value) * (value-min_value)
//
// for min_value < value < max_value. When min_value == max_value the
// function degenerates to a step at min_value.
func (f *Linear) GetWeight(value decimal.Decimal) (WeightResult, error) {
	var weight decimal.Decimal
	switch {
	case value.LessThanOrEqual(f.minValue):
		weight = f.minWeight
	case value.GreaterThanOrEqual(f.maxValue):
		weight = f.maxWeight
	default:
		slope := f.maxWeight.Sub(f.minWeight).Div(f.maxValue.Sub(f.minValue))
		weight = f.minWeight.Add(slope.Mul(value.Sub(f.minValue)))
	}
	return WeightResult{Value: value, Weight: f.quantize(weight)}, nil
}

func (f *Linear) Weight(args Args) (WeightResult, error) {
	v, err := args.Decimal(ValueArg)
	if err != nil {
		return WeightResult{}, err
	}
	return f.GetWeight(v)
}
