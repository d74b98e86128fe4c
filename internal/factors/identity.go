package factors

// Identity uses the observed value itself as the weight. The weight is not
// quantized.
type Identity struct {
	base
}

func NewIdentity(name string, precision int32) *Identity {
	return &Identity{base: newBase(name, AlgorithmValue, precision)}
}

// GetWeight fails with ErrInvalidInput for anything that is not a number.
func (f *Identity) GetWeight(value any) (WeightResult, error) {
	weight, err := ToDecimal(value)
	if err != nil {
		return WeightResult{}, err
	}
	return WeightResult{Value: value, Weight: weight}, nil
}

func (f *Identity) Weight(args Args) (WeightResult, error) {
	v, ok := args[ValueArg]
	if !ok {
		return WeightResult{}, missingArg(ValueArg)
	}
	return f.GetWeight(v)
}
