package catalog

import (
	"github.com/MikeSquared-Agency/Pow2/internal/factors"
)

// Flag weighs a boolean observation through a fixed table. is_listing,
// pop_user and mining_limit_reached are flags.
type Flag struct {
	*factors.Fixed[bool]
	arg string
}

func NewFlag(name, arg string, cfg *FlagByFixedConfig) (*Flag, error) {
	f, err := factors.NewFixed(name, cfg.Weights, cfg.precision(factors.DefaultPrecision))
	if err != nil {
		return nil, err
	}
	return &Flag{Fixed: f, arg: arg}, nil
}

func (f *Flag) Weight(args factors.Args) (factors.WeightResult, error) {
	v, err := args.Bool(f.arg)
	if err != nil {
		return factors.WeightResult{}, err
	}
	return f.GetWeight(v)
}
