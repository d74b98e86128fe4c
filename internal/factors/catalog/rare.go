package catalog

import (
	"fmt"

	"github.com/MikeSquared-Agency/Pow2/internal/factors"
)

// RareByFixed looks rarity up in a fixed table.
type RareByFixed struct {
	*factors.Fixed[int64]
}

func NewRareByFixed(cfg *RareByFixedConfig) (*RareByFixed, error) {
	f, err := factors.NewFixed(NameRare, cfg.Weights, cfg.precision(factors.DefaultPrecision))
	if err != nil {
		return nil, err
	}
	return &RareByFixed{f}, nil
}

func (f *RareByFixed) Weight(args factors.Args) (factors.WeightResult, error) {
	rare, err := args.Int("rare")
	if err != nil {
		return factors.WeightResult{}, err
	}
	return f.GetWeight(rare)
}

// RareByNormalize normalizes over [min_rare, max_rare]. Lower rare numbers
// are rarer, so rare r is looked up as max_rare - r + 1.
type RareByNormalize struct {
	*factors.Normalize
	maxRare int64
}

func NewRareByNormalize(cfg *RareByNormalizeConfig) (*RareByNormalize, error) {
	domain := make([]float64, 0, cfg.MaxRare-cfg.MinRare+1)
	for r := cfg.MinRare; r <= cfg.MaxRare; r++ {
		domain = append(domain, float64(r))
	}
	alpha := cfg.Alpha
	n, err := factors.NewNormalize(NameRare, domain, factors.NormalizeOptions{
		Method:    factors.MethodLinear,
		Alpha:     &alpha,
		Precision: cfg.Precision,
	})
	if err != nil {
		return nil, err
	}
	return &RareByNormalize{Normalize: n, maxRare: cfg.MaxRare}, nil
}

func (f *RareByNormalize) Weight(args factors.Args) (factors.WeightResult, error) {
	rare, err := args.Int("rare")
	if err != nil {
		return factors.WeightResult{}, err
	}
	r, err := f.GetWeight(float64(f.maxRare - rare + 1))
	if err != nil {
		return factors.WeightResult{}, fmt.Errorf("rare %d: %w", rare, err)
	}
	r.Value = rare
	return r, nil
}
