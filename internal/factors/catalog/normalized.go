package catalog

import (
	"fmt"

	"github.com/MikeSquared-Agency/Pow2/internal/factors"
)

// searched is a log-normalize factor whose domain is loaded per calculation
// and whose alpha is searched for; asset and volume share it.
type searched struct {
	*factors.Normalize
	arg string
}

func newSearched(name, arg string, cfg *AlphaSearchConfig) (*searched, error) {
	n, err := factors.NewNormalize(name, nil, factors.NormalizeOptions{
		Method:    factors.MethodLog,
		Search:    cfg.search(),
		Precision: cfg.Precision,
	})
	if err != nil {
		return nil, err
	}
	return &searched{Normalize: n, arg: arg}, nil
}

func (f *searched) LoadDomain(values []float64) error {
	_, err := f.LoadWeights(values)
	return err
}

func (f *searched) Weight(args factors.Args) (factors.WeightResult, error) {
	v, err := args.Decimal(f.arg)
	if err != nil {
		return factors.WeightResult{}, err
	}
	if !f.Loaded() {
		return factors.WeightResult{}, fmt.Errorf("%w: %s: domain not loaded", factors.ErrValueNotFound, f.Name())
	}
	r, err := f.GetWeight(v.InexactFloat64())
	if err != nil {
		return factors.WeightResult{}, err
	}
	r.Value = v
	return r, nil
}

// Asset weighs an account's asset balance against every balance in the
// season.
type Asset struct{ *searched }

func NewAsset(cfg *AlphaSearchConfig) (*Asset, error) {
	s, err := newSearched(NameAsset, "asset", cfg)
	if err != nil {
		return nil, err
	}
	return &Asset{s}, nil
}

// VolumeByLogNormalize weighs trade volume against every volume in the
// season.
type VolumeByLogNormalize struct{ *searched }

func NewVolumeByLogNormalize(cfg *AlphaSearchConfig) (*VolumeByLogNormalize, error) {
	s, err := newSearched(NameVolume, "volume", cfg)
	if err != nil {
		return nil, err
	}
	return &VolumeByLogNormalize{s}, nil
}
