package catalog

import (
	"github.com/MikeSquared-Agency/Pow2/internal/factors"
)

// VolumeByLinear maps trade volume onto [min_weight, max_weight].
type VolumeByLinear struct {
	*factors.Linear
}

func NewVolumeByLinear(cfg *VolumeByLinearConfig) *VolumeByLinear {
	lo, hi := cfg.bounds()
	return &VolumeByLinear{factors.NewLinear(NameVolume, cfg.MinVolume, cfg.MaxVolume, lo, hi,
		cfg.precision(factors.DefaultPrecision))}
}

func (f *VolumeByLinear) Weight(args factors.Args) (factors.WeightResult, error) {
	v, err := args.Decimal("volume")
	if err != nil {
		return factors.WeightResult{}, err
	}
	return f.GetWeight(v)
}
