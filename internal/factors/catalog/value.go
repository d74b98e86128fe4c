package catalog

import (
	"github.com/MikeSquared-Agency/Pow2/internal/factors"
)

// CombinationPrecision is the default precision of the combination factor.
const CombinationPrecision int32 = 3

// Combination passes the combination ratio straight through as the weight.
type Combination struct {
	*factors.Identity
}

func NewCombination(cfg *CombinationByValueConfig) *Combination {
	return &Combination{factors.NewIdentity(NameCombination, cfg.precision(CombinationPrecision))}
}

func (f *Combination) Weight(args factors.Args) (factors.WeightResult, error) {
	ratio, err := args.Decimal("ratio")
	if err != nil {
		return factors.WeightResult{}, err
	}
	return f.GetWeight(ratio)
}
