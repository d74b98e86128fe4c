package catalog

import (
	"fmt"

	"github.com/MikeSquared-Agency/Pow2/internal/factors"
)

// Register adds every catalogue factor to r. Implementations sharing a name
// are registered in lookup priority order.
func Register(r *factors.Registry) {
	r.MustRegister(factors.Descriptor{
		Name:      NameAsset,
		Algorithm: factors.AlgorithmNormalize,
		Method:    factors.MethodLog,
		NewConfig: func() factors.Config { return &AlphaSearchConfig{} },
		New: func(cfg factors.Config, _ factors.BuildContext) (factors.Factor, error) {
			c, err := configAs[*AlphaSearchConfig](NameAsset, cfg)
			if err != nil {
				return nil, err
			}
			return NewAsset(c)
		},
	})
	r.MustRegister(factors.Descriptor{
		Name:      NameCombination,
		Algorithm: factors.AlgorithmValue,
		NewConfig: func() factors.Config { return &CombinationByValueConfig{} },
		New: func(cfg factors.Config, _ factors.BuildContext) (factors.Factor, error) {
			c, err := configAs[*CombinationByValueConfig](NameCombination, cfg)
			if err != nil {
				return nil, err
			}
			return NewCombination(c), nil
		},
	})
	r.MustRegister(factors.Descriptor{
		Name:         NameDDays,
		Algorithm:    factors.AlgorithmNormalize,
		Method:       factors.MethodLinear,
		DateRelative: true,
		NewConfig:    func() factors.Config { return &DDaysByNormalizeConfig{} },
		New: func(cfg factors.Config, bc factors.BuildContext) (factors.Factor, error) {
			c, err := configAs[*DDaysByNormalizeConfig](NameDDays, cfg)
			if err != nil {
				return nil, err
			}
			return NewDDays(c, bc.Now)
		},
	})
	r.MustRegister(factors.Descriptor{
		Name:      NameListingCount,
		Algorithm: factors.AlgorithmThreshold,
		NewConfig: func() factors.Config { return &ListingCountByThresholdConfig{} },
		New: func(cfg factors.Config, _ factors.BuildContext) (factors.Factor, error) {
			c, err := configAs[*ListingCountByThresholdConfig](NameListingCount, cfg)
			if err != nil {
				return nil, err
			}
			return NewListingCount(c)
		},
	})
	r.MustRegister(factors.Descriptor{
		Name:         NameListingDays,
		Algorithm:    factors.AlgorithmLinear,
		DateRelative: true,
		NewConfig:    func() factors.Config { return &ListingDaysByLinearConfig{} },
		New: func(cfg factors.Config, bc factors.BuildContext) (factors.Factor, error) {
			c, err := configAs[*ListingDaysByLinearConfig](NameListingDays, cfg)
			if err != nil {
				return nil, err
			}
			return NewListingDays(c, bc.Now), nil
		},
	})
	r.MustRegister(factors.Descriptor{
		Name:    NameListingStats,
		Compose: NewListingStats,
	})
	r.MustRegister(factors.Descriptor{
		Name:      NameRare,
		Algorithm: factors.AlgorithmFixed,
		NewConfig: func() factors.Config { return &RareByFixedConfig{} },
		New: func(cfg factors.Config, _ factors.BuildContext) (factors.Factor, error) {
			c, err := configAs[*RareByFixedConfig](NameRare, cfg)
			if err != nil {
				return nil, err
			}
			return NewRareByFixed(c)
		},
	})
	r.MustRegister(factors.Descriptor{
		Name:      NameRare,
		Algorithm: factors.AlgorithmNormalize,
		Method:    factors.MethodLinear,
		NewConfig: func() factors.Config { return &RareByNormalizeConfig{} },
		New: func(cfg factors.Config, _ factors.BuildContext) (factors.Factor, error) {
			c, err := configAs[*RareByNormalizeConfig](NameRare, cfg)
			if err != nil {
				return nil, err
			}
			return NewRareByNormalize(c)
		},
	})
	r.MustRegister(factors.Descriptor{
		Name:      NameSlot,
		Algorithm: factors.AlgorithmFixed,
		NewConfig: func() factors.Config { return &SlotByFixedConfig{} },
		New: func(cfg factors.Config, _ factors.BuildContext) (factors.Factor, error) {
			c, err := configAs[*SlotByFixedConfig](NameSlot, cfg)
			if err != nil {
				return nil, err
			}
			return NewSlot(c)
		},
	})
	r.MustRegister(factors.Descriptor{
		Name:      NameVolume,
		Algorithm: factors.AlgorithmLinear,
		NewConfig: func() factors.Config { return &VolumeByLinearConfig{} },
		New: func(cfg factors.Config, _ factors.BuildContext) (factors.Factor, error) {
			c, err := configAs[*VolumeByLinearConfig](NameVolume, cfg)
			if err != nil {
				return nil, err
			}
			return NewVolumeByLinear(c), nil
		},
	})
	r.MustRegister(factors.Descriptor{
		Name:      NameVolume,
		Algorithm: factors.AlgorithmNormalize,
		Method:    factors.MethodLog,
		NewConfig: func() factors.Config { return &AlphaSearchConfig{} },
		New: func(cfg factors.Config, _ factors.BuildContext) (factors.Factor, error) {
			c, err := configAs[*AlphaSearchConfig](NameVolume, cfg)
			if err != nil {
				return nil, err
			}
			return NewVolumeByLogNormalize(c)
		},
	})

	for _, flag := range []struct{ name, arg string }{
		{NameIsListing, "is_listing"},
		{NamePopUser, "is_pop_user"},
		{NameMiningLimitReached, "is_reached"},
	} {
		name, arg := flag.name, flag.arg
		r.MustRegister(factors.Descriptor{
			Name:      name,
			Algorithm: factors.AlgorithmFixed,
			NewConfig: func() factors.Config { return &FlagByFixedConfig{} },
			New: func(cfg factors.Config, _ factors.BuildContext) (factors.Factor, error) {
				c, err := configAs[*FlagByFixedConfig](name, cfg)
				if err != nil {
					return nil, err
				}
				return NewFlag(name, arg, c)
			},
		})
	}
}

// NewRegistry returns a registry holding the whole catalogue.
func NewRegistry() *factors.Registry {
	r := factors.NewRegistry()
	Register(r)
	return r
}

func configAs[T factors.Config](name string, cfg factors.Config) (T, error) {
	c, ok := cfg.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s: unexpected config type %T", factors.ErrConfiguration, name, cfg)
	}
	return c, nil
}

func unexpectedChild(composite, child string) error {
	return fmt.Errorf("%w: %s: unexpected child factor %q", factors.ErrConfiguration, composite, child)
}
