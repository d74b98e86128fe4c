package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeSquared-Agency/Pow2/internal/factors"
)

// ListingCount weighs how many tokens an account has listed.
type ListingCount struct {
	*factors.Threshold
}

func NewListingCount(cfg *ListingCountByThresholdConfig) (*ListingCount, error) {
	t, err := factors.NewThreshold(NameListingCount, cfg.Thresholds, cfg.Weights, cfg.precision(factors.DefaultPrecision))
	if err != nil {
		return nil, err
	}
	return &ListingCount{t}, nil
}

func (f *ListingCount) Weight(args factors.Args) (factors.WeightResult, error) {
	n, err := args.Decimal("count")
	if err != nil {
		return factors.WeightResult{}, err
	}
	return f.GetWeight(n)
}

// ListingDays weighs how long a token has been listed. A token that is not
// listed gets the maximum weight with a value of 0.
type ListingDays struct {
	*factors.Linear
	now time.Time
}

func NewListingDays(cfg *ListingDaysByLinearConfig, now time.Time) *ListingDays {
	lo, hi := cfg.bounds()
	l := factors.NewLinear(NameListingDays,
		decimal.NewFromInt(cfg.MinListingDays), decimal.NewFromInt(cfg.MaxListingDays),
		lo, hi, cfg.precision(factors.DefaultPrecision))
	return &ListingDays{Linear: l, now: now.In(zone(cfg.TZHours))}
}

func (f *ListingDays) Weight(args factors.Args) (factors.WeightResult, error) {
	start, ok, err := args.OptionalTime("start_at")
	if err != nil {
		return factors.WeightResult{}, err
	}
	if !ok {
		return factors.WeightResult{Value: int64(0), Weight: f.MaxWeight()}, nil
	}
	days := max(elapsedDays(f.now, start), 1)
	r, err := f.GetWeight(decimal.NewFromInt(days))
	if err != nil {
		return factors.WeightResult{}, err
	}
	r.Value = days
	return r, nil
}

var one = decimal.NewFromInt(1)

// NewListingStats combines listing_count and listing_days: a listing count
// weight below 1 is a penalty and wins, otherwise listing_days decides.
// Calculation input keys are listing_count and listing_start_at.
func NewListingStats(children map[string]factors.Factor) (factors.Factor, error) {
	bindings := map[string]factors.Binding{
		NameListingCount: {"count": "listing_count"},
		NameListingDays:  {"start_at": "listing_start_at"},
	}
	for name := range children {
		if _, ok := bindings[name]; !ok {
			return nil, unexpectedChild(NameListingStats, name)
		}
	}
	var kids []factors.Child
	for _, name := range []string{NameListingCount, NameListingDays} {
		if f, ok := children[name]; ok {
			kids = append(kids, factors.Child{Factor: f, Binding: bindings[name]})
		}
	}
	return factors.NewComposite(NameListingStats, kids,
		factors.PreferBelow(NameListingCount, NameListingDays, one))
}
