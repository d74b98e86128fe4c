package catalog

import (
	"fmt"
	"time"

	"github.com/MikeSquared-Agency/Pow2/internal/factors"
)

// DDays weighs how long a token has been held. The domain is every day
// count from 1 to the age of the collection on the day the factor is built,
// linearly normalized with alpha = age * multiplier.
type DDays struct {
	*factors.Normalize
	now     time.Time
	maxDays int64
}

func NewDDays(cfg *DDaysByNormalizeConfig, now time.Time) (*DDays, error) {
	created, err := cfg.createdAt()
	if err != nil {
		return nil, err
	}
	loc := zone(cfg.TZHours)
	now = now.In(loc)
	maxDays := elapsedDays(now, created.In(loc))
	if maxDays < 1 {
		return nil, fmt.Errorf("%w: %s: created_at %s is after now %s", factors.ErrConfiguration, NameDDays, created, now)
	}

	domain := make([]float64, maxDays)
	for i := range domain {
		domain[i] = float64(i + 1)
	}
	alpha := float64(maxDays) * cfg.Multiplier
	n, err := factors.NewNormalize(NameDDays, domain, factors.NormalizeOptions{
		Method:    factors.MethodLinear,
		Alpha:     &alpha,
		Precision: cfg.Precision,
	})
	if err != nil {
		return nil, err
	}
	return &DDays{Normalize: n, now: now, maxDays: maxDays}, nil
}

// MaxDays is the size of the day domain.
func (f *DDays) MaxDays() int64 { return f.maxDays }

// Days counts held days up to now, starting at 1 for the first day.
func (f *DDays) Days(startAt time.Time) int64 {
	return max(elapsedDays(f.now, startAt), 1)
}

func (f *DDays) Weight(args factors.Args) (factors.WeightResult, error) {
	start, err := args.Time("start_at")
	if err != nil {
		return factors.WeightResult{}, err
	}
	days := f.Days(start)
	r, err := f.GetWeight(float64(days))
	if err != nil {
		return factors.WeightResult{}, err
	}
	r.Value = days
	return r, nil
}

// elapsedDays returns the whole days from start to now plus one, flooring
// negative spans the way calendar arithmetic does.
func elapsedDays(now, start time.Time) int64 {
	d := now.Sub(start)
	days := int64(d / (24 * time.Hour))
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return days + 1
}
