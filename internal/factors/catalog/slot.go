package catalog

import (
	"sort"

	"github.com/MikeSquared-Agency/Pow2/internal/factors"
)

// Slot weighs a token by whether it belongs to a complete set. A set needs
// RareRequirements[r] tokens of every rare r; UpdateTokensWithSlot marks the
// tokens of as many complete sets as a holder's balances allow.
//
// The eligibility set only grows. A Slot is not safe for concurrent use.
type Slot struct {
	*factors.Fixed[bool]
	requirements map[int64]int64
	eligible     map[int64]struct{}
}

func NewSlot(cfg *SlotByFixedConfig) (*Slot, error) {
	f, err := factors.NewFixed(NameSlot, cfg.Weights, cfg.precision(factors.DefaultPrecision))
	if err != nil {
		return nil, err
	}
	reqs := make(map[int64]int64, len(cfg.RareRequirements))
	for rare, n := range cfg.RareRequirements {
		reqs[rare] = n
	}
	return &Slot{Fixed: f, requirements: reqs, eligible: make(map[int64]struct{})}, nil
}

// UpdateTokensWithSlot takes one holder's token ids grouped by rare and
// returns the ids it marked eligible.
func (f *Slot) UpdateTokensWithSlot(rareBalances map[int64][]int64) []int64 {
	rares := make([]int64, 0, len(f.requirements))
	for rare := range f.requirements {
		rares = append(rares, rare)
	}
	sort.Slice(rares, func(i, j int) bool { return rares[i] < rares[j] })

	sets := int64(-1)
	for _, rare := range rares {
		n := int64(len(rareBalances[rare])) / f.requirements[rare]
		if sets < 0 || n < sets {
			sets = n
		}
	}
	if sets <= 0 {
		return nil
	}

	var added []int64
	for _, rare := range rares {
		take := sets * f.requirements[rare]
		for _, id := range rareBalances[rare][:take] {
			f.eligible[id] = struct{}{}
			added = append(added, id)
		}
	}
	return added
}

func (f *Slot) HasSlot(tokenID int64) bool {
	_, ok := f.eligible[tokenID]
	return ok
}

// EligibleCount reports how many distinct tokens hold a slot.
func (f *Slot) EligibleCount() int { return len(f.eligible) }

func (f *Slot) Weight(args factors.Args) (factors.WeightResult, error) {
	id, err := args.Int("token_id")
	if err != nil {
		return factors.WeightResult{}, err
	}
	return f.GetWeight(f.HasSlot(id))
}
