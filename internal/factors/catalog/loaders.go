package catalog

// DomainLoader is implemented by factors whose value domain is only known
// once the population being scored has been gathered.
type DomainLoader interface {
	LoadDomain(values []float64) error
}

// SlotLoader is implemented by factors that track slot eligibility.
type SlotLoader interface {
	UpdateTokensWithSlot(rareBalances map[int64][]int64) []int64
}
