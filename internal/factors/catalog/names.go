// Package catalog holds the named factors a season can configure and the
// explicit registration pass that makes them resolvable.
package catalog

// Factor names as they appear in season documents and calculation inputs.
const (
	NameAsset              = "asset"
	NameCombination        = "combination"
	NameSlot               = "slot"
	NameDDays              = "d_days"
	NameIsListing          = "is_listing"
	NameListingCount       = "listing_count"
	NameListingDays        = "listing_days"
	NameListingStats       = "listing_stats"
	NameRare               = "rare"
	NameVolume             = "volume"
	NamePopUser            = "pop_user"
	NameMiningLimitReached = "mining_limit_reached"
)

// DefaultTZHours is the offset applied to zone-less timestamps in configs.
const DefaultTZHours = 8
