package catalog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Pow2/internal/factors"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(v int) *int { return &v }

var cst = time.FixedZone("UTC+8", 8*3600)

func weightOf(t *testing.T, f factors.Factor, args factors.Args) factors.WeightResult {
	t.Helper()
	r, err := f.Weight(args)
	require.NoError(t, err)
	return r
}

func assertWeight(t *testing.T, want string, r factors.WeightResult) {
	t.Helper()
	assert.Equal(t, want, factors.FormatDecimal(r.Weight))
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("2024-01-01", cst)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2023, 12, 31, 16, 0, 0, 0, time.UTC)))

	got, err = ParseTime("2024-01-01 12:30:00", cst)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 1, 1, 4, 30, 0, 0, time.UTC)))

	got, err = ParseTime("2024-01-01T00:00:00Z", cst)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	_, err = ParseTime("", cst)
	assert.ErrorIs(t, err, factors.ErrConfiguration)
	_, err = ParseTime("new year", cst)
	assert.ErrorIs(t, err, factors.ErrConfiguration)
}

func TestElapsedDays(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		now  time.Time
		want int64
	}{
		{"same instant", start, 1},
		{"same day", start.Add(23 * time.Hour), 1},
		{"next day", start.Add(24 * time.Hour), 2},
		{"ten days", start.Add(10*24*time.Hour + time.Minute), 11},
		{"an hour before", start.Add(-time.Hour), 0},
		{"a day before", start.Add(-24 * time.Hour), 0},
		{"a day and a bit before", start.Add(-25 * time.Hour), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, elapsedDays(tt.now, start))
		})
	}
}

func TestCombination(t *testing.T) {
	f := NewCombination(&CombinationByValueConfig{})
	assert.Equal(t, CombinationPrecision, f.Precision())

	r := weightOf(t, f, factors.Args{"ratio": 1.2345})
	assert.True(t, r.Weight.Equal(dec("1.2345")))

	_, err := f.Weight(factors.Args{"value": 1})
	assert.ErrorIs(t, err, factors.ErrInvalidInput)
}

func TestFlags(t *testing.T) {
	f, err := NewFlag(NamePopUser, "is_pop_user", &FlagByFixedConfig{
		Weights: map[bool]decimal.Decimal{true: dec("1.2"), false: dec("1")},
	})
	require.NoError(t, err)
	assert.Equal(t, NamePopUser, f.Name())

	assertWeight(t, "1.20", weightOf(t, f, factors.Args{"is_pop_user": true}))
	assertWeight(t, "1.00", weightOf(t, f, factors.Args{"is_pop_user": false}))

	_, err = f.Weight(factors.Args{"is_pop_user": 1})
	assert.ErrorIs(t, err, factors.ErrInvalidInput)

	_, err = NewFlag(NameIsListing, "is_listing", &FlagByFixedConfig{})
	assert.ErrorIs(t, err, factors.ErrConfiguration)
}

func TestSlot(t *testing.T) {
	f, err := NewSlot(&SlotByFixedConfig{
		Weights:          map[bool]decimal.Decimal{true: dec("1.5"), false: dec("1")},
		RareRequirements: map[int64]int64{1: 1, 2: 2},
	})
	require.NoError(t, err)

	added := f.UpdateTokensWithSlot(map[int64][]int64{
		1: {10, 11},
		2: {20, 21, 22, 23, 24},
	})
	assert.Equal(t, []int64{10, 11, 20, 21, 22, 23}, added)
	assert.Equal(t, 6, f.EligibleCount())
	assert.True(t, f.HasSlot(22))
	assert.False(t, f.HasSlot(24))

	assertWeight(t, "1.50", weightOf(t, f, factors.Args{"token_id": 10}))
	r := weightOf(t, f, factors.Args{"token_id": int64(24)})
	assertWeight(t, "1.00", r)
	assert.Equal(t, false, r.Value)

	t.Run("a missing rare completes no set", func(t *testing.T) {
		assert.Nil(t, f.UpdateTokensWithSlot(map[int64][]int64{1: {30, 31}}))
		assert.False(t, f.HasSlot(30))
	})

	t.Run("eligibility accumulates across holders", func(t *testing.T) {
		added := f.UpdateTokensWithSlot(map[int64][]int64{1: {40}, 2: {50, 51, 52}})
		assert.Equal(t, []int64{40, 50, 51}, added)
		assert.Equal(t, 9, f.EligibleCount())
		assert.True(t, f.HasSlot(10))
	})

	t.Run("token id must be an integer", func(t *testing.T) {
		_, err := f.Weight(factors.Args{"token_id": 1.5})
		assert.ErrorIs(t, err, factors.ErrInvalidInput)
	})

	var _ SlotLoader = f
}

func TestDDays(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, cst)
	cfg := &DDaysByNormalizeConfig{Multiplier: 0.1, CreatedAt: "2024-01-01"}
	require.NoError(t, cfg.Validate())

	f, err := NewDDays(cfg, now)
	require.NoError(t, err)
	assert.Equal(t, int64(10), f.MaxDays())

	alpha, ok := f.Alpha()
	require.True(t, ok)
	assert.InDelta(t, 1.0, alpha, 1e-12)

	t.Run("held days", func(t *testing.T) {
		r := weightOf(t, f, factors.Args{"start_at": time.Date(2024, 1, 5, 0, 0, 0, 0, cst)})
		assert.Equal(t, int64(6), r.Value)
		assertWeight(t, "3.50", r)
	})

	t.Run("rfc3339 strings", func(t *testing.T) {
		r := weightOf(t, f, factors.Args{"start_at": "2024-01-01T00:00:00+08:00"})
		assert.Equal(t, int64(10), r.Value)
		assertWeight(t, "5.50", r)
	})

	t.Run("future starts count as one day", func(t *testing.T) {
		r := weightOf(t, f, factors.Args{"start_at": now.Add(48 * time.Hour)})
		assert.Equal(t, int64(1), r.Value)
		assertWeight(t, "1.00", r)
	})

	t.Run("starts before the collection miss the domain", func(t *testing.T) {
		_, err := f.Weight(factors.Args{"start_at": time.Date(2023, 12, 1, 0, 0, 0, 0, cst)})
		assert.ErrorIs(t, err, factors.ErrValueNotFound)
	})

	t.Run("missing start", func(t *testing.T) {
		_, err := f.Weight(factors.Args{})
		assert.ErrorIs(t, err, factors.ErrInvalidInput)
	})

	t.Run("collection created after now", func(t *testing.T) {
		_, err := NewDDays(&DDaysByNormalizeConfig{CreatedAt: "2024-02-01"}, now)
		assert.ErrorIs(t, err, factors.ErrConfiguration)
	})

	t.Run("tz hours shift zone-less created_at", func(t *testing.T) {
		utc := &DDaysByNormalizeConfig{Multiplier: 0.1, CreatedAt: "2024-01-01", TZHours: intPtr(0)}
		g, err := NewDDays(utc, time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, int64(1), g.MaxDays())
	})
}

func TestListingDays(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, cst)
	f := NewListingDays(&ListingDaysByLinearConfig{
		LinearWeights:  LinearWeights{MinWeight: decPtr("1"), MaxWeight: decPtr("2")},
		MinListingDays: 1,
		MaxListingDays: 11,
	}, now)

	r := weightOf(t, f, factors.Args{"start_at": nil})
	assert.Equal(t, int64(0), r.Value)
	assertWeight(t, "2.00", r)

	r = weightOf(t, f, factors.Args{})
	assertWeight(t, "2.00", r)

	r = weightOf(t, f, factors.Args{"start_at": time.Date(2024, 1, 5, 0, 0, 0, 0, cst)})
	assert.Equal(t, int64(6), r.Value)
	assertWeight(t, "1.50", r)

	_, err := f.Weight(factors.Args{"start_at": 12})
	assert.ErrorIs(t, err, factors.ErrInvalidInput)

	t.Run("default weights", func(t *testing.T) {
		g := NewListingDays(&ListingDaysByLinearConfig{MinListingDays: 1, MaxListingDays: 5}, now)
		assert.Equal(t, "1.00", factors.FormatDecimal(g.MinWeight()))
		assert.Equal(t, "5.00", factors.FormatDecimal(g.MaxWeight()))
	})
}

func listingStats(t *testing.T, now time.Time) factors.Factor {
	t.Helper()
	count, err := NewListingCount(&ListingCountByThresholdConfig{
		Thresholds: []decimal.Decimal{dec("5"), dec("0")},
		Weights:    []decimal.Decimal{dec("0.5"), dec("1")},
	})
	require.NoError(t, err)
	days := NewListingDays(&ListingDaysByLinearConfig{
		LinearWeights:  LinearWeights{MinWeight: decPtr("1"), MaxWeight: decPtr("2")},
		MinListingDays: 1,
		MaxListingDays: 11,
	}, now)
	f, err := NewListingStats(map[string]factors.Factor{
		NameListingDays:  days,
		NameListingCount: count,
	})
	require.NoError(t, err)
	return f
}

func TestListingStats(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, cst)
	f := listingStats(t, now)
	assert.Equal(t, NameListingStats, f.Name())

	t.Run("count penalty wins", func(t *testing.T) {
		r := weightOf(t, f, factors.Args{"listing_count": 7, "listing_start_at": nil})
		assertWeight(t, "0.50", r)
		require.Len(t, r.Children, 2)
		assertWeight(t, "2.00", r.Children[NameListingDays])
	})

	t.Run("otherwise listing days decide", func(t *testing.T) {
		r := weightOf(t, f, factors.Args{
			"listing_count":    2,
			"listing_start_at": time.Date(2024, 1, 5, 0, 0, 0, 0, cst),
		})
		assertWeight(t, "1.50", r)
		assert.Equal(t, int64(6), r.Value)
		assertWeight(t, "1.00", r.Children[NameListingCount])
	})

	t.Run("both inputs are required", func(t *testing.T) {
		_, err := f.Weight(factors.Args{"listing_count": 2})
		assert.ErrorIs(t, err, factors.ErrInvalidInput)
	})

	t.Run("below the count thresholds", func(t *testing.T) {
		_, err := f.Weight(factors.Args{"listing_count": -1, "listing_start_at": nil})
		assert.ErrorIs(t, err, factors.ErrBelowThreshold)
	})

	t.Run("unexpected children", func(t *testing.T) {
		_, err := NewListingStats(map[string]factors.Factor{
			NameListingCount: factors.NewIdentity(NameListingCount, 2),
			NameVolume:       factors.NewIdentity(NameVolume, 2),
		})
		assert.ErrorIs(t, err, factors.ErrConfiguration)
	})

	t.Run("needs both children", func(t *testing.T) {
		_, err := NewListingStats(map[string]factors.Factor{
			NameListingCount: factors.NewIdentity(NameListingCount, 2),
		})
		assert.ErrorIs(t, err, factors.ErrConfiguration)
	})
}

func TestRare(t *testing.T) {
	t.Run("fixed", func(t *testing.T) {
		f, err := NewRareByFixed(&RareByFixedConfig{Weights: map[int64]decimal.Decimal{1: dec("3"), 2: dec("1.5")}})
		require.NoError(t, err)
		assertWeight(t, "1.50", weightOf(t, f, factors.Args{"rare": 2}))
		_, err = f.Weight(factors.Args{"rare": 3})
		assert.ErrorIs(t, err, factors.ErrValueNotFound)
	})

	t.Run("normalize inverts rarity", func(t *testing.T) {
		f, err := NewRareByNormalize(&RareByNormalizeConfig{MinRare: 1, MaxRare: 3, Alpha: 0})
		require.NoError(t, err)

		r := weightOf(t, f, factors.Args{"rare": 1})
		assert.Equal(t, int64(1), r.Value)
		assertWeight(t, "3.00", r)
		assertWeight(t, "1.00", weightOf(t, f, factors.Args{"rare": 3}))

		_, err = f.Weight(factors.Args{"rare": 4})
		assert.ErrorIs(t, err, factors.ErrValueNotFound)
	})

	t.Run("config bounds", func(t *testing.T) {
		cfg := &RareByNormalizeConfig{MinRare: 5, MaxRare: 1}
		assert.ErrorIs(t, cfg.Validate(), factors.ErrConfiguration)
	})
}

func TestVolume(t *testing.T) {
	t.Run("linear", func(t *testing.T) {
		f := NewVolumeByLinear(&VolumeByLinearConfig{MinVolume: dec("0"), MaxVolume: dec("100")})
		assertWeight(t, "3.00", weightOf(t, f, factors.Args{"volume": 50}))
		assertWeight(t, "5.00", weightOf(t, f, factors.Args{"volume": 1000}))
	})

	t.Run("log normalize needs a domain", func(t *testing.T) {
		f, err := NewVolumeByLogNormalize(&AlphaSearchConfig{Ratio: 2, MaxAlpha: 10, AlphaStep: 0.1, Tolerance: 0.1})
		require.NoError(t, err)

		_, err = f.Weight(factors.Args{"volume": 0})
		assert.ErrorIs(t, err, factors.ErrValueNotFound)

		require.NoError(t, f.LoadDomain([]float64{0, 3}))
		r := weightOf(t, f, factors.Args{"volume": 0})
		assertWeight(t, "1.00", r)

		weights := f.Weights()
		assert.InDelta(t, 2.0, weights[3]/weights[0], 0.1)

		_, err = f.Weight(factors.Args{"volume": 1})
		assert.ErrorIs(t, err, factors.ErrValueNotFound)
	})

	t.Run("asset shares the search", func(t *testing.T) {
		f, err := NewAsset(&AlphaSearchConfig{Ratio: 100, MaxAlpha: 1, AlphaStep: 0.5, Tolerance: 0.1})
		require.NoError(t, err)
		assert.ErrorIs(t, f.LoadDomain([]float64{0, 3}), factors.ErrAlphaSearchExhausted)

		var _ DomainLoader = f
	})
}

func TestConfigValidation(t *testing.T) {
	neg := int32(-1)
	tests := []struct {
		name string
		cfg  factors.Config
	}{
		{"negative precision", &CombinationByValueConfig{BaseConfig: BaseConfig{Precision: &neg}}},
		{"alpha search without ratio", &AlphaSearchConfig{MaxAlpha: 1, AlphaStep: 0.1, Tolerance: 0.1}},
		{"alpha search without step", &AlphaSearchConfig{Ratio: 2, MaxAlpha: 1, Tolerance: 0.1}},
		{"alpha search empty range", &AlphaSearchConfig{Ratio: 2, AlphaStep: 0.1, Tolerance: 0.1}},
		{"alpha search without tolerance", &AlphaSearchConfig{Ratio: 2, MaxAlpha: 1, AlphaStep: 0.1}},
		{"flag without weights", &FlagByFixedConfig{}},
		{"slot without requirements", &SlotByFixedConfig{Weights: map[bool]decimal.Decimal{true: dec("1")}}},
		{"slot with zero requirement", &SlotByFixedConfig{
			Weights:          map[bool]decimal.Decimal{true: dec("1")},
			RareRequirements: map[int64]int64{1: 0},
		}},
		{"d_days without created_at", &DDaysByNormalizeConfig{}},
		{"d_days negative multiplier", &DDaysByNormalizeConfig{CreatedAt: "2024-01-01", Multiplier: -1}},
		{"listing_count length mismatch", &ListingCountByThresholdConfig{Thresholds: []decimal.Decimal{dec("1")}}},
		{"listing_days reversed", &ListingDaysByLinearConfig{MinListingDays: 5, MaxListingDays: 1}},
		{"rare without weights", &RareByFixedConfig{}},
		{"volume reversed", &VolumeByLinearConfig{MinVolume: dec("10"), MaxVolume: dec("1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.cfg.Validate(), factors.ErrConfiguration)
		})
	}
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{
		NameAsset, NameCombination, NameDDays, NameListingCount, NameListingDays,
		NameListingStats, NameRare, NameSlot, NameVolume,
		NameIsListing, NamePopUser, NameMiningLimitReached,
	}, r.Names())

	t.Run("same name, different algorithms", func(t *testing.T) {
		d, err := r.Implementation(NameRare, factors.AlgorithmNormalize, factors.MethodLinear)
		require.NoError(t, err)
		f, err := d.New(&RareByNormalizeConfig{MinRare: 1, MaxRare: 2, Alpha: 1}, factors.BuildContext{})
		require.NoError(t, err)
		assert.IsType(t, &RareByNormalize{}, f)

		d, err = r.Implementation(NameRare, factors.AlgorithmFixed, "")
		require.NoError(t, err)
		assert.IsType(t, &RareByFixedConfig{}, d.NewConfig())
	})

	t.Run("method must match when registered", func(t *testing.T) {
		_, err := r.Implementation(NameVolume, factors.AlgorithmNormalize, "")
		assert.ErrorIs(t, err, factors.ErrUnknownImplementation)
	})

	t.Run("date relative factors", func(t *testing.T) {
		for _, name := range r.Names() {
			for _, d := range r.Implementations(name) {
				want := name == NameDDays || name == NameListingDays
				assert.Equal(t, want, d.DateRelative, name)
			}
		}
	})

	t.Run("listing_stats is composite", func(t *testing.T) {
		d, err := r.CompositeImplementation(NameListingStats)
		require.NoError(t, err)
		assert.Empty(t, d.Algorithm)
	})

	t.Run("flags read their own argument", func(t *testing.T) {
		d, err := r.Implementation(NameMiningLimitReached, factors.AlgorithmFixed, "")
		require.NoError(t, err)
		f, err := d.New(&FlagByFixedConfig{Weights: map[bool]decimal.Decimal{true: dec("0"), false: dec("1")}}, factors.BuildContext{})
		require.NoError(t, err)
		assertWeight(t, "0.00", weightOf(t, f, factors.Args{"is_reached": true}))
	})

	t.Run("wrong config type", func(t *testing.T) {
		d, err := r.Implementation(NameSlot, factors.AlgorithmFixed, "")
		require.NoError(t, err)
		_, err = d.New(&FlagByFixedConfig{}, factors.BuildContext{})
		assert.ErrorIs(t, err, factors.ErrConfiguration)
	})

	t.Run("now is passed to date relative constructors", func(t *testing.T) {
		d, err := r.Implementation(NameDDays, factors.AlgorithmNormalize, factors.MethodLinear)
		require.NoError(t, err)
		f, err := d.New(&DDaysByNormalizeConfig{CreatedAt: "2024-01-01", Multiplier: 0.1},
			factors.BuildContext{Now: time.Date(2024, 1, 3, 0, 0, 0, 0, cst)})
		require.NoError(t, err)
		assert.Equal(t, int64(3), f.(*DDays).MaxDays())
	})
}
