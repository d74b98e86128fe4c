package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeSquared-Agency/Pow2/internal/factors"
)

// BaseConfig holds fields every factor config accepts.
type BaseConfig struct {
	Precision *int32 `yaml:"precision" json:"precision,omitempty"`
}

func (c BaseConfig) precision(def int32) int32 {
	if c.Precision == nil {
		return def
	}
	return *c.Precision
}

func (c BaseConfig) validate() error {
	if c.Precision != nil && *c.Precision < 0 {
		return fmt.Errorf("%w: precision must not be negative", factors.ErrConfiguration)
	}
	return nil
}

// AlphaSearchConfig configures a normalize factor whose alpha is searched.
type AlphaSearchConfig struct {
	BaseConfig `yaml:",inline"`
	Ratio      float64 `yaml:"ratio" json:"ratio"`
	MinAlpha   float64 `yaml:"min_alpha" json:"min_alpha"`
	MaxAlpha   float64 `yaml:"max_alpha" json:"max_alpha"`
	AlphaStep  float64 `yaml:"alpha_step" json:"alpha_step"`
	Tolerance  float64 `yaml:"tolerance" json:"tolerance"`
}

func (c *AlphaSearchConfig) Validate() error {
	if err := c.validate(); err != nil {
		return err
	}
	switch {
	case c.Ratio <= 0:
		return fmt.Errorf("%w: ratio must be positive", factors.ErrConfiguration)
	case c.AlphaStep <= 0:
		return fmt.Errorf("%w: alpha_step must be positive", factors.ErrConfiguration)
	case c.MaxAlpha <= c.MinAlpha:
		return fmt.Errorf("%w: max_alpha must exceed min_alpha", factors.ErrConfiguration)
	case c.Tolerance <= 0:
		return fmt.Errorf("%w: tolerance must be positive", factors.ErrConfiguration)
	}
	return nil
}

func (c *AlphaSearchConfig) search() factors.AlphaSearch {
	return factors.AlphaSearch{
		Ratio:     c.Ratio,
		MinAlpha:  c.MinAlpha,
		MaxAlpha:  c.MaxAlpha,
		AlphaStep: c.AlphaStep,
		Tolerance: c.Tolerance,
	}
}

type CombinationByValueConfig struct {
	BaseConfig `yaml:",inline"`
}

func (c *CombinationByValueConfig) Validate() error { return c.validate() }

// BoolWeights is a weight table keyed by a boolean observation. It encodes
// to JSON with "true"/"false" keys.
type BoolWeights map[bool]decimal.Decimal

func (w BoolWeights) MarshalJSON() ([]byte, error) {
	out := make(map[string]decimal.Decimal, len(w))
	for k, v := range w {
		out[strconv.FormatBool(k)] = v
	}
	return json.Marshal(out)
}

// FlagByFixedConfig maps a boolean observation to a weight.
type FlagByFixedConfig struct {
	BaseConfig `yaml:",inline"`
	Weights    BoolWeights `yaml:"weights" json:"weights"`
}

func (c *FlagByFixedConfig) Validate() error {
	if err := c.validate(); err != nil {
		return err
	}
	if len(c.Weights) == 0 {
		return fmt.Errorf("%w: weights must be provided", factors.ErrConfiguration)
	}
	return nil
}

type SlotByFixedConfig struct {
	BaseConfig       `yaml:",inline"`
	Weights          BoolWeights     `yaml:"weights" json:"weights"`
	RareRequirements map[int64]int64 `yaml:"rare_requirements" json:"rare_requirements"`
}

func (c *SlotByFixedConfig) Validate() error {
	if err := c.validate(); err != nil {
		return err
	}
	if len(c.Weights) == 0 {
		return fmt.Errorf("%w: weights must be provided", factors.ErrConfiguration)
	}
	if len(c.RareRequirements) == 0 {
		return fmt.Errorf("%w: rare_requirements must be provided", factors.ErrConfiguration)
	}
	for rare, n := range c.RareRequirements {
		if n <= 0 {
			return fmt.Errorf("%w: rare %d requirement must be positive", factors.ErrConfiguration, rare)
		}
	}
	return nil
}

type DDaysByNormalizeConfig struct {
	BaseConfig `yaml:",inline"`
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`
	CreatedAt  string  `yaml:"created_at" json:"created_at"`
	TZHours    *int    `yaml:"tz_hours" json:"tz_hours,omitempty"`
}

func (c *DDaysByNormalizeConfig) Validate() error {
	if err := c.validate(); err != nil {
		return err
	}
	if c.Multiplier < 0 {
		return fmt.Errorf("%w: multiplier must not be negative", factors.ErrConfiguration)
	}
	if _, err := c.createdAt(); err != nil {
		return err
	}
	return nil
}

func (c *DDaysByNormalizeConfig) createdAt() (time.Time, error) {
	return ParseTime(c.CreatedAt, zone(c.TZHours))
}

type ListingCountByThresholdConfig struct {
	BaseConfig `yaml:",inline"`
	Thresholds []decimal.Decimal `yaml:"thresholds" json:"thresholds"`
	Weights    []decimal.Decimal `yaml:"weights" json:"weights"`
}

func (c *ListingCountByThresholdConfig) Validate() error {
	if err := c.validate(); err != nil {
		return err
	}
	if len(c.Thresholds) == 0 || len(c.Thresholds) != len(c.Weights) {
		return fmt.Errorf("%w: thresholds and weights must be non-empty and the same length", factors.ErrConfiguration)
	}
	return nil
}

// LinearWeights are the endpoint weights shared by linear configs.
type LinearWeights struct {
	MinWeight *decimal.Decimal `yaml:"min_weight" json:"min_weight,omitempty"`
	MaxWeight *decimal.Decimal `yaml:"max_weight" json:"max_weight,omitempty"`
}

var (
	defaultMinWeight = decimal.RequireFromString("1.00")
	defaultMaxWeight = decimal.RequireFromString("5.00")
)

func (w LinearWeights) bounds() (decimal.Decimal, decimal.Decimal) {
	lo, hi := defaultMinWeight, defaultMaxWeight
	if w.MinWeight != nil {
		lo = *w.MinWeight
	}
	if w.MaxWeight != nil {
		hi = *w.MaxWeight
	}
	return lo, hi
}

type ListingDaysByLinearConfig struct {
	BaseConfig     `yaml:",inline"`
	LinearWeights  `yaml:",inline"`
	MinListingDays int64 `yaml:"min_listing_days" json:"min_listing_days"`
	MaxListingDays int64 `yaml:"max_listing_days" json:"max_listing_days"`
	TZHours        *int  `yaml:"tz_hours" json:"tz_hours,omitempty"`
}

func (c *ListingDaysByLinearConfig) Validate() error {
	if err := c.validate(); err != nil {
		return err
	}
	if c.MaxListingDays < c.MinListingDays {
		return fmt.Errorf("%w: max_listing_days must not be below min_listing_days", factors.ErrConfiguration)
	}
	return nil
}

type RareByFixedConfig struct {
	BaseConfig `yaml:",inline"`
	Weights    map[int64]decimal.Decimal `yaml:"weights" json:"weights"`
}

func (c *RareByFixedConfig) Validate() error {
	if err := c.validate(); err != nil {
		return err
	}
	if len(c.Weights) == 0 {
		return fmt.Errorf("%w: weights must be provided", factors.ErrConfiguration)
	}
	return nil
}

type RareByNormalizeConfig struct {
	BaseConfig `yaml:",inline"`
	MinRare    int64   `yaml:"min_rare" json:"min_rare"`
	MaxRare    int64   `yaml:"max_rare" json:"max_rare"`
	Alpha      float64 `yaml:"alpha" json:"alpha"`
}

func (c *RareByNormalizeConfig) Validate() error {
	if err := c.validate(); err != nil {
		return err
	}
	if c.MaxRare < c.MinRare {
		return fmt.Errorf("%w: max_rare must not be below min_rare", factors.ErrConfiguration)
	}
	return nil
}

type VolumeByLinearConfig struct {
	BaseConfig    `yaml:",inline"`
	LinearWeights `yaml:",inline"`
	MinVolume     decimal.Decimal `yaml:"min_volume" json:"min_volume"`
	MaxVolume     decimal.Decimal `yaml:"max_volume" json:"max_volume"`
}

func (c *VolumeByLinearConfig) Validate() error {
	if err := c.validate(); err != nil {
		return err
	}
	if c.MaxVolume.LessThan(c.MinVolume) {
		return fmt.Errorf("%w: max_volume must not be below min_volume", factors.ErrConfiguration)
	}
	return nil
}

func zone(tzHours *int) *time.Location {
	h := DefaultTZHours
	if tzHours != nil {
		h = *tzHours
	}
	return time.FixedZone(fmt.Sprintf("UTC%+d", h), h*3600)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime accepts RFC 3339 and a few zone-less layouts; zone-less values
// are read in loc.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: timestamp is required", factors.ErrConfiguration)
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised timestamp %q", factors.ErrConfiguration, s)
}
