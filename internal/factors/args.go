package factors

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Args is the named-argument bundle a factor is evaluated with. Values come
// straight from callers (Go values) or from decoded JSON (float64,
// json.Number, RFC 3339 strings), so accessors coerce conservatively.
type Args map[string]any

// Decimal returns the numeric argument key.
func (a Args) Decimal(key string) (decimal.Decimal, error) {
	v, ok := a[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: missing argument %q", ErrInvalidInput, key)
	}
	d, err := ToDecimal(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("argument %q: %w", key, err)
	}
	return d, nil
}

// Int returns the integral argument key.
func (a Args) Int(key string) (int64, error) {
	d, err := a.Decimal(key)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: argument %q must be an integer, got %s", ErrInvalidInput, key, d)
	}
	return d.IntPart(), nil
}

// Bool returns the boolean argument key.
func (a Args) Bool(key string) (bool, error) {
	v, ok := a[key]
	if !ok {
		return false, fmt.Errorf("%w: missing argument %q", ErrInvalidInput, key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: argument %q must be a bool, got %T", ErrInvalidInput, key, v)
	}
	return b, nil
}

// OptionalTime returns the timestamp argument key. A missing key or an
// explicit nil reports ok=false without error.
func (a Args) OptionalTime(key string) (time.Time, bool, error) {
	v, present := a[key]
	if !present || v == nil {
		return time.Time{}, false, nil
	}
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false, nil
		}
		return t, true, nil
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false, nil
		}
		return *t, true, nil
	case string:
		if t == "" {
			return time.Time{}, false, nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("%w: argument %q: %v", ErrInvalidInput, key, err)
		}
		return parsed, true, nil
	default:
		return time.Time{}, false, fmt.Errorf("%w: argument %q must be a timestamp, got %T", ErrInvalidInput, key, v)
	}
}

// Time is OptionalTime with the argument required.
func (a Args) Time(key string) (time.Time, error) {
	t, ok, err := a.OptionalTime(key)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return time.Time{}, fmt.Errorf("%w: missing argument %q", ErrInvalidInput, key)
	}
	return t, nil
}

// ToDecimal converts a numeric Go value to a decimal. Strings, bools,
// collections and nil are rejected.
func ToDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case *decimal.Decimal:
		if n == nil {
			break
		}
		return *n, nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int8:
		return decimal.NewFromInt(int64(n)), nil
	case int16:
		return decimal.NewFromInt(int64(n)), nil
	case int32:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case uint:
		return fromUint(uint64(n)), nil
	case uint8:
		return fromUint(uint64(n)), nil
	case uint16:
		return fromUint(uint64(n)), nil
	case uint32:
		return fromUint(uint64(n)), nil
	case uint64:
		return fromUint(n), nil
	case float32:
		return fromFloat(float64(n))
	case float64:
		return fromFloat(n)
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return d, nil
	}
	return decimal.Zero, fmt.Errorf("%w: value must be a number, got %T", ErrInvalidInput, v)
}

func fromUint(u uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0)
}

func fromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("%w: value must be finite, got %v", ErrInvalidInput, f)
	}
	return decimal.NewFromFloat(f), nil
}
